package spotify

import (
	"context"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type Playlist struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (c *Client) CreatePlaylist(ctx context.Context, token *oauth2.Token, ownerID string, name string, description string, public bool) (playlist Playlist, err error) {
	err = c.call(ctx, "create playlist", func(ctx context.Context) error {
		created, err := c.api(ctx, token).CreatePlaylistForUser(ctx, ownerID, name, description, public, false)
		if err != nil {
			return err
		}
		playlist = Playlist{
			ID:  created.ID.String(),
			URL: created.ExternalURLs["spotify"],
		}
		return nil
	})
	return playlist, err
}

// AddTracks appends track URIs in order and returns the ones it sent. URIs
// that are not spotify:track references (local files) are skipped.
func (c *Client) AddTracks(ctx context.Context, token *oauth2.Token, playlistID string, uris []string) (added []string, err error) {
	ids := make([]spotify.ID, 0, len(uris))
	for _, uri := range uris {
		id, err := IDFromURI(uri)
		if err != nil {
			zap.L().Warn("skipping track", zap.String("uri", uri), zap.Error(err))
			continue
		}
		ids = append(ids, spotify.ID(id))
		added = append(added, uri)
	}
	if len(ids) == 0 {
		return []string{}, nil
	}

	err = c.call(ctx, "add tracks", func(ctx context.Context) error {
		_, err := c.api(ctx, token).AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}
