package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// Window is the time horizon Spotify ranks top tracks over.
type Window string

const (
	ShortTerm  Window = "short_term"
	MediumTerm Window = "medium_term"
	LongTerm   Window = "long_term"
)

// ParseWindow accepts the Spotify range names. An empty string is MediumTerm.
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case "":
		return MediumTerm, nil
	case ShortTerm, MediumTerm, LongTerm:
		return Window(s), nil
	}
	return "", fmt.Errorf("unknown time range %q", s)
}

func (w Window) timerange() spotify.Range {
	switch w {
	case ShortTerm:
		return spotify.ShortTermRange
	case LongTerm:
		return spotify.LongTermRange
	default:
		return spotify.MediumTermRange
	}
}

type Track struct {
	ID      string   `json:"id"`
	URI     string   `json:"uri"`
	Name    string   `json:"name"`
	Artists []string `json:"artists"`
}

func (t Track) Display() string {
	if len(t.Artists) == 0 {
		return t.Name
	}
	return fmt.Sprintf("%s by %s", t.Name, t.Artists[0])
}

// TopTracks returns the user's top tracks, best first.
func (c *Client) TopTracks(ctx context.Context, token *oauth2.Token, window Window, limit int) (tracks []Track, err error) {
	err = c.call(ctx, "top tracks", func(ctx context.Context) error {
		results, err := c.api(ctx, token).CurrentUsersTopTracks(ctx, spotify.Limit(limit), spotify.Timerange(window.timerange()))
		if err != nil {
			return err
		}
		tracks = make([]Track, 0, len(results.Tracks))
		for _, entry := range results.Tracks {
			tracks = append(tracks, Track{
				ID:      entry.ID.String(),
				URI:     string(entry.URI),
				Name:    entry.Name,
				Artists: GetArtists(entry),
			})
		}
		return nil
	})
	return tracks, err
}

func GetArtists(t spotify.FullTrack) []string {
	artists := []string{}
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}
	return artists
}
