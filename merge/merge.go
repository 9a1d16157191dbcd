// Package merge reduces a room's contributions to one ranked playlist.
package merge

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/andrewbenington/group-mix/credential"
	"github.com/andrewbenington/group-mix/errs"
	"github.com/andrewbenington/group-mix/lock"
	"github.com/andrewbenington/group-mix/room"
	"github.com/andrewbenington/group-mix/spotify"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// MaxTracks caps a merged playlist regardless of room size.
const MaxTracks = 30

type RankedTrack struct {
	URI   string `json:"uri"`
	Count int    `json:"count"`
}

// Rank flattens every contribution into one multiset, counts each URI and
// orders by count, highest first. Equal counts keep the order in which the
// URI first appeared in the flattened list. At most limit tracks are returned.
func Rank(contributions []room.Contribution, limit int) []RankedTrack {
	all := lo.Flatten(lo.Map(contributions, func(c room.Contribution, _ int) []string { return c.Tracks }))

	counts := map[string]int{}
	firstSeen := []string{}
	for _, uri := range all {
		if counts[uri] == 0 {
			firstSeen = append(firstSeen, uri)
		}
		counts[uri]++
	}

	ranked := lo.Map(firstSeen, func(uri string, _ int) RankedTrack {
		return RankedTrack{URI: uri, Count: counts[uri]}
	})
	slices.SortStableFunc(ranked, func(a, b RankedTrack) int {
		return b.Count - a.Count
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func PlaylistName(members int) string {
	return fmt.Sprintf("Merged Playlist (%d users)", members)
}

type Catalog interface {
	Profile(ctx context.Context, token *oauth2.Token) (spotify.Profile, error)
	CreatePlaylist(ctx context.Context, token *oauth2.Token, ownerID string, name string, description string, public bool) (spotify.Playlist, error)
	AddTracks(ctx context.Context, token *oauth2.Token, playlistID string, uris []string) ([]string, error)
}

type Ledger interface {
	Get(ctx context.Context, id room.ID) (room.Room, error)
	MarkMerged(ctx context.Context, id room.ID, at time.Time) error
}

type Credentials interface {
	GetOrRefresh(ctx context.Context, roomID room.ID) (credential.Credential, error)
}

type Playlist struct {
	ID      string        `json:"id"`
	URL     string        `json:"url"`
	Name    string        `json:"name"`
	Members int           `json:"members"`
	Tracks  []RankedTrack `json:"tracks"`
}

type Engine struct {
	ledger       Ledger
	catalog      Catalog
	creds        Credentials
	locker       lock.Locker
	allowRemerge bool
	now          func() time.Time
}

// NewEngine builds a merge engine. With allowRemerge false a room can be
// turned into a playlist only once.
func NewEngine(ledger Ledger, catalog Catalog, creds Credentials, locker lock.Locker, allowRemerge bool) *Engine {
	return &Engine{
		ledger:       ledger,
		catalog:      catalog,
		creds:        creds,
		locker:       locker,
		allowRemerge: allowRemerge,
		now:          time.Now,
	}
}

func lockKey(roomID room.ID) string {
	return "merge:" + roomID.String()
}

// Merge creates the room's playlist on the account currently signed in to
// the room. Stored contributions are only read; a failed merge leaves the
// room exactly as it was. Merges of one room run one at a time, from the
// merged check through MarkMerged.
func (e *Engine) Merge(ctx context.Context, roomID room.ID) (Playlist, error) {
	unlock, err := e.locker.Lock(ctx, lockKey(roomID))
	if err != nil {
		return Playlist{}, errs.StoreIO("lock merge", err)
	}
	defer unlock()

	r, err := e.ledger.Get(ctx, roomID)
	if err != nil {
		return Playlist{}, err
	}
	if r.MergedAt != nil && !e.allowRemerge {
		return Playlist{}, errs.ErrAlreadyMerged
	}
	if r.Solo || len(r.Contributions) < room.MinMergeMembers {
		return Playlist{}, errs.ErrInsufficientMembers
	}

	ranked := Rank(r.Contributions, MaxTracks)

	cred, err := e.creds.GetOrRefresh(ctx, roomID)
	if err != nil {
		return Playlist{}, err
	}
	token := cred.Token()

	owner, err := e.catalog.Profile(ctx, token)
	if err != nil {
		return Playlist{}, fmt.Errorf("get owner: %w", err)
	}

	name := PlaylistName(len(r.Contributions))
	created, err := e.catalog.CreatePlaylist(ctx, token, owner.ID, name, "", true)
	if err != nil {
		return Playlist{}, fmt.Errorf("create playlist: %w", err)
	}

	uris := lo.Map(ranked, func(t RankedTrack, _ int) string { return t.URI })
	added, err := e.catalog.AddTracks(ctx, token, created.ID, uris)
	if err != nil {
		return Playlist{}, fmt.Errorf("add tracks to %s: %w", created.ID, err)
	}
	// only what the playlist actually holds
	ranked = lo.Filter(ranked, func(t RankedTrack, _ int) bool { return lo.Contains(added, t.URI) })

	if err := e.ledger.MarkMerged(ctx, roomID, e.now()); err != nil {
		// the playlist exists already; report it anyway
		zap.L().Error("mark room merged", zap.String("room", roomID.String()), zap.Error(err))
	}

	zap.L().Info("room merged",
		zap.String("room", roomID.String()),
		zap.Int("members", len(r.Contributions)),
		zap.Int("tracks", len(ranked)),
		zap.String("playlist", created.ID),
	)
	return Playlist{
		ID:      created.ID,
		URL:     created.URL,
		Name:    name,
		Members: len(r.Contributions),
		Tracks:  ranked,
	}, nil
}
