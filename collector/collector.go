// Package collector turns a signed-in member into a room contribution.
package collector

import (
	"context"
	"fmt"

	"github.com/andrewbenington/group-mix/credential"
	"github.com/andrewbenington/group-mix/room"
	"github.com/andrewbenington/group-mix/spotify"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	MinLimit     = 1
	MaxLimit     = 50
	DefaultLimit = 20
)

type Catalog interface {
	Profile(ctx context.Context, token *oauth2.Token) (spotify.Profile, error)
	TopTracks(ctx context.Context, token *oauth2.Token, window spotify.Window, limit int) ([]spotify.Track, error)
}

type Ledger interface {
	Get(ctx context.Context, id room.ID) (room.Room, error)
	AppendContribution(ctx context.Context, id room.ID, contribution room.Contribution) error
}

type Collector struct {
	catalog Catalog
	ledger  Ledger
}

func New(catalog Catalog, ledger Ledger) *Collector {
	return &Collector{catalog: catalog, ledger: ledger}
}

// ClampLimit keeps a requested track count inside [MinLimit, MaxLimit].
func ClampLimit(limit int) int {
	return min(max(limit, MinLimit), MaxLimit)
}

// Collection is a contribution plus the tracks it was built from.
type Collection struct {
	Contribution room.Contribution
	Tracks       []spotify.Track
}

// Collect fetches the member's name and top tracks for window.
func (c *Collector) Collect(ctx context.Context, cred credential.Credential, window spotify.Window, limit int) (Collection, error) {
	token := cred.Token()

	profile, err := c.catalog.Profile(ctx, token)
	if err != nil {
		return Collection{}, fmt.Errorf("get profile: %w", err)
	}

	tracks, err := c.catalog.TopTracks(ctx, token, window, ClampLimit(limit))
	if err != nil {
		return Collection{}, fmt.Errorf("get top tracks: %w", err)
	}

	return Collection{
		Contribution: room.Contribution{
			User:   profile.DisplayName,
			Tracks: lo.Map(tracks, func(t spotify.Track, _ int) string { return t.URI }),
		},
		Tracks: tracks,
	}, nil
}

// Record appends the contribution to a group room. Solo rooms only display
// their tracks, so nothing is stored and recorded is false.
func (c *Collector) Record(ctx context.Context, roomID room.ID, contribution room.Contribution) (recorded bool, err error) {
	r, err := c.ledger.Get(ctx, roomID)
	if err != nil {
		return false, err
	}
	if r.Solo {
		zap.L().Debug("solo room, contribution not stored", zap.String("room", roomID.String()))
		return false, nil
	}

	if err := c.ledger.AppendContribution(ctx, roomID, contribution); err != nil {
		return false, err
	}
	return true, nil
}

// Preview lists tracks as "<name> by <artist>" for display.
func Preview(tracks []spotify.Track) []string {
	return lo.Map(tracks, func(t spotify.Track, _ int) string { return t.Display() })
}
