package controller

import (
	"context"
	"net/http"

	"github.com/andrewbenington/group-mix/auth"
	"github.com/andrewbenington/group-mix/collector"
	"github.com/andrewbenington/group-mix/credential"
	"github.com/andrewbenington/group-mix/identity"
	"github.com/andrewbenington/group-mix/merge"
	"github.com/andrewbenington/group-mix/requests"
	"github.com/andrewbenington/group-mix/room"
	"github.com/andrewbenington/group-mix/spotify"
	"go.uber.org/zap"
)

type RoomStore interface {
	CreateRoom(ctx context.Context, solo bool) (room.ID, error)
	Get(ctx context.Context, id room.ID) (room.Room, error)
	Delete(ctx context.Context, id room.ID) error
}

type Credentials interface {
	GetOrRefresh(ctx context.Context, roomID room.ID) (credential.Credential, error)
	Forget(ctx context.Context, roomIDs ...room.ID) error
}

type Controller struct {
	Rooms       RoomStore
	Credentials Credentials
	Resolver    *identity.Resolver
	Collector   *collector.Collector
	Merger      *merge.Engine
	// Catalog builds solo playlists.
	Catalog merge.Catalog
	Cookies *auth.RoomCookies

	PublicURL     string
	TopTrackLimit int
	DefaultWindow spotify.Window
	// Store names the ledger backend for /version.
	Store string
}

func (c *Controller) joinURL(id room.ID) string {
	return c.PublicURL + "/join/" + id.String()
}

// setRoomCookie points the browser at id. A failure only costs the cookie
// fallback, so it is logged and the request continues.
func (c *Controller) setRoomCookie(w http.ResponseWriter, id room.ID) {
	if err := c.Cookies.SetRoomID(w, id.String()); err != nil {
		zap.L().Warn("set room cookie", zap.String("room", id.String()), zap.Error(err))
	}
}

// redirectToLogin sends the browser to Spotify for room id.
func (c *Controller) redirectToLogin(w http.ResponseWriter, r *http.Request, id room.ID) {
	c.setRoomCookie(w, id)
	http.Redirect(w, r, c.Resolver.BuildAuthorizeRedirect(id), http.StatusFound)
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	zap.L().Debug("request error", zap.String("path", r.URL.Path), zap.Error(err))
	requests.RespondWithError(w, err)
}
