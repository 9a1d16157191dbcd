package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/andrewbenington/group-mix/collector"
	"github.com/andrewbenington/group-mix/errs"
	"github.com/andrewbenington/group-mix/requests"
	"github.com/andrewbenington/group-mix/room"
	"github.com/andrewbenington/group-mix/spotify"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Solo starts a one-person room and sends the browser to Spotify.
func (c *Controller) Solo(w http.ResponseWriter, r *http.Request) {
	id, err := c.Resolver.StartSolo(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	c.redirectToLogin(w, r, id)
}

type TopTracksRequest struct {
	TimeRange string `json:"time_range"`
	Limit     int    `json:"limit"`
}

type SoloPlaylistRequest struct {
	TopTracksRequest
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

type SoloPlaylistResponse struct {
	ID     string   `json:"id"`
	URL    string   `json:"url"`
	Name   string   `json:"name"`
	Tracks []string `json:"tracks"`
}

// decodeBody fills req from the request body. An empty body leaves the
// defaults in place.
func decodeBody(r *http.Request, req any) error {
	err := json.NewDecoder(r.Body).Decode(req)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (c *Controller) cookieRoom(r *http.Request) (room.ID, error) {
	raw := c.Cookies.RoomID(r)
	if raw == "" {
		return "", errs.ErrMissingRoom
	}
	return room.ParseID(raw)
}

func (c *Controller) window(requested string) (spotify.Window, error) {
	if requested == "" {
		return c.DefaultWindow, nil
	}
	return spotify.ParseWindow(requested)
}

func (c *Controller) limit(requested int) int {
	if requested == 0 {
		return c.TopTrackLimit
	}
	return requested
}

// SoloTopTracks previews the signed-in user's top tracks for any window
// without touching the room's ledger.
func (c *Controller) SoloTopTracks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req TopTracksRequest
	if err := decodeBody(r, &req); err != nil {
		requests.RespondBadRequest(w)
		return
	}
	window, err := c.window(req.TimeRange)
	if err != nil {
		requests.RespondBadRequest(w)
		return
	}

	id, err := c.cookieRoom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	cred, err := c.Credentials.GetOrRefresh(ctx, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	collection, err := c.Collector.Collect(ctx, cred, window, c.limit(req.Limit))
	if err != nil {
		respondError(w, r, err)
		return
	}
	c.respondCollection(w, id, true, collection)
}

// SoloPlaylist saves the signed-in user's top tracks as a playlist.
func (c *Controller) SoloPlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SoloPlaylistRequest
	if err := decodeBody(r, &req); err != nil {
		requests.RespondBadRequest(w)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	window, err := c.window(req.TimeRange)
	if err != nil || req.Name == "" {
		requests.RespondBadRequest(w)
		return
	}

	id, err := c.cookieRoom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	cred, err := c.Credentials.GetOrRefresh(ctx, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	collection, err := c.Collector.Collect(ctx, cred, window, c.limit(req.Limit))
	if err != nil {
		respondError(w, r, err)
		return
	}

	token := cred.Token()
	owner, err := c.Catalog.Profile(ctx, token)
	if err != nil {
		respondError(w, r, err)
		return
	}
	playlist, err := c.Catalog.CreatePlaylist(ctx, token, owner.ID, req.Name, "Top tracks, "+string(window), req.Public)
	if err != nil {
		respondError(w, r, err)
		return
	}
	added, err := c.Catalog.AddTracks(ctx, token, playlist.ID, collection.Contribution.Tracks)
	if err != nil {
		respondError(w, r, err)
		return
	}
	tracks := lo.Filter(collection.Tracks, func(t spotify.Track, _ int) bool { return lo.Contains(added, t.URI) })

	zap.L().Info("solo playlist created", zap.String("room", id.String()), zap.String("playlist", playlist.ID))
	requests.RespondJSON(w, http.StatusCreated, SoloPlaylistResponse{
		ID:     playlist.ID,
		URL:    playlist.URL,
		Name:   req.Name,
		Tracks: collector.Preview(tracks),
	})
}
