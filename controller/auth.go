package controller

import (
	"net/http"

	"github.com/andrewbenington/group-mix/collector"
	"github.com/andrewbenington/group-mix/errs"
	"github.com/andrewbenington/group-mix/requests"
	"github.com/andrewbenington/group-mix/room"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Login resolves the room for this browser (room_id query, then cookie,
// then a new room) and sends it to Spotify.
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	id, err := c.Resolver.ResolveRoom(r.Context(), c.Cookies.RoomID(r), r.URL.Query().Get("room_id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	c.redirectToLogin(w, r, id)
}

// Join is the link members share. The path id replaces whatever room the
// browser was in before.
func (c *Controller) Join(w http.ResponseWriter, r *http.Request) {
	id, err := c.Resolver.ResolveRoom(r.Context(), c.Cookies.RoomID(r), mux.Vars(r)["room_id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	c.redirectToLogin(w, r, id)
}

type CollectionResponse struct {
	RoomID room.ID  `json:"room_id"`
	Solo   bool     `json:"solo"`
	User   string   `json:"user"`
	Tracks []string `json:"tracks"`
	URIs   []string `json:"uris"`
}

// Callback completes the Spotify login, collects the member's top tracks and
// records them. Group members are sent to the room summary; solo users get
// their tracks back directly.
func (c *Controller) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	if spotifyError := query.Get("error"); spotifyError != "" {
		zap.L().Info("spotify login refused", zap.String("error", spotifyError))
		respondError(w, r, errs.ErrInvalidGrant)
		return
	}

	id, cred, err := c.Resolver.CompleteExchange(ctx, query.Get("code"), query.Get("state"), c.Cookies.RoomID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	c.setRoomCookie(w, id)

	collection, err := c.Collector.Collect(ctx, cred, c.DefaultWindow, c.TopTrackLimit)
	if err != nil {
		respondError(w, r, err)
		return
	}

	recorded, err := c.Collector.Record(ctx, id, collection.Contribution)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if recorded {
		zap.L().Info("member joined", zap.String("room", id.String()), zap.String("user", collection.Contribution.User))
		http.Redirect(w, r, "/room/"+id.String(), http.StatusSeeOther)
		return
	}

	c.respondCollection(w, id, true, collection)
}

func (c *Controller) respondCollection(w http.ResponseWriter, id room.ID, solo bool, collection collector.Collection) {
	requests.RespondJSON(w, http.StatusOK, CollectionResponse{
		RoomID: id,
		Solo:   solo,
		User:   collection.Contribution.User,
		Tracks: collector.Preview(collection.Tracks),
		URIs:   collection.Contribution.Tracks,
	})
}
