package controller

import (
	"net/http"
	"time"

	"github.com/andrewbenington/group-mix/errs"
	"github.com/andrewbenington/group-mix/requests"
	"github.com/andrewbenington/group-mix/room"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type CreateRoomResponse struct {
	RoomID  room.ID `json:"room_id"`
	JoinURL string  `json:"join_url"`
}

func (c *Controller) CreateRoom(w http.ResponseWriter, r *http.Request) {
	id, err := c.Rooms.CreateRoom(r.Context(), false)
	if err != nil {
		respondError(w, r, err)
		return
	}
	c.setRoomCookie(w, id)

	requests.RespondJSON(w, http.StatusCreated, CreateRoomResponse{
		RoomID:  id,
		JoinURL: c.joinURL(id),
	})
}

// NewSession starts a fresh room and hands the browser its join link.
func (c *Controller) NewSession(w http.ResponseWriter, r *http.Request) {
	id, err := c.Rooms.CreateRoom(r.Context(), false)
	if err != nil {
		respondError(w, r, err)
		return
	}
	c.setRoomCookie(w, id)
	http.Redirect(w, r, "/join/"+id.String(), http.StatusFound)
}

type RoomSummary struct {
	RoomID    room.ID    `json:"room_id"`
	Solo      bool       `json:"solo"`
	State     room.State `json:"state"`
	Members   []string   `json:"members"`
	CanMerge  bool       `json:"can_merge"`
	JoinURL   string     `json:"join_url"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	MergedAt  *time.Time `json:"merged_at,omitempty"`
}

func roomIDFromPath(r *http.Request) (room.ID, error) {
	raw := mux.Vars(r)["room_id"]
	if raw == "" {
		return "", errs.ErrMissingRoom
	}
	return room.ParseID(raw)
}

func (c *Controller) GetRoom(w http.ResponseWriter, r *http.Request) {
	id, err := roomIDFromPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	rm, err := c.Rooms.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	summary := RoomSummary{
		RoomID:   id,
		Solo:     rm.Solo,
		State:    rm.State(),
		Members:  rm.Members(),
		CanMerge: !rm.Solo && rm.State() == room.StateEligible,
		JoinURL:  c.joinURL(id),
		MergedAt: rm.MergedAt,
	}
	if !rm.Created.IsZero() {
		summary.CreatedAt = &rm.Created
	}
	requests.RespondJSON(w, http.StatusOK, summary)
}

func (c *Controller) MergeRoom(w http.ResponseWriter, r *http.Request) {
	id, err := roomIDFromPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	playlist, err := c.Merger.Merge(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	requests.RespondJSON(w, http.StatusCreated, playlist)
}

func (c *Controller) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := roomIDFromPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := c.Rooms.Delete(ctx, id); err != nil {
		respondError(w, r, err)
		return
	}
	if err := c.Credentials.Forget(ctx, id); err != nil {
		respondError(w, r, err)
		return
	}
	zap.L().Info("room deleted", zap.String("room", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
