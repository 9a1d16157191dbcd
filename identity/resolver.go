// Package identity decides which room a request belongs to and drives the
// Spotify login for that room.
package identity

import (
	"context"

	"github.com/andrewbenington/group-mix/credential"
	"github.com/andrewbenington/group-mix/errs"
	"github.com/andrewbenington/group-mix/room"
)

type RoomCreator interface {
	CreateRoom(ctx context.Context, solo bool) (room.ID, error)
}

type Authorizer interface {
	AuthURL(state string, forcePrompt bool) string
}

type CodeExchanger interface {
	ExchangeCode(ctx context.Context, roomID room.ID, code string) (credential.Credential, error)
}

type Resolver struct {
	rooms RoomCreator
	auth  Authorizer
	creds CodeExchanger
}

func NewResolver(rooms RoomCreator, auth Authorizer, creds CodeExchanger) *Resolver {
	return &Resolver{rooms: rooms, auth: auth, creds: creds}
}

// ResolveRoom picks the room for a request: an explicit query id wins over
// the cookie so a join link can replace a stale session on a shared browser;
// with neither, a new group room is created. The caller stores the result in
// the cookie.
func (r *Resolver) ResolveRoom(ctx context.Context, cookieRoomID string, queryRoomID string) (room.ID, error) {
	if queryRoomID != "" {
		return room.ParseID(queryRoomID)
	}
	if id, ok := parseOptional(cookieRoomID); ok {
		return id, nil
	}
	return r.rooms.CreateRoom(ctx, false)
}

// StartSolo creates a room for one person; its contributions are shown, not kept.
func (r *Resolver) StartSolo(ctx context.Context) (room.ID, error) {
	return r.rooms.CreateRoom(ctx, true)
}

// BuildAuthorizeRedirect returns the Spotify login URL for the room. The
// room id rides along as state and the account prompt is always shown, so
// two people sharing a browser each pick their own account.
func (r *Resolver) BuildAuthorizeRedirect(roomID room.ID) string {
	return r.auth.AuthURL(roomID.String(), true)
}

// CompleteExchange finishes the login callback. The state Spotify echoes back
// is authoritative; the cookie covers callbacks that lost their state.
func (r *Resolver) CompleteExchange(ctx context.Context, authCode string, stateRoomID string, cookieRoomID string) (room.ID, credential.Credential, error) {
	roomID, ok := parseOptional(stateRoomID)
	if !ok {
		roomID, ok = parseOptional(cookieRoomID)
	}
	if !ok {
		return "", credential.Credential{}, errs.ErrMissingRoom
	}

	cred, err := r.creds.ExchangeCode(ctx, roomID, authCode)
	if err != nil {
		return "", credential.Credential{}, err
	}
	return roomID, cred, nil
}

func parseOptional(s string) (room.ID, bool) {
	if s == "" {
		return "", false
	}
	id, err := room.ParseID(s)
	if err != nil {
		return "", false
	}
	return id, true
}
