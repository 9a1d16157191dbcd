// Package errs holds the error taxonomy shared by the stores, the remote
// client and the HTTP layer.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRoom means neither the callback state nor the cookie named a room.
	ErrMissingRoom = errors.New("no room id found, open a join link first")

	// ErrInvalidRoomID means a supplied room id is not a UUID.
	ErrInvalidRoomID = errors.New("invalid room id")

	// ErrAuthExpired means the room has no usable Spotify credential.
	ErrAuthExpired = errors.New("spotify authorization expired, log in again")

	// ErrInvalidGrant means Spotify rejected the authorization code.
	ErrInvalidGrant = errors.New("spotify rejected the authorization code, log in again")

	// ErrInsufficientMembers means a merge was requested with fewer than two contributions.
	ErrInsufficientMembers = errors.New("need at least two users in the session to merge")

	// ErrAlreadyMerged means the room was merged before and re-merging is disabled.
	ErrAlreadyMerged = errors.New("this session has already been merged")

	// ErrRemoteTimeout means a Spotify call did not finish in time. Retryable.
	ErrRemoteTimeout = errors.New("spotify request timed out")
)

// StoreIOError wraps a durable storage failure. Callers may retry.
type StoreIOError struct {
	Op  string
	Err error
}

func (e *StoreIOError) Error() string {
	return fmt.Sprintf("store %s: %s", e.Op, e.Err)
}

func (e *StoreIOError) Unwrap() error {
	return e.Err
}

// StoreIO returns nil when err is nil.
func StoreIO(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreIOError{Op: op, Err: err}
}

// RemoteError wraps a failed Spotify call (network, rate limit, API error).
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("spotify %s: %s", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

type Kind string

const (
	KindMissingRoom         Kind = "missing_room"
	KindInvalidRoom         Kind = "invalid_room"
	KindAuthExpired         Kind = "auth_expired"
	KindInvalidGrant        Kind = "invalid_grant"
	KindInsufficientMembers Kind = "insufficient_members"
	KindAlreadyMerged       Kind = "already_merged"
	KindStoreIO             Kind = "store_io"
	KindRemoteTimeout       Kind = "remote_timeout"
	KindRemote              Kind = "remote"
	KindInternal            Kind = "internal"
)

// KindOf classifies err. Sentinels are checked before wrapper types so that
// a timeout wrapped in a RemoteError still reports as a timeout.
func KindOf(err error) Kind {
	var storeErr *StoreIOError
	var remoteErr *RemoteError
	switch {
	case errors.Is(err, ErrMissingRoom):
		return KindMissingRoom
	case errors.Is(err, ErrInvalidRoomID):
		return KindInvalidRoom
	case errors.Is(err, ErrAuthExpired):
		return KindAuthExpired
	case errors.Is(err, ErrInvalidGrant):
		return KindInvalidGrant
	case errors.Is(err, ErrInsufficientMembers):
		return KindInsufficientMembers
	case errors.Is(err, ErrAlreadyMerged):
		return KindAlreadyMerged
	case errors.Is(err, ErrRemoteTimeout):
		return KindRemoteTimeout
	case errors.As(err, &storeErr):
		return KindStoreIO
	case errors.As(err, &remoteErr):
		return KindRemote
	default:
		return KindInternal
	}
}

// Retryable reports whether the caller can try the same operation again.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindStoreIO, KindRemoteTimeout:
		return true
	}
	return false
}
