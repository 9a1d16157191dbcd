package room

import (
	"fmt"
	"time"

	"github.com/andrewbenington/group-mix/errs"
	"github.com/google/uuid"
)

// ID identifies one group session. It is a random UUID and is never reused.
type ID string

func NewID() ID {
	return ID(uuid.New().String())
}

// ParseID validates s and returns it in canonical form.
func ParseID(s string) (ID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", errs.ErrInvalidRoomID, s)
	}
	return ID(parsed.String()), nil
}

func (id ID) String() string {
	return string(id)
}

// Contribution is one member's ranked top tracks. Tracks are Spotify URIs,
// highest ranked first.
type Contribution struct {
	User   string   `json:"user"`
	Tracks []string `json:"tracks"`
}

type Room struct {
	ID            ID             `json:"id"`
	Solo          bool           `json:"solo"`
	Created       time.Time      `json:"created"`
	MergedAt      *time.Time     `json:"merged_at,omitempty"`
	Contributions []Contribution `json:"contributions"`
}

type State string

const (
	StateEmpty    State = "EMPTY"
	StateEligible State = "ELIGIBLE"
	StateMerged   State = "MERGED"
)

// MinMergeMembers is the smallest room that can be merged.
const MinMergeMembers = 2

// State reports where the room sits in the merge lifecycle. A room with a
// single contribution is still EMPTY as far as merging is concerned.
func (r Room) State() State {
	if r.MergedAt != nil {
		return StateMerged
	}
	if len(r.Contributions) >= MinMergeMembers {
		return StateEligible
	}
	return StateEmpty
}

func (r Room) Members() []string {
	members := make([]string, 0, len(r.Contributions))
	for _, c := range r.Contributions {
		members = append(members, c.User)
	}
	return members
}
