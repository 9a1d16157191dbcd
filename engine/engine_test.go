package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andrewbenington/group-mix/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRooms struct {
	cutoffs []time.Time
	ids     []room.ID
	err     error
}

func (f *fakeRooms) PruneBefore(_ context.Context, cutoff time.Time) ([]room.ID, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.ids, f.err
}

type fakeCredentials struct {
	forgotten []room.ID
}

func (f *fakeCredentials) Forget(_ context.Context, roomIDs ...room.ID) error {
	f.forgotten = append(f.forgotten, roomIDs...)
	return nil
}

func TestPruneOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(10_000, 0)

	t.Run("prunes rooms and credentials", func(t *testing.T) {
		rooms := &fakeRooms{ids: []room.ID{"a", "b"}}
		creds := &fakeCredentials{}
		e := New(rooms, creds, time.Hour)
		e.now = func() time.Time { return now }

		n, err := e.PruneOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []time.Time{now.Add(-time.Hour)}, rooms.cutoffs)
		assert.Equal(t, []room.ID{"a", "b"}, creds.forgotten)
	})

	t.Run("zero ttl keeps everything", func(t *testing.T) {
		rooms := &fakeRooms{ids: []room.ID{"a"}}
		n, err := New(rooms, &fakeCredentials{}, 0).PruneOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, rooms.cutoffs)
	})

	t.Run("store failure", func(t *testing.T) {
		creds := &fakeCredentials{}
		_, err := New(&fakeRooms{err: errors.New("disk")}, creds, time.Hour).PruneOnce(ctx)
		assert.Error(t, err)
		assert.Empty(t, creds.forgotten)
	})
}

func TestCyclePeriod(t *testing.T) {
	rooms := &fakeRooms{}
	now := time.Unix(10_000, 0)
	e := New(rooms, &fakeCredentials{}, time.Hour)
	e.now = func() time.Time { return now }

	e.cycle(context.Background())
	e.cycle(context.Background())
	assert.Len(t, rooms.cutoffs, 1)

	now = now.Add(cycle_period_prune)
	e.cycle(context.Background())
	assert.Len(t, rooms.cutoffs, 2)
}
