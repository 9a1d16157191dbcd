package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/andrewbenington/group-mix/room"
	"go.uber.org/zap"
)

const (
	cycle_period       = time.Second * 10
	cycle_period_prune = time.Minute * 10
)

type Rooms interface {
	PruneBefore(ctx context.Context, cutoff time.Time) ([]room.ID, error)
}

type Credentials interface {
	Forget(ctx context.Context, roomIDs ...room.ID) error
}

// Engine runs background upkeep for the ledger. With a zero TTL rooms are
// kept forever and the engine idles.
type Engine struct {
	rooms       Rooms
	credentials Credentials
	ttl         time.Duration
	now         func() time.Time

	last_cycle_prune *time.Time
}

func New(rooms Rooms, credentials Credentials, ttl time.Duration) *Engine {
	return &Engine{
		rooms:       rooms,
		credentials: credentials,
		ttl:         ttl,
		now:         time.Now,
	}
}

func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(cycle_period)
	defer ticker.Stop()
	for {
		e.cycle(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (e *Engine) shouldDoCycle(last *time.Time, period time.Duration) bool {
	return last == nil || e.now().Sub(*last) >= period
}

func (e *Engine) cycle(ctx context.Context) {
	now := e.now()

	if e.ttl > 0 && e.shouldDoCycle(e.last_cycle_prune, cycle_period_prune) {
		pruned, err := e.PruneOnce(ctx)
		if err != nil {
			zap.L().Error("prune rooms", zap.Error(err))
		} else if pruned > 0 {
			zap.L().Info("pruned rooms", zap.Int("count", pruned))
		}
		e.last_cycle_prune = &now
	}
}

// PruneOnce deletes rooms created more than ttl ago along with their
// credentials, and returns how many rooms went.
func (e *Engine) PruneOnce(ctx context.Context) (int, error) {
	if e.ttl <= 0 {
		return 0, nil
	}
	ids, err := e.rooms.PruneBefore(ctx, e.now().Add(-e.ttl))
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := e.credentials.Forget(ctx, ids...); err != nil {
		return len(ids), fmt.Errorf("forget credentials: %w", err)
	}
	return len(ids), nil
}
