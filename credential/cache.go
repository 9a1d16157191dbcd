package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andrewbenington/group-mix/errs"
	"github.com/andrewbenington/group-mix/lock"
	"github.com/andrewbenington/group-mix/room"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Identity is the remote authorization server.
type Identity interface {
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
}

type Repository interface {
	Get(ctx context.Context, roomID room.ID) (*Credential, error)
	Put(ctx context.Context, roomID room.ID, c Credential) error
	Delete(ctx context.Context, roomIDs ...room.ID) error
}

// Cache hands out a valid credential per room. Refreshes and exchanges for a
// room hold that room's credential lock, so two requests never race to
// persist different token pairs.
type Cache struct {
	repo     Repository
	identity Identity
	locker   lock.Locker
	now      func() time.Time
}

func NewCache(repo Repository, identity Identity, locker lock.Locker) *Cache {
	return &Cache{
		repo:     repo,
		identity: identity,
		locker:   locker,
		now:      time.Now,
	}
}

func lockKey(roomID room.ID) string {
	return "credential:" + roomID.String()
}

// GetOrRefresh returns the room's credential, refreshing it first if it has
// expired.
func (c *Cache) GetOrRefresh(ctx context.Context, roomID room.ID) (Credential, error) {
	unlock, err := c.locker.Lock(ctx, lockKey(roomID))
	if err != nil {
		return Credential{}, errs.StoreIO("lock credential", err)
	}
	defer unlock()

	stored, err := c.repo.Get(ctx, roomID)
	if err != nil {
		return Credential{}, err
	}
	if stored == nil {
		return Credential{}, errs.ErrAuthExpired
	}
	if !stored.Expired(c.now()) {
		return *stored, nil
	}

	if stored.RefreshToken == "" {
		return Credential{}, errs.ErrAuthExpired
	}
	token, err := c.identity.Refresh(ctx, stored.Token())
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			zap.L().Info("refresh rejected", zap.String("room", roomID.String()), zap.Error(err))
			return Credential{}, errs.ErrAuthExpired
		}
		return Credential{}, fmt.Errorf("refresh credential: %w", err)
	}

	refreshed := FromToken(token)
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = stored.RefreshToken
	}
	if err := c.repo.Put(ctx, roomID, refreshed); err != nil {
		return Credential{}, err
	}
	return refreshed, nil
}

// ExchangeCode trades a one-time authorization code for the room's first
// credential, replacing whatever the room held before.
func (c *Cache) ExchangeCode(ctx context.Context, roomID room.ID, code string) (Credential, error) {
	if code == "" {
		return Credential{}, errs.ErrInvalidGrant
	}

	unlock, err := c.locker.Lock(ctx, lockKey(roomID))
	if err != nil {
		return Credential{}, errs.StoreIO("lock credential", err)
	}
	defer unlock()

	token, err := c.identity.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return Credential{}, fmt.Errorf("%w: %s", errs.ErrInvalidGrant, retrieveErr.ErrorCode)
		}
		return Credential{}, fmt.Errorf("exchange code: %w", err)
	}

	cred := FromToken(token)
	if err := c.repo.Put(ctx, roomID, cred); err != nil {
		return Credential{}, err
	}
	return cred, nil
}

func (c *Cache) Forget(ctx context.Context, roomIDs ...room.ID) error {
	return c.repo.Delete(ctx, roomIDs...)
}
