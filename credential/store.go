package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andrewbenington/group-mix/auth"
	"github.com/andrewbenington/group-mix/dialect"
	"github.com/andrewbenington/group-mix/errs"
	"github.com/andrewbenington/group-mix/room"
)

// Store persists credentials encrypted, one row per room.
type Store struct {
	db            *sql.DB
	dialect       dialect.Dialect
	encryptionKey string
}

func NewStore(db *sql.DB, d dialect.Dialect, encryptionKey string) *Store {
	return &Store{
		db:            db,
		dialect:       d,
		encryptionKey: encryptionKey,
	}
}

// Get returns nil when the room has no credential.
func (s *Store) Get(ctx context.Context, roomID room.ID) (*Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	var encryptedAccessToken, encryptedRefreshToken []byte
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		s.dialect.Rebind(`SELECT access_token, refresh_token, expires_at FROM credentials WHERE room_id = ?`),
		roomID.String(),
	).Scan(&encryptedAccessToken, &encryptedRefreshToken, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.StoreIO("read credential", err)
	}

	accessToken, err := auth.DecryptToken(encryptedAccessToken, s.encryptionKey)
	if err != nil {
		return nil, errs.StoreIO("decrypt access token", err)
	}
	refreshToken, err := auth.DecryptToken(encryptedRefreshToken, s.encryptionKey)
	if err != nil {
		return nil, errs.StoreIO("decrypt refresh token", err)
	}

	return &Credential{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Unix(expiresAt, 0),
	}, nil
}

func (s *Store) Put(ctx context.Context, roomID room.ID, c Credential) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	encryptedAccessToken, err := auth.EncryptToken(c.AccessToken, s.encryptionKey)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	encryptedRefreshToken, err := auth.EncryptToken(c.RefreshToken, s.encryptionKey)
	if err != nil {
		return fmt.Errorf("encrypt refresh token: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		s.dialect.Rebind(`INSERT INTO credentials (room_id, access_token, refresh_token, expires_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (room_id) DO UPDATE SET
				access_token = excluded.access_token,
				refresh_token = excluded.refresh_token,
				expires_at = excluded.expires_at`),
		roomID.String(), encryptedAccessToken, encryptedRefreshToken, c.ExpiresAt.Unix(),
	)
	return errs.StoreIO("write credential", err)
}

func (s *Store) Delete(ctx context.Context, roomIDs ...room.ID) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	for _, id := range roomIDs {
		_, err := s.db.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM credentials WHERE room_id = ?`), id.String())
		if err != nil {
			return errs.StoreIO("delete credential", err)
		}
	}
	return nil
}
