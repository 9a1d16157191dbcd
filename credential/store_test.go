package credential

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/andrewbenington/group-mix/db"
	"github.com/andrewbenington/group-mix/dialect"
	"github.com/andrewbenington/group-mix/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	dbConn, err := db.Open(ctx, dialect.SQLite, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer dbConn.Close()

	s := NewStore(dbConn, dialect.SQLite, "key")
	roomID := room.NewID()

	got, err := s.Get(ctx, roomID)
	require.NoError(t, err)
	assert.Nil(t, got)

	first := Credential{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Unix(1_000, 0)}
	require.NoError(t, s.Put(ctx, roomID, first))
	got, err = s.Get(ctx, roomID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.AccessToken, got.AccessToken)
	assert.Equal(t, first.RefreshToken, got.RefreshToken)
	assert.Equal(t, first.ExpiresAt.Unix(), got.ExpiresAt.Unix())

	second := Credential{AccessToken: "second-access-token", RefreshToken: "r2", ExpiresAt: time.Unix(2_000, 0)}
	require.NoError(t, s.Put(ctx, roomID, second))
	got, err = s.Get(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, "second-access-token", got.AccessToken)

	var raw []byte
	require.NoError(t, dbConn.QueryRowContext(ctx, `SELECT access_token FROM credentials WHERE room_id = ?`, roomID.String()).Scan(&raw))
	assert.NotContains(t, string(raw), "second-access-token")

	require.NoError(t, s.Delete(ctx, roomID))
	got, err = s.Get(ctx, roomID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
