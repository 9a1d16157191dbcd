package config

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/andrewbenington/group-mix/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// runs after the variables below are restored
	t.Cleanup(func() { _ = Load() })
	t.Setenv("SIGNING_SECRET", base64.StdEncoding.EncodeToString([]byte("secret")))
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("ROOM_TTL", "2h")
	t.Setenv("ALLOW_REMERGE", "true")
	t.Setenv("PUBLIC_URL", "https://mix.example.com/")
	t.Setenv("ENV", "LOCAL")

	require.NoError(t, Load())

	assert.Equal(t, []byte("secret"), GetSigningSecret())
	assert.Equal(t, dialect.Postgres, GetStoreDialect())
	assert.Contains(t, GetStoreDSN(), "host=db")
	assert.Contains(t, GetStoreDSN(), "sslmode=disable")
	assert.Equal(t, 2*time.Hour, GetRoomTTL())
	assert.True(t, GetAllowRemerge())
	assert.Equal(t, "https://mix.example.com", GetPublicURL())
	assert.Equal(t, 10*time.Second, GetRemoteTimeout())
	assert.Equal(t, "medium_term", GetDefaultTimeRange())
}

func TestLoadRejects(t *testing.T) {
	t.Cleanup(func() { _ = Load() })

	t.Run("bad secret", func(t *testing.T) {
		t.Setenv("SIGNING_SECRET", "not base64!")
		assert.Error(t, Load())
	})
	t.Run("bad driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mysql")
		assert.Error(t, Load())
	})
}
