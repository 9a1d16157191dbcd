package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/andrewbenington/group-mix/auth"
	"github.com/andrewbenington/group-mix/collector"
	"github.com/andrewbenington/group-mix/config"
	"github.com/andrewbenington/group-mix/controller"
	"github.com/andrewbenington/group-mix/credential"
	"github.com/andrewbenington/group-mix/db"
	"github.com/andrewbenington/group-mix/dialect"
	"github.com/andrewbenington/group-mix/engine"
	"github.com/andrewbenington/group-mix/identity"
	"github.com/andrewbenington/group-mix/lock"
	"github.com/andrewbenington/group-mix/merge"
	"github.com/andrewbenington/group-mix/room"
	"github.com/andrewbenington/group-mix/spotify"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Spotify is everything the app needs from the remote service.
type Spotify interface {
	identity.Authorizer
	credential.Identity
	collector.Catalog
	merge.Catalog
}

type App struct {
	Router     *mux.Router
	Controller *controller.Controller
	Engine     *engine.Engine

	db     *sql.DB
	locker lock.Locker
}

// Initialize opens the ledger and the lock backend named in config and wires
// the service against the real Spotify API.
func (a *App) Initialize(ctx context.Context) error {
	d := config.GetStoreDialect()
	dbConn, err := db.Open(ctx, d, config.GetStoreDSN())
	if err != nil {
		return err
	}

	locker, err := NewLocker()
	if err != nil {
		dbConn.Close()
		return err
	}

	remote := spotify.NewClient(spotify.Config{
		ClientID:          config.GetSpotifyClientID(),
		ClientSecret:      config.GetSpotifyClientSecret(),
		RedirectURL:       config.GetSpotifyRedirect(),
		Timeout:           config.GetRemoteTimeout(),
		RequestsPerSecond: config.GetRemoteRate(),
		Burst:             config.GetRemoteBurst(),
	})

	return a.Wire(dbConn, d, locker, remote)
}

// NewLocker returns the room lock selected by LOCK_TYPE.
func NewLocker() (lock.Locker, error) {
	switch config.GetLockType() {
	case "", "memory":
		return lock.NewKeyedMutex(), nil
	case "redis":
		return lock.NewRedisLocker(lock.RedisConfig{
			Addr:     config.GetRedisAddress(),
			Password: config.GetRedisPassword(),
			DB:       config.GetRedisDB(),
		})
	default:
		return nil, fmt.Errorf("unknown lock type %q", config.GetLockType())
	}
}

// Wire builds every component on top of an open ledger. The app owns dbConn
// and locker from here on.
func (a *App) Wire(dbConn *sql.DB, d dialect.Dialect, locker lock.Locker, remote Spotify) error {
	window, err := spotify.ParseWindow(config.GetDefaultTimeRange())
	if err != nil {
		return fmt.Errorf("default time range: %w", err)
	}

	key, err := encryptionKey()
	if err != nil {
		return err
	}

	rooms := room.NewStore(dbConn, d, locker)
	credentials := credential.NewCache(
		credential.NewStore(dbConn, d, key),
		remote,
		locker,
	)
	publicURL := config.GetPublicURL()

	a.db = dbConn
	a.locker = locker
	a.Engine = engine.New(rooms, credentials, config.GetRoomTTL())
	a.Controller = &controller.Controller{
		Rooms:         rooms,
		Credentials:   credentials,
		Resolver:      identity.NewResolver(rooms, remote, credentials),
		Collector:     collector.New(remote, rooms),
		Merger:        merge.NewEngine(rooms, remote, credentials, locker, config.GetAllowRemerge()),
		Catalog:       remote,
		Cookies:       auth.NewRoomCookies(signingSecret(), config.GetCookieTTL(), strings.HasPrefix(publicURL, "https://")),
		PublicURL:     publicURL,
		TopTrackLimit: config.GetTopTrackLimit(),
		DefaultWindow: window,
		Store:         string(d),
	}
	a.initRouter()
	return nil
}

// signingSecret falls back to a random key, which logs everyone out on
// restart.
func signingSecret() []byte {
	secret := config.GetSigningSecret()
	if len(secret) > 0 {
		return secret
	}
	zap.L().Warn("SIGNING_SECRET not set, using a random key for this process")
	secret = make([]byte, 32)
	_, _ = rand.Read(secret)
	config.SetSigningSecret(secret)
	return secret
}

// encryptionKey seals stored Spotify tokens. Production refuses to start
// without one; elsewhere an empty key is allowed with a warning.
func encryptionKey() (string, error) {
	key := config.GetEncryptionKey()
	if key != "" {
		return key, nil
	}
	if config.GetIsProd() {
		return "", errors.New("ENCRYPTION_KEY must be set in production")
	}
	zap.L().Warn("ENCRYPTION_KEY not set, stored tokens are sealed with an empty key")
	return key, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           withMiddleware(a.Router),
		ReadHeaderTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("serving", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	zap.L().Info("server stopped")
	return nil
}

func (a *App) Close() error {
	var errList []error
	if closer, ok := a.locker.(interface{ Close() error }); ok {
		errList = append(errList, closer.Close())
	}
	if a.db != nil {
		errList = append(errList, a.db.Close())
	}
	return errors.Join(errList...)
}
