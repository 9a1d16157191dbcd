package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/andrewbenington/group-mix/errs"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

var Scopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserTopRead,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Timeout bounds every remote call.
	Timeout time.Duration
	// RequestsPerSecond is shared by all rooms in this process. Zero disables the limit.
	RequestsPerSecond float64
	Burst             int
}

// Client is the only path to Spotify. It never refreshes tokens on its own:
// each call uses exactly the token it is given.
type Client struct {
	authenticator *spotifyauth.Authenticator
	timeout       time.Duration
	limiter       *rate.Limiter
	httpClient    *http.Client
}

func NewClient(cfg Config) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 10
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		authenticator: spotifyauth.New(
			spotifyauth.WithClientID(cfg.ClientID),
			spotifyauth.WithClientSecret(cfg.ClientSecret),
			spotifyauth.WithRedirectURL(cfg.RedirectURL),
			spotifyauth.WithScopes(Scopes...),
		),
		timeout:    timeout,
		limiter:    rate.NewLimiter(limit, burst),
		httpClient: http.DefaultClient,
	}
}

// AuthURL builds the authorize link. forcePrompt makes Spotify show the
// account dialog even if the browser already has a Spotify session.
func (c *Client) AuthURL(state string, forcePrompt bool) string {
	if forcePrompt {
		return c.authenticator.AuthURL(state, spotifyauth.ShowDialog)
	}
	return c.authenticator.AuthURL(state)
}

func (c *Client) Exchange(ctx context.Context, code string) (token *oauth2.Token, err error) {
	err = c.call(ctx, "exchange code", func(ctx context.Context) error {
		token, err = c.authenticator.Exchange(c.oauthContext(ctx), code)
		return err
	})
	return token, err
}

func (c *Client) Refresh(ctx context.Context, stale *oauth2.Token) (token *oauth2.Token, err error) {
	err = c.call(ctx, "refresh token", func(ctx context.Context) error {
		token, err = c.authenticator.RefreshToken(c.oauthContext(ctx), stale)
		return err
	})
	return token, err
}

func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func (c *Client) api(ctx context.Context, token *oauth2.Token) *spotify.Client {
	return spotify.New(oauth2.NewClient(c.oauthContext(ctx), oauth2.StaticTokenSource(token)))
}

func (c *Client) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return remoteError(op, err)
	}
	return remoteError(op, fn(ctx))
}

func remoteError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %w", errs.ErrRemoteTimeout, err)
	}
	return &errs.RemoteError{Op: op, Err: err}
}
