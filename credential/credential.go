// Package credential keeps one Spotify token pair per room and refreshes it
// when it expires.
package credential

import (
	"time"

	"golang.org/x/oauth2"
)

type Credential struct {
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired compares at second granularity; a credential expiring this very
// second is still usable.
func (c Credential) Expired(now time.Time) bool {
	return c.ExpiresAt.Unix() < now.Unix()
}

func (c Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       c.ExpiresAt,
	}
}

func FromToken(token *oauth2.Token) Credential {
	return Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
}
