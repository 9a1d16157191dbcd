package spotify

import (
	"context"

	"golang.org/x/oauth2"
)

type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Profile looks up the account behind token. Accounts without a display name
// fall back to their id.
func (c *Client) Profile(ctx context.Context, token *oauth2.Token) (profile Profile, err error) {
	err = c.call(ctx, "current user", func(ctx context.Context) error {
		user, err := c.api(ctx, token).CurrentUser(ctx)
		if err != nil {
			return err
		}
		profile = Profile{ID: user.ID, DisplayName: user.DisplayName}
		return nil
	})
	if profile.DisplayName == "" {
		profile.DisplayName = profile.ID
	}
	return profile, err
}
