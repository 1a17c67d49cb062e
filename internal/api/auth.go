package api

import (
	"context"
	"net/http"

	"github.com/taskflow/client-go/internal/models"
)

// LoginResult carries the tokens and account issued at login.
type LoginResult struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         models.User `json:"user"`
}

// Login authenticates and installs the issued tokens on the client.
func (c *Client) Login(ctx context.Context, username, password string) (Response[LoginResult], error) {
	body := map[string]string{"username": username, "password": password}
	resp, err := Call[LoginResult](ctx, c, http.MethodPost, "/auth/login", body)
	if err == nil && resp.Success && resp.Data != nil {
		c.SetTokens(resp.Data.AccessToken, resp.Data.RefreshToken)
	}
	return resp, err
}

// Logout invalidates the session server-side and drops local tokens.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Request(ctx, http.MethodPost, "/auth/logout", nil)
	c.SetTokens("", "")
	return err
}

// Me returns the authenticated account.
func (c *Client) Me(ctx context.Context) (Response[models.User], error) {
	return Call[models.User](ctx, c, http.MethodGet, "/users/me", nil)
}
