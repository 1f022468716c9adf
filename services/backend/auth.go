package backend

import (
	"context"
	"net/http"

	"github.com/trezcool/confadmin/core/user"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	return send[LoginResult](ctx, c, http.MethodPost, "/auth/login", creds)
}

// Me returns the user owning the context token.
func (c *Client) Me(ctx context.Context) (user.User, error) {
	return get[user.User](ctx, c, "/auth/me")
}
