package backend

import (
	"context"
	"net/http"

	"github.com/trezcool/confadmin/core/user"
)

const usersPath = "/users"

var _ user.Repository = (*Client)(nil)

func (c *Client) ListUsers(ctx context.Context) ([]user.User, error) {
	return list[user.User](ctx, c, usersPath, nil)
}

func (c *Client) GetUser(ctx context.Context, id string) (user.User, error) {
	return get[user.User](ctx, c, resourcePath(usersPath, id))
}

func (c *Client) UpdateUserRoles(ctx context.Context, id string, roles []string) (user.User, error) {
	body := map[string][]string{"roles": roles}
	return send[user.User](ctx, c, http.MethodPut, resourcePath(usersPath, id, "roles"), body)
}

func (c *Client) UpdateUserStatus(ctx context.Context, id string, isActive bool) (user.User, error) {
	body := map[string]bool{"is_active": isActive}
	return send[user.User](ctx, c, http.MethodPatch, resourcePath(usersPath, id, "status"), body)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.delete(ctx, resourcePath(usersPath, id))
}

func (c *Client) GetUserKYC(ctx context.Context, id string) (user.KYC, error) {
	return get[user.KYC](ctx, c, resourcePath(usersPath, id, "kyc"))
}

func (c *Client) ReviewUserKYC(ctx context.Context, id string, decision user.KYCDecision) (user.KYC, error) {
	return send[user.KYC](ctx, c, http.MethodPut, resourcePath(usersPath, id, "kyc"), decision)
}
