package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hindibooks/storefront/internal/core/domain"
)

var (
	epLogin       = endpoint{http.MethodPost, "/login"}
	epRegister    = endpoint{http.MethodPost, "/register"}
	epCurrentUser = endpoint{http.MethodGet, "/users/me"}
	epHealth      = endpoint{http.MethodGet, "/health"}
)

// Login exchanges credentials for an access token and stores it before
// returning.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.TokenResponse, error) {
	var resp domain.TokenResponse
	if err := c.request(ctx, epLogin, "/login", creds, false, &resp); err != nil {
		return nil, err
	}
	if err := c.SetToken(ctx, resp.AccessToken); err != nil {
		return &resp, fmt.Errorf("login: %w", err)
	}
	return &resp, nil
}

// Register creates a user. It does not log in.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	var user domain.User
	if err := c.request(ctx, epRegister, "/register", reg, false, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser resolves the identity bound to the current token.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.request(ctx, epCurrentUser, "/users/me", nil, true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Health queries the backend's health endpoint.
func (c *Client) Health(ctx context.Context) (*domain.BackendHealth, error) {
	var h domain.BackendHealth
	if err := c.request(ctx, epHealth, "/health", nil, false, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
