package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/hindibooks/storefront/internal/api/middleware"
	"github.com/hindibooks/storefront/internal/core/domain"
)

// ctxUser returns the user injected by the RequireSession middleware. A
// missing user means the middleware did not run, so the request is treated
// as unauthenticated.
func ctxUser(c echo.Context) (*domain.User, error) {
	u, _ := c.Get(middleware.UserKey).(*domain.User)
	if u == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return u, nil
}
