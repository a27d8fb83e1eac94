package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/hindibooks/storefront/internal/core/domain"
	"github.com/hindibooks/storefront/internal/core/ports"
)

// UserKey is the echo context key holding the authenticated *domain.User.
const UserKey = "user"

// RequireSession rejects requests while the session is not authenticated and
// injects the bound user into the context otherwise. The check reads one
// snapshot, so a logout racing the request is seen on the next request.
func RequireSession(sessions ports.SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			snap := sessions.Snapshot()
			if !snap.Authenticated() {
				return domain.ErrNotAuthenticated
			}

			c.Set(UserKey, snap.User)
			return next(c)
		}
	}
}
