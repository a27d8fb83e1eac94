package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hindibooks/storefront/internal/core/domain"
)

type stubSessions struct {
	session domain.Session
}

func (s *stubSessions) Snapshot() domain.Session             { return s.session }
func (s *stubSessions) Subscribe(func(domain.Session)) func() { return func() {} }

func TestRequireSession_Authenticated(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	sessions := &stubSessions{session: domain.Session{
		State: domain.SessionAuthenticated,
		User:  &domain.User{ID: 7, Username: "alice"},
	}}

	called := false
	handler := RequireSession(sessions)(func(c echo.Context) error {
		called = true
		u, ok := c.Get(UserKey).(*domain.User)
		if !ok || u.Username != "alice" {
			t.Fatalf("user not injected: %#v", c.Get(UserKey))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireSession_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		session domain.Session
	}{
		{"unresolved", domain.Session{State: domain.SessionUnresolved}},
		{"anonymous", domain.Session{State: domain.SessionAnonymous}},
		{"authenticated without user", domain.Session{State: domain.SessionAuthenticated}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/cart", nil)
			c := e.NewContext(req, httptest.NewRecorder())

			handler := RequireSession(&stubSessions{session: tt.session})(func(c echo.Context) error {
				t.Fatalf("next must not be called")
				return nil
			})

			err := handler(c)
			if !errors.Is(err, domain.ErrNotAuthenticated) {
				t.Fatalf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	}
}
