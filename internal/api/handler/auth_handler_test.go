package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hindibooks/storefront/internal/core/domain"
)

type stubSessionService struct {
	session    domain.Session
	loginFn    func(ctx context.Context, creds domain.Credentials) error
	registerFn func(ctx context.Context, reg domain.Registration) error
	loggedOut  bool
}

func (s *stubSessionService) Snapshot() domain.Session               { return s.session }
func (s *stubSessionService) Subscribe(func(domain.Session)) func()  { return func() {} }
func (s *stubSessionService) Resolve(context.Context) domain.Session { return s.session }

func (s *stubSessionService) Login(ctx context.Context, creds domain.Credentials) error {
	return s.loginFn(ctx, creds)
}

func (s *stubSessionService) Register(ctx context.Context, reg domain.Registration) error {
	return s.registerFn(ctx, reg)
}

func (s *stubSessionService) Logout(context.Context) {
	s.loggedOut = true
	s.session = domain.Session{State: domain.SessionAnonymous}
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{session: domain.Session{State: domain.SessionAnonymous}}
	stub.loginFn = func(_ context.Context, creds domain.Credentials) error {
		if creds.Username != "alice" || creds.Password != "secret" {
			t.Fatalf("unexpected credentials: %+v", creds)
		}
		stub.session = domain.Session{
			State: domain.SessionAuthenticated,
			User:  &domain.User{ID: 1, Username: "alice"},
		}
		return nil
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/session/login", `{"username":"alice","password":"secret"}`), rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["is_authenticated"] != true || resp["state"] != "authenticated" {
		t.Fatalf("unexpected session payload: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "alice" {
		t.Fatalf("expected user in response, got %+v", resp["user"])
	}
}

func TestAuthHandler_Login_ValidationError(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{
		loginFn: func(context.Context, domain.Credentials) error {
			t.Fatalf("service must not be called")
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/session/login", `{"username":"alice"}`), rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "password is required") {
		t.Fatalf("expected field message, got %s", rec.Body.String())
	}
}

func TestAuthHandler_Login_ServiceErrorPropagates(t *testing.T) {
	e := newTestEcho()
	want := &domain.RequestError{StatusCode: http.StatusUnauthorized, Message: "Invalid username or password"}
	stub := &stubSessionService{
		loginFn: func(context.Context, domain.Credentials) error { return want },
	}
	handler := NewAuthHandler(stub)

	c := e.NewContext(jsonRequest(http.MethodPost, "/session/login", `{"username":"alice","password":"bad"}`), httptest.NewRecorder())

	if err := handler.Login(c); err != want {
		t.Fatalf("expected the service error to reach the error handler, got %v", err)
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{}
	stub.registerFn = func(_ context.Context, reg domain.Registration) error {
		if reg.Username != "ravi" || reg.Email != "ravi@example.com" {
			t.Fatalf("unexpected registration: %+v", reg)
		}
		stub.session = domain.Session{State: domain.SessionAuthenticated, User: &domain.User{ID: 2, Username: "ravi"}}
		return nil
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	body := `{"username":"ravi","email":"ravi@example.com","password":"secret1"}`
	c := e.NewContext(jsonRequest(http.MethodPost, "/session/register", body), rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_InvalidEmail(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubSessionService{})

	rec := httptest.NewRecorder()
	body := `{"username":"ravi","email":"not-an-email","password":"secret1"}`
	c := e.NewContext(jsonRequest(http.MethodPost, "/session/register", body), rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "email must be a valid email") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{session: domain.Session{State: domain.SessionAuthenticated, User: &domain.User{ID: 1}}}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/session", nil), rec)

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !stub.loggedOut {
		t.Fatalf("logout not called")
	}
}

func TestAuthHandler_Session(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubSessionService{session: domain.Session{State: domain.SessionUnresolved, Loading: true}})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/session", nil), rec)

	if err := handler.Session(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.IsAuthenticated || !resp.IsLoading || resp.User != nil {
		t.Fatalf("unexpected session: %+v", resp)
	}
}
