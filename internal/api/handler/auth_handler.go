package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hindibooks/storefront/internal/core/domain"
	"github.com/hindibooks/storefront/internal/core/ports"
)

// AuthHandler exposes the session service to the UI.
type AuthHandler struct {
	sessions ports.SessionService
}

func NewAuthHandler(sessions ports.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Session returns the current session snapshot.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, toSessionResponse(h.sessions.Snapshot()))
}

// Login authenticates against the backend and binds the session to the user.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /session/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	creds := domain.Credentials{Username: req.Username, Password: req.Password}
	if err := h.sessions.Login(c.Request().Context(), creds); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toSessionResponse(h.sessions.Snapshot()))
}

// Register creates an account and logs in with it.
//
// @Summary      Register and login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /session/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	reg := domain.Registration{Username: req.Username, Email: req.Email, Password: req.Password}
	if err := h.sessions.Register(c.Request().Context(), reg); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toSessionResponse(h.sessions.Snapshot()))
}

// Logout clears the session. It always succeeds.
//
// @Summary      Logout
// @Tags         session
// @Success      204
// @Router       /session [delete]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
