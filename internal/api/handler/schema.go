package handler

import "github.com/hindibooks/storefront/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Session ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// sessionResponse is the UI-facing view of the session.
type sessionResponse struct {
	State           domain.SessionState `json:"state"`
	IsAuthenticated bool                `json:"is_authenticated"`
	IsLoading       bool                `json:"is_loading"`
	User            *domain.User        `json:"user"`
	Error           string              `json:"error,omitempty"`
}

func toSessionResponse(s domain.Session) sessionResponse {
	return sessionResponse{
		State:           s.State,
		IsAuthenticated: s.Authenticated(),
		IsLoading:       s.Loading,
		User:            s.User,
		Error:           s.Error,
	}
}

// --- Cart ---

type addToCartRequest struct {
	BookID   int  `json:"book_id"  validate:"required,gt=0"`
	Quantity *int `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}
