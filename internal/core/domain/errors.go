package domain

import (
	"errors"
	"net/http"
)

var (
	// ErrNetwork marks transport-level failures where no response arrived.
	ErrNetwork = errors.New("network failure")

	// ErrAuthExpired wraps any failure met while resolving a persisted token.
	// It forces a logout and is never shown to the user.
	ErrAuthExpired = errors.New("authentication expired")

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrOutOfStock       = errors.New("requested quantity exceeds stock")
	ErrBookUnavailable  = errors.New("book is not available")
	ErrInvalidID        = errors.New("invalid id")
)

// RequestError is returned for any non-2xx backend response. Message holds
// the backend's "detail" when present, otherwise a status-code fallback.
type RequestError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Unauthorized reports whether the backend rejected the credentials.
func (e *RequestError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// AsRequestError extracts a *RequestError from err's chain.
func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
