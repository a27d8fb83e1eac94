// Package token inspects bearer tokens without verifying their signature.
// The client never holds the signing key; these helpers only read claims the
// backend put there so the client can skip requests that are bound to fail.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiresAt returns the "exp" claim of a JWT. ok is false for opaque tokens
// or JWTs without an expiry.
func ExpiresAt(raw string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}

	nd, err := claims.GetExpirationTime()
	if err != nil || nd == nil {
		return time.Time{}, false
	}
	return nd.Time, true
}

// Expired reports whether raw carries an expiry that is not after now.
// Tokens without a readable expiry are never considered expired.
func Expired(raw string, now time.Time) bool {
	exp, ok := ExpiresAt(raw)
	return ok && !exp.After(now)
}
