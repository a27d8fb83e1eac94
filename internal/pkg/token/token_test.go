package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := sign(t, jwt.MapClaims{"sub": "alice", "exp": exp.Unix()})

	got, ok := ExpiresAt(raw)
	if !ok {
		t.Fatalf("expected expiry to be readable")
	}
	if !got.Equal(exp) {
		t.Fatalf("expected %v, got %v", exp, got)
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()
	past := sign(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()})
	future := sign(t, jwt.MapClaims{"exp": now.Add(time.Minute).Unix()})
	noExp := sign(t, jwt.MapClaims{"sub": "bob"})

	if !Expired(past, now) {
		t.Fatalf("expected past token to be expired")
	}
	if Expired(future, now) {
		t.Fatalf("expected future token to be valid")
	}
	if Expired(noExp, now) {
		t.Fatalf("token without exp must not be expired")
	}
	if Expired("opaque-token", now) {
		t.Fatalf("opaque token must not be expired")
	}
}
