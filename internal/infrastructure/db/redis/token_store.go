package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hindibooks/storefront/internal/pkg/token"
)

const defaultTokenKey = "storefront:auth_token"

// TokenStore keeps the bearer token under a single Redis key. When the token
// is a JWT the key expires together with it.
type TokenStore struct {
	client *redis.Client
	key    string
}

// NewTokenStore creates a TokenStore wrapping the given Redis client.
func NewTokenStore(client *redis.Client, key string) *TokenStore {
	if key == "" {
		key = defaultTokenKey
	}
	return &TokenStore{client: client, key: key}
}

// Load returns the stored token, or "" when the key is absent.
func (s *TokenStore) Load(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("token load: %w", err)
	}
	return val, nil
}

// Save stores raw. An empty or already expired token clears the key instead.
func (s *TokenStore) Save(ctx context.Context, raw string) error {
	if raw == "" {
		return s.Clear(ctx)
	}

	ttl, ok := ttlFor(raw, time.Now())
	if !ok {
		return s.Clear(ctx)
	}

	if err := s.client.Set(ctx, s.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("token save: %w", err)
	}
	return nil
}

// Clear deletes the key. Deleting a missing key is not an error.
func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("token clear: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity.
func (s *TokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// ttlFor derives the key TTL from the token's expiry. Zero means no expiry;
// ok is false when the token has already expired.
func ttlFor(raw string, now time.Time) (ttl time.Duration, ok bool) {
	exp, hasExp := token.ExpiresAt(raw)
	if !hasExp {
		return 0, true
	}
	ttl = exp.Sub(now)
	if ttl <= 0 {
		return 0, false
	}
	return ttl, true
}
