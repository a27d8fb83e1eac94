// Package memory keeps the auth token in process memory only. A restart
// always starts anonymous.
package memory

import (
	"context"
	"sync"
)

type TokenStore struct {
	mu    sync.Mutex
	token string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

func (s *TokenStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *TokenStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	return s.Save(ctx, "")
}

func (s *TokenStore) Ping(context.Context) error { return nil }
