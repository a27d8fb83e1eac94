package ports

import "context"

// TokenStore persists the bearer token across process restarts. Load returns
// an empty string when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error
}
