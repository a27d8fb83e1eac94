package ports

import (
	"context"

	"github.com/hindibooks/storefront/internal/core/domain"
)

// SessionReader gives read access to the session plus change notifications.
// The returned func cancels the subscription.
type SessionReader interface {
	Snapshot() domain.Session
	Subscribe(fn func(domain.Session)) (unsubscribe func())
}

// SessionService is the single writer of the session.
type SessionService interface {
	SessionReader
	Resolve(ctx context.Context) domain.Session
	Login(ctx context.Context, creds domain.Credentials) error
	Register(ctx context.Context, reg domain.Registration) error
	Logout(ctx context.Context)
}
