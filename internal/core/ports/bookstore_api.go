package ports

import (
	"context"

	"github.com/hindibooks/storefront/internal/core/domain"
)

// AuthAPI is the subset of the backend client used by the session service.
type AuthAPI interface {
	RestoreToken(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	Login(ctx context.Context, creds domain.Credentials) (*domain.TokenResponse, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// CatalogAPI covers the public book endpoints.
type CatalogAPI interface {
	Books(ctx context.Context, q domain.BookQuery) (*domain.PaginatedBooks, error)
	Book(ctx context.Context, id int) (*domain.Book, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	Search(ctx context.Context, query string, limit int) (*domain.SearchResult, error)
}

// CartAPI covers the authenticated cart endpoints.
type CartAPI interface {
	Cart(ctx context.Context) (*domain.CartSummary, error)
	AddToCart(ctx context.Context, bookID, quantity int) (*domain.MessageResponse, error)
	UpdateCartItem(ctx context.Context, itemID, quantity int) (*domain.MessageResponse, error)
	RemoveFromCart(ctx context.Context, itemID int) (*domain.MessageResponse, error)
	ClearCart(ctx context.Context) (*domain.MessageResponse, error)
}
