package ports

import (
	"context"

	"github.com/hindibooks/storefront/internal/core/domain"
)

// CartService separates cart reads from cart commands. Commands return only
// success or failure; on success they invalidate every cached cart entry.
type CartService interface {
	Cart(ctx context.Context) (*domain.CartSummary, error)
	Add(ctx context.Context, book domain.Book, quantity int) error
	UpdateQuantity(ctx context.Context, itemID, quantity int) error
	Remove(ctx context.Context, itemID int) error
	Clear(ctx context.Context) error
	InvalidateCart() int
}
