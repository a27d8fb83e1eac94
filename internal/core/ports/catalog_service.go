package ports

import (
	"context"

	"github.com/hindibooks/storefront/internal/core/domain"
)

// CatalogService serves cached catalog reads.
type CatalogService interface {
	Books(ctx context.Context, q domain.BookQuery) (*domain.PaginatedBooks, error)
	FeaturedBooks(ctx context.Context) (*domain.PaginatedBooks, error)
	BooksByCategory(ctx context.Context, category string, page, perPage int) (*domain.PaginatedBooks, error)
	Book(ctx context.Context, id int) (*domain.Book, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	// Search returns an empty result without a network call for queries
	// shorter than the minimum length.
	Search(ctx context.Context, query string, limit int) (*domain.SearchResult, error)
}
