package service

import (
	"context"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/hindibooks/storefront/internal/core/domain"
	"github.com/hindibooks/storefront/internal/core/ports"
	"github.com/hindibooks/storefront/internal/core/query"
)

const (
	familyBooks = "books"
	familyCart  = "cart"

	featuredPerPage = 8
	categoryPerPage = 12
)

// CatalogConfig holds the stale windows of each catalog read.
type CatalogConfig struct {
	BooksStale      time.Duration
	FeaturedStale   time.Duration
	BookStale       time.Duration
	CategoriesStale time.Duration
	SearchStale     time.Duration
	// SearchMinLength is the query length, in characters, below which
	// search is disabled.
	SearchMinLength int
}

// DefaultCatalogConfig returns the storefront's stock windows.
func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		BooksStale:      5 * time.Minute,
		FeaturedStale:   10 * time.Minute,
		BookStale:       5 * time.Minute,
		CategoriesStale: 10 * time.Minute,
		SearchStale:     2 * time.Minute,
		SearchMinLength: 2,
	}
}

type CatalogService struct {
	api    ports.CatalogAPI
	cache  *query.Cache
	cfg    CatalogConfig
	logger zerolog.Logger
}

func NewCatalogService(api ports.CatalogAPI, cache *query.Cache, cfg CatalogConfig, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		api:    api,
		cache:  cache,
		cfg:    cfg,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// Books returns one page of the catalog for q. The cache key carries every
// set filter, so different filters never share an entry.
func (s *CatalogService) Books(ctx context.Context, q domain.BookQuery) (*domain.PaginatedBooks, error) {
	return s.books(ctx, q, s.cfg.BooksStale)
}

// FeaturedBooks is the first page of eight books. It shares the key of the
// equivalent Books call; each caller judges freshness by its own window.
func (s *CatalogService) FeaturedBooks(ctx context.Context) (*domain.PaginatedBooks, error) {
	page, perPage := 1, featuredPerPage
	return s.books(ctx, domain.BookQuery{Page: &page, PerPage: &perPage}, s.cfg.FeaturedStale)
}

// BooksByCategory lists one category. Non-positive page and perPage default
// to 1 and 12. An empty category is disabled and yields an empty page
// without a backend call.
func (s *CatalogService) BooksByCategory(ctx context.Context, category string, page, perPage int) (*domain.PaginatedBooks, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = categoryPerPage
	}
	if category == "" {
		return &domain.PaginatedBooks{Books: []domain.Book{}, Page: page, PerPage: perPage}, nil
	}
	q := domain.BookQuery{Category: &category, Page: &page, PerPage: &perPage}
	return s.books(ctx, q, s.cfg.BooksStale)
}

func (s *CatalogService) books(ctx context.Context, q domain.BookQuery, staleAfter time.Duration) (*domain.PaginatedBooks, error) {
	key := query.NewKey(familyBooks, "list", q.Params())
	return query.Fetch(ctx, s.cache, key, staleAfter, func(ctx context.Context) (*domain.PaginatedBooks, error) {
		return s.api.Books(ctx, q)
	})
}

// Book returns a single book. Non-positive ids are rejected locally.
func (s *CatalogService) Book(ctx context.Context, id int) (*domain.Book, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidID
	}
	key := query.NewKey(familyBooks, "detail", map[string]string{"id": strconv.Itoa(id)})
	return query.Fetch(ctx, s.cache, key, s.cfg.BookStale, func(ctx context.Context) (*domain.Book, error) {
		return s.api.Book(ctx, id)
	})
}

func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	key := query.NewKey(familyBooks, "categories", nil)
	return query.Fetch[[]domain.Category](ctx, s.cache, key, s.cfg.CategoriesStale, s.api.Categories)
}

// Search runs a full-text search. Queries shorter than SearchMinLength
// return an empty result and never reach the backend.
func (s *CatalogService) Search(ctx context.Context, q string, limit int) (*domain.SearchResult, error) {
	if utf8.RuneCountInString(q) < s.cfg.SearchMinLength {
		s.logger.Debug().Str("query", q).Msg("search below minimum length, skipped")
		return &domain.SearchResult{Query: q, Results: []domain.Book{}}, nil
	}

	params := map[string]string{"q": q}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	key := query.NewKey(familyBooks, "search", params)
	return query.Fetch(ctx, s.cache, key, s.cfg.SearchStale, func(ctx context.Context) (*domain.SearchResult, error) {
		return s.api.Search(ctx, q, limit)
	})
}
