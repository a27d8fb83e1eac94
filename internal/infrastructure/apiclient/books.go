package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hindibooks/storefront/internal/core/domain"
)

// DefaultSearchLimit is used when Search is called with a non-positive limit.
const DefaultSearchLimit = 10

var (
	epBooks      = endpoint{http.MethodGet, "/books"}
	epBook       = endpoint{http.MethodGet, "/books/{id}"}
	epCategories = endpoint{http.MethodGet, "/categories"}
	epSearch     = endpoint{http.MethodGet, "/search"}
)

// Books lists books. Unset query fields are not sent.
func (c *Client) Books(ctx context.Context, q domain.BookQuery) (*domain.PaginatedBooks, error) {
	values := url.Values{}
	for k, v := range q.Params() {
		values.Set(k, v)
	}

	path := "/books"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page domain.PaginatedBooks
	if err := c.request(ctx, epBooks, path, nil, false, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Book fetches a single book.
func (c *Client) Book(ctx context.Context, id int) (*domain.Book, error) {
	var book domain.Book
	if err := c.request(ctx, epBook, "/books/"+strconv.Itoa(id), nil, false, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// Categories lists categories with their book counts.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.request(ctx, epCategories, "/categories", nil, false, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Search runs the quick title/author search.
func (c *Client) Search(ctx context.Context, query string, limit int) (*domain.SearchResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", strconv.Itoa(limit))

	var result domain.SearchResult
	if err := c.request(ctx, epSearch, "/search?"+values.Encode(), nil, false, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
