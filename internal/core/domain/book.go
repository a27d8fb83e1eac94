package domain

import (
	"strconv"
	"time"
)

// Book mirrors the backend's book representation.
type Book struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Price         float64   `json:"price"`
	ImageURL      string    `json:"image_url"`
	StockQuantity int       `json:"stock_quantity"`
	IsAvailable   bool      `json:"is_available"`
	CreatedAt     time.Time `json:"created_at"`
}

// Category is one entry of GET /categories.
type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PaginatedBooks is the response of GET /books.
type PaginatedBooks struct {
	Books   []Book `json:"books"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Pages   int    `json:"pages"`
}

// SearchResult is the response of GET /search.
type SearchResult struct {
	Query   string `json:"query"`
	Results []Book `json:"results"`
	Count   int    `json:"count"`
}

// BookQuery carries the optional filters of GET /books. Nil fields are
// omitted from both the request URL and the cache key.
type BookQuery struct {
	Page      *int
	PerPage   *int
	Category  *string
	Search    *string
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    *string
	SortOrder *string
}

// Params flattens the query into its wire parameters, skipping unset fields.
func (q BookQuery) Params() map[string]string {
	params := make(map[string]string)
	if q.Page != nil {
		params["page"] = strconv.Itoa(*q.Page)
	}
	if q.PerPage != nil {
		params["per_page"] = strconv.Itoa(*q.PerPage)
	}
	if q.Category != nil {
		params["category"] = *q.Category
	}
	if q.Search != nil {
		params["search"] = *q.Search
	}
	if q.MinPrice != nil {
		params["min_price"] = strconv.FormatFloat(*q.MinPrice, 'f', -1, 64)
	}
	if q.MaxPrice != nil {
		params["max_price"] = strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64)
	}
	if q.SortBy != nil {
		params["sort_by"] = *q.SortBy
	}
	if q.SortOrder != nil {
		params["sort_order"] = *q.SortOrder
	}
	return params
}

// BackendHealth is the response of the backend's GET /health.
type BackendHealth struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	StaticFiles bool   `json:"static_files"`
	Version     string `json:"version,omitempty"`
}
