package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hindibooks/storefront/internal/core/domain"
)

type stubCatalogService struct {
	lastQuery    domain.BookQuery
	lastCategory string
	lastSearch   string
	lastLimit    int
	book         *domain.Book
	bookErr      error
}

func (s *stubCatalogService) Books(_ context.Context, q domain.BookQuery) (*domain.PaginatedBooks, error) {
	s.lastQuery = q
	return &domain.PaginatedBooks{Books: []domain.Book{}, Page: 1}, nil
}

func (s *stubCatalogService) FeaturedBooks(context.Context) (*domain.PaginatedBooks, error) {
	return &domain.PaginatedBooks{Books: []domain.Book{{ID: 1}}, Page: 1, PerPage: 8}, nil
}

func (s *stubCatalogService) BooksByCategory(_ context.Context, category string, _, _ int) (*domain.PaginatedBooks, error) {
	s.lastCategory = category
	return &domain.PaginatedBooks{Books: []domain.Book{}}, nil
}

func (s *stubCatalogService) Book(_ context.Context, id int) (*domain.Book, error) {
	if s.bookErr != nil {
		return nil, s.bookErr
	}
	if s.book != nil {
		return s.book, nil
	}
	return &domain.Book{ID: id, Title: "Godaan"}, nil
}

func (s *stubCatalogService) Categories(context.Context) ([]domain.Category, error) {
	return []domain.Category{{Name: "Fiction", Count: 2}}, nil
}

func (s *stubCatalogService) Search(_ context.Context, q string, limit int) (*domain.SearchResult, error) {
	s.lastSearch, s.lastLimit = q, limit
	return &domain.SearchResult{Query: q, Results: []domain.Book{}}, nil
}

func TestCatalogHandler_List_ParsesFilters(t *testing.T) {
	e := newTestEcho()
	stub := &stubCatalogService{}
	handler := NewCatalogHandler(stub)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/books?page=2&category=Poetry&min_price=99.5&sort_by=price&sort_order=asc", nil)
	c := e.NewContext(req, rec)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	q := stub.lastQuery
	if q.Page == nil || *q.Page != 2 {
		t.Fatalf("page not parsed: %+v", q.Page)
	}
	if q.Category == nil || *q.Category != "Poetry" {
		t.Fatalf("category not parsed")
	}
	if q.MinPrice == nil || *q.MinPrice != 99.5 {
		t.Fatalf("min_price not parsed")
	}
	if q.PerPage != nil || q.MaxPrice != nil || q.Search != nil {
		t.Fatalf("unset filters must stay nil: %+v", q)
	}
}

func TestCatalogHandler_List_RejectsBadParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric page", "page=abc"},
		{"zero page", "page=0"},
		{"negative price", "min_price=-1"},
		{"bad sort order", "sort_order=sideways"},
		{"bad sort field", "sort_by=isbn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/books?"+tt.query, nil), rec)

			if err := NewCatalogHandler(&stubCatalogService{}).List(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestCatalogHandler_Get_InvalidID(t *testing.T) {
	e := newTestEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/books/abc", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	if err := NewCatalogHandler(&stubCatalogService{}).Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCatalogHandler_Get_BackendErrorPropagates(t *testing.T) {
	e := newTestEcho()
	want := &domain.RequestError{StatusCode: http.StatusNotFound, Message: "Book not found"}
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/books/9", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("9")

	if err := NewCatalogHandler(&stubCatalogService{bookErr: want}).Get(c); err != want {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestCatalogHandler_CategoryBooks_Unescapes(t *testing.T) {
	e := newTestEcho()
	stub := &stubCatalogService{}
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/categories/Children%27s%20Books/books", nil), httptest.NewRecorder())
	c.SetParamNames("name")
	c.SetParamValues("Children%27s%20Books")

	if err := NewCatalogHandler(stub).CategoryBooks(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.lastCategory != "Children's Books" {
		t.Fatalf("unexpected category %q", stub.lastCategory)
	}
}

func TestCatalogHandler_Search(t *testing.T) {
	e := newTestEcho()
	stub := &stubCatalogService{}
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/search?q=prem&limit=5", nil), rec)

	if err := NewCatalogHandler(stub).Search(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.lastSearch != "prem" || stub.lastLimit != 5 {
		t.Fatalf("unexpected search args %q %d", stub.lastSearch, stub.lastLimit)
	}

	var resp domain.SearchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Query != "prem" {
		t.Fatalf("unexpected query echo %q", resp.Query)
	}
}

func TestCatalogHandler_Search_LimitOutOfRange(t *testing.T) {
	e := newTestEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/search?q=prem&limit=500", nil), rec)

	if err := NewCatalogHandler(&stubCatalogService{}).Search(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
