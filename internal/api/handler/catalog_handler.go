package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hindibooks/storefront/internal/core/domain"
	"github.com/hindibooks/storefront/internal/core/ports"
)

// CatalogHandler serves cached catalog reads.
type CatalogHandler struct {
	catalog ports.CatalogService
}

func NewCatalogHandler(catalog ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type bookListQuery struct {
	Page      *int     `json:"page"       validate:"omitempty,gt=0"`
	PerPage   *int     `json:"per_page"   validate:"omitempty,gt=0,lte=100"`
	Category  *string  `json:"category"`
	Search    *string  `json:"search"`
	MinPrice  *float64 `json:"min_price"  validate:"omitempty,gte=0"`
	MaxPrice  *float64 `json:"max_price"  validate:"omitempty,gte=0"`
	SortBy    *string  `json:"sort_by"    validate:"omitempty,oneof=title author price created_at"`
	SortOrder *string  `json:"sort_order" validate:"omitempty,oneof=asc desc"`
}

func (q bookListQuery) toDomain() domain.BookQuery {
	return domain.BookQuery{
		Page:      q.Page,
		PerPage:   q.PerPage,
		Category:  q.Category,
		Search:    q.Search,
		MinPrice:  q.MinPrice,
		MaxPrice:  q.MaxPrice,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
}

// List handles GET /books.
//
// @Summary      List books
// @Tags         catalog
// @Produce      json
// @Param        page        query     int     false  "Page number"
// @Param        per_page    query     int     false  "Page size"
// @Param        category    query     string  false  "Category filter"
// @Param        search      query     string  false  "Title/author/description filter"
// @Param        min_price   query     number  false  "Minimum price"
// @Param        max_price   query     number  false  "Maximum price"
// @Param        sort_by     query     string  false  "title, author, price or created_at"
// @Param        sort_order  query     string  false  "asc or desc"
// @Success      200         {object}  domain.PaginatedBooks
// @Failure      400         {object}  errorResponse
// @Failure      502         {object}  errorResponse
// @Router       /books [get]
func (h *CatalogHandler) List(c echo.Context) error {
	var (
		q   bookListQuery
		err error
	)
	if q.Page, err = optionalInt(c, "page"); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	if q.PerPage, err = optionalInt(c, "per_page"); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	if q.MinPrice, err = optionalFloat(c, "min_price"); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	if q.MaxPrice, err = optionalFloat(c, "max_price"); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	q.Category = optionalString(c, "category")
	q.Search = optionalString(c, "search")
	q.SortBy = optionalString(c, "sort_by")
	q.SortOrder = optionalString(c, "sort_order")

	if err := c.Validate(&q); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	books, err := h.catalog.Books(c.Request().Context(), q.toDomain())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, books)
}

// Featured handles GET /books/featured.
//
// @Summary      Featured books
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  domain.PaginatedBooks
// @Failure      502  {object}  errorResponse
// @Router       /books/featured [get]
func (h *CatalogHandler) Featured(c echo.Context) error {
	books, err := h.catalog.FeaturedBooks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, books)
}

// Get handles GET /books/:id.
//
// @Summary      Book detail
// @Tags         catalog
// @Produce      json
// @Param        id   path      int  true  "Book id"
// @Success      200  {object}  domain.Book
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /books/{id} [get]
func (h *CatalogHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid book id"})
	}

	book, err := h.catalog.Book(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

// Categories handles GET /categories.
//
// @Summary      Categories with book counts
// @Tags         catalog
// @Produce      json
// @Success      200  {array}   domain.Category
// @Failure      502  {object}  errorResponse
// @Router       /categories [get]
func (h *CatalogHandler) Categories(c echo.Context) error {
	cats, err := h.catalog.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cats)
}

// CategoryBooks handles GET /categories/:name/books.
//
// @Summary      Books in a category
// @Tags         catalog
// @Produce      json
// @Param        name      path      string  true   "Category name"
// @Param        page      query     int     false  "Page number"
// @Param        per_page  query     int     false  "Page size"
// @Success      200       {object}  domain.PaginatedBooks
// @Failure      400       {object}  errorResponse
// @Router       /categories/{name}/books [get]
func (h *CatalogHandler) CategoryBooks(c echo.Context) error {
	name := c.Param("name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	page, err := optionalInt(c, "page")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	perPage, err := optionalInt(c, "per_page")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	books, err := h.catalog.BooksByCategory(c.Request().Context(), name, deref(page), deref(perPage))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, books)
}

// Search handles GET /search. Queries shorter than two characters return an
// empty result.
//
// @Summary      Search books
// @Tags         catalog
// @Produce      json
// @Param        q      query     string  true   "Search text"
// @Param        limit  query     int     false  "Maximum results"
// @Success      200    {object}  domain.SearchResult
// @Failure      400    {object}  errorResponse
// @Router       /search [get]
func (h *CatalogHandler) Search(c echo.Context) error {
	limit, err := optionalInt(c, "limit")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	if limit != nil && (*limit < 1 || *limit > 50) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be between 1 and 50"})
	}

	res, err := h.catalog.Search(c.Request().Context(), c.QueryParam("q"), deref(limit))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// --- query parameter helpers ---

func optionalString(c echo.Context, name string) *string {
	if !c.QueryParams().Has(name) {
		return nil
	}
	v := c.QueryParam(name)
	return &v
}

func optionalInt(c echo.Context, name string) (*int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &v, nil
}

func optionalFloat(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &v, nil
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
