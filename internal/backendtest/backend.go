// Package backendtest runs an in-process bookstore backend that follows the
// real backend's HTTP contract. It exists for tests of the client, the
// services and the agent API.
package backendtest

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/hindibooks/storefront/internal/core/domain"
)

const defaultSecret = "backendtest-secret"

type user struct {
	domain.User
	passwordHash string
}

type cartLine struct {
	id        int
	userID    int
	bookID    int
	quantity  int
	createdAt time.Time
}

type forcedFailure struct {
	status int
	detail string
}

// Backend is a fake bookstore backend served over HTTP.
type Backend struct {
	server   *httptest.Server
	secret   []byte
	tokenTTL time.Duration

	mu       sync.Mutex
	books    map[int]domain.Book
	users    map[string]*user
	cart     map[int]*cartLine
	nextID   int
	requests map[string]int
	failures map[string]forcedFailure
}

// Option configures a Backend.
type Option func(*Backend)

// WithTokenTTL sets the lifetime of issued access tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(b *Backend) { b.tokenTTL = ttl }
}

// Start launches the backend. Call Close when done.
func Start(opts ...Option) *Backend {
	b := &Backend{
		secret:   []byte(defaultSecret),
		tokenTTL: 24 * time.Hour,
		books:    make(map[int]domain.Book),
		users:    make(map[string]*user),
		cart:     make(map[int]*cartLine),
		nextID:   1,
		requests: make(map[string]int),
		failures: make(map[string]forcedFailure),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.server = httptest.NewServer(b.router())
	return b
}

// URL is the base URL of the backend.
func (b *Backend) URL() string { return b.server.URL }

// Close shuts the server down.
func (b *Backend) Close() { b.server.Close() }

// AddBook stores a book and returns its id. A zero ID is assigned.
func (b *Backend) AddBook(book domain.Book) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if book.ID == 0 {
		book.ID = b.allocID()
	} else if book.ID >= b.nextID {
		b.nextID = book.ID + 1
	}
	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now().UTC()
	}
	b.books[book.ID] = book
	return book.ID
}

// SetStock changes a book's stock quantity.
func (b *Backend) SetStock(bookID, stock int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if book, ok := b.books[bookID]; ok {
		book.StockQuantity = stock
		b.books[bookID] = book
	}
}

// Requests returns how many requests hit the given method and route
// template, e.g. ("GET", "/cart/:id").
func (b *Backend) Requests(method, route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[method+" "+route]
}

// Fail makes every request to method+route answer with status and detail
// until Recover is called.
func (b *Backend) Fail(method, route string, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+route] = forcedFailure{status: status, detail: detail}
}

// Recover removes a failure installed by Fail.
func (b *Backend) Recover(method, route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, method+" "+route)
}

// IssueToken signs a token for username the same way POST /login does.
func (b *Backend) IssueToken(username string, ttl time.Duration) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      username,
		"is_admin": false,
		"type":     "access",
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		panic(fmt.Sprintf("backendtest: sign token: %v", err))
	}
	return signed
}

func (b *Backend) allocID() int {
	id := b.nextID
	b.nextID++
	return id
}

func (b *Backend) router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = detailErrorHandler
	e.Use(b.track)

	e.GET("/health", b.health)
	e.GET("/books", b.listBooks)
	e.GET("/books/:id", b.getBook)
	e.GET("/categories", b.categories)
	e.GET("/search", b.search)
	e.POST("/register", b.register)
	e.POST("/login", b.login)

	e.GET("/users/me", b.me, b.auth)
	e.GET("/cart", b.getCart, b.auth)
	e.POST("/cart", b.addToCart, b.auth)
	e.PUT("/cart/:id", b.updateCartItem, b.auth)
	e.DELETE("/cart/:id", b.removeFromCart, b.auth)
	e.DELETE("/cart", b.clearCart, b.auth)

	return e
}

// detailErrorHandler renders errors as {"detail": "..."} like the real backend.
func detailErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprintf("%v", he.Message)
	}
	_ = c.JSON(code, map[string]string{"detail": msg})
}

func (b *Backend) track(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Method + " " + c.Path()

		b.mu.Lock()
		b.requests[key]++
		failure, failing := b.failures[key]
		b.mu.Unlock()

		if failing {
			return echo.NewHTTPError(failure.status, failure.detail)
		}
		return next(c)
	}
}

// auth validates the bearer token and injects the username.
func (b *Backend) auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return echo.NewHTTPError(http.StatusForbidden, "Not authenticated")
		}

		claims := jwt.MapClaims{}
		tkn, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return b.secret, nil
		})
		if errors.Is(err, jwt.ErrTokenExpired) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
		}
		if err != nil || !tkn.Valid {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}

		sub, _ := claims.GetSubject()
		if sub == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token payload")
		}
		c.Set("username", sub)
		return next(c)
	}
}

func (b *Backend) currentUser(c echo.Context) (*user, error) {
	username, _ := c.Get("username").(string)
	u, ok := b.users[username]
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return u, nil
}

func (b *Backend) health(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.BackendHealth{
		Status:      "healthy",
		Database:    "connected",
		StaticFiles: true,
		Version:     "test",
	})
}

func (b *Backend) listBooks(c echo.Context) error {
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 12)
	if page < 1 || perPage < 1 || perPage > 50 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid pagination")
	}
	category := c.QueryParam("category")
	search := strings.ToLower(c.QueryParam("search"))
	minPrice, hasMin := queryFloat(c, "min_price")
	maxPrice, hasMax := queryFloat(c, "max_price")

	b.mu.Lock()
	var matched []domain.Book
	for _, book := range b.books {
		if !book.IsAvailable {
			continue
		}
		if category != "" && book.Category != category {
			continue
		}
		if search != "" && !containsAny(search, book.Title, book.Author, book.Description) {
			continue
		}
		if hasMin && book.Price < minPrice {
			continue
		}
		if hasMax && book.Price > maxPrice {
			continue
		}
		matched = append(matched, book)
	}
	b.mu.Unlock()

	sortBooks(matched, c.QueryParam("sort_by"), c.QueryParam("sort_order"))

	total := len(matched)
	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	pages := 1
	if total > 0 {
		pages = int(math.Ceil(float64(total) / float64(perPage)))
	}

	return c.JSON(http.StatusOK, domain.PaginatedBooks{
		Books:   append([]domain.Book{}, matched[start:end]...),
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   pages,
	})
}

func (b *Backend) getBook(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid book id")
	}

	b.mu.Lock()
	book, ok := b.books[id]
	b.mu.Unlock()

	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Book not found")
	}
	return c.JSON(http.StatusOK, book)
}

func (b *Backend) categories(c echo.Context) error {
	b.mu.Lock()
	counts := make(map[string]int)
	for _, book := range b.books {
		if book.IsAvailable && book.Category != "" {
			counts[book.Category]++
		}
	}
	b.mu.Unlock()

	out := make([]domain.Category, 0, len(counts))
	for name, n := range counts {
		out = append(out, domain.Category{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) search(c echo.Context) error {
	q := c.QueryParam("q")
	if len(q) < 2 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "query too short")
	}
	limit := queryInt(c, "limit", 10)
	needle := strings.ToLower(q)

	b.mu.Lock()
	results := []domain.Book{}
	for _, book := range b.books {
		if book.IsAvailable && containsAny(needle, book.Title, book.Author) {
			results = append(results, book)
		}
	}
	b.mu.Unlock()

	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	if len(results) > limit {
		results = results[:limit]
	}
	return c.JSON(http.StatusOK, domain.SearchResult{Query: q, Results: results, Count: len(results)})
}

func (b *Backend) register(c echo.Context) error {
	var req domain.Registration
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, u := range b.users {
		if u.Username == req.Username {
			return echo.NewHTTPError(http.StatusBadRequest, "Username already registered")
		}
		if u.Email == req.Email {
			return echo.NewHTTPError(http.StatusBadRequest, "Email already registered")
		}
	}

	u := &user{
		User: domain.User{
			ID:        b.allocID(),
			Username:  req.Username,
			Email:     req.Email,
			CreatedAt: time.Now().UTC(),
		},
		passwordHash: string(hash),
	}
	b.users[u.Username] = u
	return c.JSON(http.StatusCreated, u.User)
}

func (b *Backend) login(c echo.Context) error {
	var req domain.Credentials
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid payload")
	}

	b.mu.Lock()
	u, ok := b.users[req.Username]
	b.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	}

	return c.JSON(http.StatusOK, domain.TokenResponse{
		AccessToken: b.IssueToken(u.Username, b.tokenTTL),
		TokenType:   "bearer",
	})
}

func (b *Backend) me(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	u, err := b.currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u.User)
}

func (b *Backend) getCart(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	u, err := b.currentUser(c)
	if err != nil {
		return err
	}

	lines := make([]*cartLine, 0)
	for _, line := range b.cart {
		if line.userID == u.ID {
			lines = append(lines, line)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].id < lines[j].id })

	summary := domain.CartSummary{Items: []domain.CartItem{}}
	for _, line := range lines {
		book, ok := b.books[line.bookID]
		if !ok || !book.IsAvailable {
			continue
		}
		summary.Items = append(summary.Items, domain.CartItem{
			ID:        line.id,
			Book:      book,
			Quantity:  line.quantity,
			CreatedAt: line.createdAt,
		})
		summary.TotalItems += line.quantity
		summary.TotalPrice += book.Price * float64(line.quantity)
	}
	summary.TotalPrice = math.Round(summary.TotalPrice*100) / 100
	return c.JSON(http.StatusOK, summary)
}

func (b *Backend) addToCart(c echo.Context) error {
	req := struct {
		BookID   int  `json:"book_id"`
		Quantity *int `json:"quantity"`
	}{}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid payload")
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	u, err := b.currentUser(c)
	if err != nil {
		return err
	}
	book, ok := b.books[req.BookID]
	if !ok || !book.IsAvailable {
		return echo.NewHTTPError(http.StatusNotFound, "Book not found or unavailable")
	}
	if book.StockQuantity < quantity {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Only %d items available in stock", book.StockQuantity))
	}

	for _, line := range b.cart {
		if line.userID == u.ID && line.bookID == book.ID {
			if line.quantity+quantity > book.StockQuantity {
				return echo.NewHTTPError(http.StatusBadRequest,
					fmt.Sprintf("Cannot add %d more. Only %d available", quantity, book.StockQuantity-line.quantity))
			}
			line.quantity += quantity
			return c.JSON(http.StatusCreated, domain.MessageResponse{Message: "Added to cart successfully"})
		}
	}

	id := b.allocID()
	b.cart[id] = &cartLine{id: id, userID: u.ID, bookID: book.ID, quantity: quantity, createdAt: time.Now().UTC()}
	return c.JSON(http.StatusCreated, domain.MessageResponse{Message: "Added to cart successfully"})
}

func (b *Backend) updateCartItem(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid cart item id")
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid payload")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	line, err := b.ownedLine(c, id)
	if err != nil {
		return err
	}
	book, ok := b.books[line.bookID]
	if !ok || !book.IsAvailable {
		return echo.NewHTTPError(http.StatusBadRequest, "Book no longer available")
	}
	if book.StockQuantity < req.Quantity {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Only %d items available in stock", book.StockQuantity))
	}

	line.quantity = req.Quantity
	return c.JSON(http.StatusOK, domain.MessageResponse{Message: "Cart item updated successfully"})
}

func (b *Backend) removeFromCart(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid cart item id")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.ownedLine(c, id); err != nil {
		return err
	}
	delete(b.cart, id)
	return c.JSON(http.StatusOK, domain.MessageResponse{Message: "Removed from cart successfully"})
}

func (b *Backend) clearCart(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	u, err := b.currentUser(c)
	if err != nil {
		return err
	}
	n := 0
	for id, line := range b.cart {
		if line.userID == u.ID {
			delete(b.cart, id)
			n++
		}
	}
	return c.JSON(http.StatusOK, domain.MessageResponse{Message: fmt.Sprintf("Cleared %d items from cart", n)})
}

func (b *Backend) ownedLine(c echo.Context, id int) (*cartLine, error) {
	u, err := b.currentUser(c)
	if err != nil {
		return nil, err
	}
	line, ok := b.cart[id]
	if !ok || line.userID != u.ID {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Cart item not found")
	}
	return line, nil
}

func queryInt(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func queryFloat(c echo.Context, name string) (float64, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func containsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func sortBooks(books []domain.Book, sortBy, order string) {
	if sortBy == "" {
		sortBy = "created_at"
	}
	desc := order == "" || order == "desc"
	less := func(i, j int) bool {
		switch sortBy {
		case "title":
			return books[i].Title < books[j].Title
		case "author":
			return books[i].Author < books[j].Author
		case "price":
			return books[i].Price < books[j].Price
		default:
			if books[i].CreatedAt.Equal(books[j].CreatedAt) {
				return books[i].ID < books[j].ID
			}
			return books[i].CreatedAt.Before(books[j].CreatedAt)
		}
	}
	sort.SliceStable(books, func(i, j int) bool {
		if desc {
			return less(j, i)
		}
		return less(i, j)
	})
}
