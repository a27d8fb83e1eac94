package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/hindibooks/storefront/internal/api/metrics"
	"github.com/hindibooks/storefront/internal/core/domain"
	"github.com/hindibooks/storefront/internal/core/ports"
	"github.com/hindibooks/storefront/internal/core/query"
)

// DefaultCartStale is how long a fetched cart is served without refetching.
const DefaultCartStale = 30 * time.Second

var cartKey = query.NewKey(familyCart, "items", nil)

// CartService reads the cart through the query cache and issues cart
// commands. A command never updates cached data itself: on success it
// invalidates the cart family so the next read refetches backend totals.
type CartService struct {
	api        ports.CartAPI
	cache      *query.Cache
	staleAfter time.Duration
	logger     zerolog.Logger
}

func NewCartService(api ports.CartAPI, cache *query.Cache, staleAfter time.Duration, logger zerolog.Logger) *CartService {
	return &CartService{
		api:        api,
		cache:      cache,
		staleAfter: staleAfter,
		logger:     logger.With().Str("component", "cart").Logger(),
	}
}

func (s *CartService) Cart(ctx context.Context) (*domain.CartSummary, error) {
	return query.Fetch[*domain.CartSummary](ctx, s.cache, cartKey, s.staleAfter, s.api.Cart)
}

// Add puts quantity copies of book in the cart. Requests the backend would
// reject for stock reasons are refused locally. When a cart is cached, the
// quantity already in it counts against the stock.
func (s *CartService) Add(ctx context.Context, book domain.Book, quantity int) error {
	if err := s.checkAdd(book, quantity); err != nil {
		metrics.CartCommandsTotal.WithLabelValues("add", "rejected").Inc()
		return err
	}
	return s.run(ctx, "add", func(ctx context.Context) (*domain.MessageResponse, error) {
		return s.api.AddToCart(ctx, book.ID, quantity)
	})
}

func (s *CartService) checkAdd(book domain.Book, quantity int) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	if !book.IsAvailable {
		return domain.ErrBookUnavailable
	}
	inCart := 0
	if e, ok := s.cache.Get(cartKey); ok {
		if summary, typed := e.Value.(*domain.CartSummary); typed {
			if item, found := summary.FindByBook(book.ID); found {
				inCart = item.Quantity
			}
		}
	}
	if inCart+quantity > book.StockQuantity {
		return fmt.Errorf("%w: only %d available", domain.ErrOutOfStock, book.StockQuantity)
	}
	return nil
}

// UpdateQuantity sets an item's quantity. The value is sent as given; a
// quantity below one is the caller's concern.
func (s *CartService) UpdateQuantity(ctx context.Context, itemID, quantity int) error {
	return s.run(ctx, "update", func(ctx context.Context) (*domain.MessageResponse, error) {
		return s.api.UpdateCartItem(ctx, itemID, quantity)
	})
}

func (s *CartService) Remove(ctx context.Context, itemID int) error {
	return s.run(ctx, "remove", func(ctx context.Context) (*domain.MessageResponse, error) {
		return s.api.RemoveFromCart(ctx, itemID)
	})
}

func (s *CartService) Clear(ctx context.Context) error {
	return s.run(ctx, "clear", s.api.ClearCart)
}

// InvalidateCart drops every cached cart entry and reports how many were
// removed.
func (s *CartService) InvalidateCart() int {
	n := s.cache.InvalidateFamily(familyCart)
	s.logger.Debug().Int("entries", n).Msg("cart invalidated")
	return n
}

// WatchSession invalidates the cart whenever the bound user changes, so a
// cart fetched for one identity is never served to another.
func (s *CartService) WatchSession(sessions ports.SessionReader) (unsubscribe func()) {
	var last atomic.Int64
	last.Store(int64(sessions.Snapshot().UserID()))
	return sessions.Subscribe(func(sess domain.Session) {
		id := int64(sess.UserID())
		if last.Swap(id) != id {
			s.InvalidateCart()
		}
	})
}

func (s *CartService) run(ctx context.Context, command string, call func(context.Context) (*domain.MessageResponse, error)) error {
	resp, err := call(ctx)
	if err != nil {
		metrics.CartCommandsTotal.WithLabelValues(command, "error").Inc()
		s.logger.Warn().Err(err).Str("command", command).Msg("cart command failed")
		return err
	}
	metrics.CartCommandsTotal.WithLabelValues(command, "ok").Inc()
	ev := s.logger.Info().Str("command", command)
	if resp != nil {
		ev = ev.Str("message", resp.Message)
	}
	ev.Msg("cart command succeeded")
	s.InvalidateCart()
	return nil
}
