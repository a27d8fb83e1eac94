package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/hindibooks/storefront/internal/core/domain"
)

var (
	epCart       = endpoint{http.MethodGet, "/cart"}
	epAddCart    = endpoint{http.MethodPost, "/cart"}
	epUpdateCart = endpoint{http.MethodPut, "/cart/{id}"}
	epRemoveCart = endpoint{http.MethodDelete, "/cart/{id}"}
	epClearCart  = endpoint{http.MethodDelete, "/cart"}
)

type addToCartRequest struct {
	BookID   int `json:"book_id"`
	Quantity int `json:"quantity"`
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

// Cart fetches the current user's cart.
func (c *Client) Cart(ctx context.Context) (*domain.CartSummary, error) {
	var summary domain.CartSummary
	if err := c.request(ctx, epCart, "/cart", nil, true, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// AddToCart adds quantity copies of a book.
func (c *Client) AddToCart(ctx context.Context, bookID, quantity int) (*domain.MessageResponse, error) {
	return c.cartCommand(ctx, epAddCart, "/cart", addToCartRequest{BookID: bookID, Quantity: quantity})
}

// UpdateCartItem sets a line's quantity. The value is sent as given,
// including zero.
func (c *Client) UpdateCartItem(ctx context.Context, itemID, quantity int) (*domain.MessageResponse, error) {
	return c.cartCommand(ctx, epUpdateCart, "/cart/"+strconv.Itoa(itemID), updateCartRequest{Quantity: quantity})
}

// RemoveFromCart deletes a line.
func (c *Client) RemoveFromCart(ctx context.Context, itemID int) (*domain.MessageResponse, error) {
	return c.cartCommand(ctx, epRemoveCart, "/cart/"+strconv.Itoa(itemID), nil)
}

// ClearCart empties the cart.
func (c *Client) ClearCart(ctx context.Context) (*domain.MessageResponse, error) {
	return c.cartCommand(ctx, epClearCart, "/cart", nil)
}

func (c *Client) cartCommand(ctx context.Context, ep endpoint, path string, body any) (*domain.MessageResponse, error) {
	var msg domain.MessageResponse
	if err := c.request(ctx, ep, path, body, true, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
