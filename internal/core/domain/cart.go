package domain

import "time"

// CartItem is one line of the server-side cart.
type CartItem struct {
	ID        int       `json:"id"`
	Book      Book      `json:"book"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// CartSummary is the response of GET /cart. Totals are computed by the
// backend and are never adjusted locally after a mutation.
type CartSummary struct {
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice float64    `json:"total_price"`
}

// FindByBook returns the line holding bookID, if any.
func (s *CartSummary) FindByBook(bookID int) (CartItem, bool) {
	if s == nil {
		return CartItem{}, false
	}
	for _, item := range s.Items {
		if item.Book.ID == bookID {
			return item, true
		}
	}
	return CartItem{}, false
}

// MessageResponse is the acknowledgement returned by cart commands.
type MessageResponse struct {
	Message string `json:"message"`
}
