package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hindibooks/storefront/internal/core/ports"
)

// CartHandler serves the authenticated cart. Every route sits behind
// RequireSession.
type CartHandler struct {
	cart    ports.CartService
	catalog ports.CatalogService
}

func NewCartHandler(cart ports.CartService, catalog ports.CatalogService) *CartHandler {
	return &CartHandler{cart: cart, catalog: catalog}
}

// Get handles GET /cart.
//
// @Summary      Cart summary
// @Tags         cart
// @Produce      json
// @Success      200  {object}  domain.CartSummary
// @Failure      401  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /cart [get]
func (h *CartHandler) Get(c echo.Context) error {
	if _, err := ctxUser(c); err != nil {
		return err
	}

	summary, err := h.cart.Cart(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// Add handles POST /cart. The book is read through the catalog cache so the
// stock guard sees the same data the UI shows.
//
// @Summary      Add a book to the cart
// @Tags         cart
// @Accept       json
// @Param        body  body  addToCartRequest  true  "Book and quantity (default 1)"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /cart [post]
func (h *CartHandler) Add(c echo.Context) error {
	if _, err := ctxUser(c); err != nil {
		return err
	}

	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	ctx := c.Request().Context()
	book, err := h.catalog.Book(ctx, req.BookID)
	if err != nil {
		return err
	}
	if err := h.cart.Add(ctx, *book, quantity); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Update handles PUT /cart/:id. A quantity below one removes the item.
//
// @Summary      Set a cart item's quantity
// @Tags         cart
// @Accept       json
// @Param        id    path  int                    true  "Cart item id"
// @Param        body  body  updateCartItemRequest  true  "New quantity"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /cart/{id} [put]
func (h *CartHandler) Update(c echo.Context) error {
	if _, err := ctxUser(c); err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid cart item id"})
	}
	var req updateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	ctx := c.Request().Context()
	if *req.Quantity < 1 {
		err = h.cart.Remove(ctx, id)
	} else {
		err = h.cart.UpdateQuantity(ctx, id, *req.Quantity)
	}
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Remove handles DELETE /cart/:id.
//
// @Summary      Remove a cart item
// @Tags         cart
// @Param        id   path  int  true  "Cart item id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /cart/{id} [delete]
func (h *CartHandler) Remove(c echo.Context) error {
	if _, err := ctxUser(c); err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid cart item id"})
	}
	if err := h.cart.Remove(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Clear handles DELETE /cart.
//
// @Summary      Empty the cart
// @Tags         cart
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /cart [delete]
func (h *CartHandler) Clear(c echo.Context) error {
	if _, err := ctxUser(c); err != nil {
		return err
	}

	if err := h.cart.Clear(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
