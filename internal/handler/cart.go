package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/equipment-inventory/internal/repository"
)

// CartHandler serves the per-user shopping cart. Every route is
// client-role only; admins manage inventory, they do not shop.
type CartHandler struct {
	Cart *repository.CartRepo
}

func NewCartHandler(r *repository.CartRepo) *CartHandler {
	return &CartHandler{Cart: r}
}

type addToCartReq struct {
	ProductID uint64 `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateCartReq struct {
	Quantity int `json:"quantity"`
}

// Get returns the cart contents, the badge count when action=count,
// or whether one product is already in the cart when action=contains.
func (h *CartHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorised — please log in."})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if c.QueryParam("action") == "contains" {
		productID, ok := queryID(c, "product_id")
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id query parameter is required."})
		}
		in, err := h.Cart.IsInCart(ctx, uid, productID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"in_cart": in})
	}

	if c.QueryParam("action") == "count" {
		n, err := h.Cart.Count(ctx, uid)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"count": n})
	}

	items, err := h.Cart.Items(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// Post adds a product. Re-adding an existing product merges into the
// existing line instead of creating a duplicate row.
func (h *CartHandler) Post(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorised — please log in."})
	}

	var req addToCartReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Malformed JSON body."})
	}
	if req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id is required"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Quantity must be at least 1"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Cart.AddToCart(ctx, uid, req.ProductID, req.Quantity); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found."})
		case errors.Is(err, repository.ErrNotAvailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "Product is not available."})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
		}
	}

	n, err := h.Cart.Count(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Product added to cart", "cart_count": n})
}

// Put changes the quantity on one cart line. Ownership is enforced in
// SQL: the UPDATE is scoped to the caller's user id.
func (h *CartHandler) Put(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorised — please log in."})
	}
	id, ok := queryID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cart item ID is required"})
	}

	var req updateCartReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Malformed JSON body."})
	}
	if req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Quantity must be at least 1"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	ok, err = h.Cart.UpdateQuantity(ctx, id, uid, req.Quantity)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Cart item not found."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Cart updated"})
}

// Delete removes one line (?id=N) or the whole cart (?action=clear).
func (h *CartHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorised — please log in."})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if c.QueryParam("action") == "clear" {
		if err := h.Cart.Clear(ctx, uid); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Cart cleared"})
	}

	id, ok := queryID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cart item ID is required"})
	}
	ok, err = h.Cart.RemoveFromCart(ctx, id, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Cart item not found."})
	}

	n, err := h.Cart.Count(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Item removed from cart", "cart_count": n})
}
