package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type addToCartRequest struct {
	OptionID int64 `json:"optionId"`
	Quantity int   `json:"quantity"`
}

type updateCartRequest struct {
	CartID   int64 `json:"cartId"`
	Quantity int   `json:"quantity"`
}

func (h *handlers) viewCart(c *gin.Context) {
	user := currentUser(c)
	view, err := h.deps.CartSvc.View(c.Request.Context(), user.ID)
	if err != nil {
		h.internalError(c, "failed to load cart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "cart loaded",
		"cartItems":  view.Items,
		"totalItems": view.TotalItems,
		"totalPrice": view.TotalPrice,
	})
}

func (h *handlers) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	line, created, err := h.deps.CartSvc.Add(c.Request.Context(), currentUser(c).ID, req.OptionID, req.Quantity)
	if err != nil {
		h.cartError(c, err, "option not found", "failed to add to cart")
		return
	}

	status, message := http.StatusOK, "cart quantity updated"
	if created {
		status, message = http.StatusCreated, "added to cart"
	}
	c.JSON(status, gin.H{"message": message, "cartId": line.ID, "quantity": line.Quantity})
}

func (h *handlers) updateCart(c *gin.Context) {
	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	if err := h.deps.CartSvc.Update(c.Request.Context(), currentUser(c).ID, req.CartID, req.Quantity); err != nil {
		h.cartError(c, err, "cart item not found", "failed to update cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart quantity updated", "cartId": req.CartID, "quantity": req.Quantity})
}

func (h *handlers) removeFromCart(c *gin.Context) {
	cartID, ok := pathID(c, "cartId")
	if !ok {
		return
	}
	if err := h.deps.CartSvc.Remove(c.Request.Context(), currentUser(c).ID, cartID); err != nil {
		h.cartError(c, err, "cart item not found", "failed to remove from cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed from cart", "deletedCartId": cartID})
}

func (h *handlers) cartError(c *gin.Context, err error, notFound, failed string) {
	switch {
	case errors.Is(err, cartsvc.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "id and a quantity of at least 1 are required"})
	case errors.Is(err, domain.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient stock"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	default:
		h.internalError(c, failed, err)
	}
}
