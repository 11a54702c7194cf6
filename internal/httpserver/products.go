package httpserver

import (
	"net/http"
	"strconv"

	productsvc "storefront/internal/service/product"

	"github.com/gin-gonic/gin"
)

func (h *handlers) popularProducts(c *gin.Context) {
	limit := productsvc.DefaultPopularLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	items, err := h.deps.ProductSvc.Popular(c.Request.Context(), limit)
	if err != nil {
		h.internalError(c, "failed to load popular products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "popular products loaded", "products": items})
}
