package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.History(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.internalError(c, "failed to load orders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "orders loaded", "orders": orders})
}
