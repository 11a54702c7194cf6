package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// internalError logs err and answers 500. The cause reaches the client only in development.
func (h *handlers) internalError(c *gin.Context, message string, err error) {
	h.logger.Printf("http: %s request_id=%s path=%s err=%v", message, requestID(c), c.Request.URL.Path, err)
	body := gin.H{"error": message}
	if h.deps.Development {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}
