package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/domain"
	reviewsvc "storefront/internal/service/review"

	"github.com/gin-gonic/gin"
)

type createReviewRequest struct {
	ProductID   int64  `json:"productId"`
	OrderItemID *int64 `json:"orderItemId"`
	Rating      int    `json:"rating"`
	Title       string `json:"title"`
	Content     string `json:"content"`
}

func (h *handlers) createReview(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	user := currentUser(c)
	id, err := h.deps.ReviewSvc.Create(c.Request.Context(), domain.Review{
		UserID:      user.ID,
		ProductID:   req.ProductID,
		OrderItemID: req.OrderItemID,
		Rating:      req.Rating,
		Title:       req.Title,
		Content:     req.Content,
	})
	switch {
	case errors.Is(err, reviewsvc.ErrInvalidReview):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "this purchase has already been reviewed"})
		return
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product or order item not found"})
		return
	case err != nil:
		h.internalError(c, "failed to save review", err)
		return
	}

	h.logger.Printf("http: review created request_id=%s review_id=%d user_id=%d", requestID(c), id, user.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "review saved", "reviewId": id})
}

func (h *handlers) listReviews(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Query("productId"), 10, 64)
	if err != nil || productID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId must be a positive integer"})
		return
	}

	summary, err := h.deps.ReviewSvc.List(c.Request.Context(), productID)
	if err != nil {
		h.internalError(c, "failed to load reviews", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "reviews loaded",
		"avgRating":   summary.AvgRating,
		"reviewCount": summary.ReviewCount,
		"reviews":     summary.Reviews,
	})
}
