package domain

import "time"

// Review is a rating a user left on a product. OrderItemID links it to the
// purchase it reviews, when there is one.
type Review struct {
	ID          int64     `json:"reviewId"`
	UserID      int64     `json:"userId"`
	UserName    string    `json:"userName,omitempty"`
	ProductID   int64     `json:"productId"`
	OrderItemID *int64    `json:"orderItemId,omitempty"`
	Rating      int       `json:"rating"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}
