package order

import (
	"context"
	"time"

	"storefront/internal/db"
	"storefront/internal/domain"
)

// HistoryRow is one order item joined with its order header, as returned by
// the history query. Rows of the same order are adjacent.
type HistoryRow struct {
	OrderID         int64
	TotalAmount     int64
	ShippingAddress string
	PaymentMethod   string
	Status          domain.OrderStatus
	CreatedAt       time.Time
	Item            domain.OrderItem
}

type Repository interface {
	// Create, AddItem and SetStatus run on the caller's transaction.
	Create(ctx context.Context, q db.Querier, o domain.Order) (int64, error)
	AddItem(ctx context.Context, q db.Querier, orderID int64, line domain.OrderLine) error
	SetStatus(ctx context.Context, q db.Querier, orderID int64, from, to domain.OrderStatus) error
	// MarkItemReviewed flags a paid order item of userID for productID as reviewed.
	MarkItemReviewed(ctx context.Context, q db.Querier, userID, orderItemID, productID int64) error

	ListHistory(ctx context.Context, userID int64) ([]HistoryRow, error)
}
