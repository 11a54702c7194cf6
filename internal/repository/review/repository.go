package review

import (
	"context"

	"storefront/internal/db"
	"storefront/internal/domain"
)

type Repository interface {
	// Create runs on the caller's transaction so the order item can be
	// flagged alongside the insert.
	Create(ctx context.Context, q db.Querier, r domain.Review) (int64, error)
	ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error)
}
