package cart

import (
	"context"

	"storefront/internal/db"
	"storefront/internal/domain"
)

type Repository interface {
	ListItems(ctx context.Context, userID int64) ([]domain.CartItem, error)
	AddLine(ctx context.Context, userID, optionID int64, quantity int) (line domain.CartLine, created bool, err error)
	UpdateQuantity(ctx context.Context, userID, cartID int64, quantity int) error
	Remove(ctx context.Context, userID, cartID int64) error

	// LoadSnapshot and DeleteLines run on the caller's transaction.
	LoadSnapshot(ctx context.Context, q db.Querier, userID int64, lineIDs []int64) ([]domain.CartItem, error)
	DeleteLines(ctx context.Context, q db.Querier, userID int64, lineIDs []int64) (int64, error)
}
