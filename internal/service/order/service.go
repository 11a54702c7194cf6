package order

import (
	"context"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
)

type historyReader interface {
	ListHistory(ctx context.Context, userID int64) ([]orderrepo.HistoryRow, error)
}

type Service struct {
	repo historyReader
}

func New(repo orderrepo.Repository) *Service {
	return &Service{repo: repo}
}

// History returns the user's orders with their items, newest first.
func (s *Service) History(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := s.repo.ListHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	return group(rows), nil
}

// group folds item rows into orders. Orders keep the position of their first
// row and items keep row order, so the query's ordering survives grouping.
func group(rows []orderrepo.HistoryRow) []domain.Order {
	orders := make([]domain.Order, 0)
	index := make(map[int64]int)
	for _, r := range rows {
		i, ok := index[r.OrderID]
		if !ok {
			i = len(orders)
			index[r.OrderID] = i
			orders = append(orders, domain.Order{
				ID:              r.OrderID,
				TotalAmount:     r.TotalAmount,
				ShippingAddress: r.ShippingAddress,
				PaymentMethod:   r.PaymentMethod,
				Status:          r.Status,
				CreatedAt:       r.CreatedAt,
				Items:           []domain.OrderItem{},
			})
		}
		orders[i].Items = append(orders[i].Items, r.Item)
	}
	return orders
}
