package order

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
)

type stubHistory struct {
	rows []orderrepo.HistoryRow
	err  error
}

func (s stubHistory) ListHistory(_ context.Context, _ int64) ([]orderrepo.HistoryRow, error) {
	return s.rows, s.err
}

func row(orderID, itemID int64) orderrepo.HistoryRow {
	return orderrepo.HistoryRow{OrderID: orderID, Status: domain.OrderStatusPaid, Item: domain.OrderItem{ID: itemID}}
}

func TestHistory_GroupsPreservingOrder(t *testing.T) {
	// Order ids deliberately not sorted: newest order 7 comes before order 12.
	svc := &Service{repo: stubHistory{rows: []orderrepo.HistoryRow{
		row(7, 30), row(7, 31), row(12, 10), row(3, 5), row(3, 6), row(3, 8),
	}}}

	orders, err := svc.History(context.Background(), 1)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	wantOrders := []int64{7, 12, 3}
	wantItems := [][]int64{{30, 31}, {10}, {5, 6, 8}}
	if len(orders) != len(wantOrders) {
		t.Fatalf("expected %d orders, got %d", len(wantOrders), len(orders))
	}
	for i, o := range orders {
		if o.ID != wantOrders[i] {
			t.Fatalf("order %d: id %d, want %d", i, o.ID, wantOrders[i])
		}
		if len(o.Items) != len(wantItems[i]) {
			t.Fatalf("order %d: %d items, want %d", o.ID, len(o.Items), len(wantItems[i]))
		}
		for j, it := range o.Items {
			if it.ID != wantItems[i][j] {
				t.Fatalf("order %d item %d: id %d, want %d", o.ID, j, it.ID, wantItems[i][j])
			}
		}
	}
}

func TestHistory_Empty(t *testing.T) {
	svc := &Service{repo: stubHistory{}}
	orders, err := svc.History(context.Background(), 1)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if orders == nil || len(orders) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", orders)
	}
}

func TestHistory_Error(t *testing.T) {
	boom := errors.New("boom")
	svc := &Service{repo: stubHistory{err: boom}}
	if _, err := svc.History(context.Background(), 1); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
