package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/outbox"
)

type state int

const (
	stateBegun state = iota
	stateCreated
	stateLined
	stateCleared
	stateSettled
)

func (s state) String() string {
	switch s {
	case stateCreated:
		return "created"
	case stateLined:
		return "lined"
	case stateCleared:
		return "cleared"
	case stateSettled:
		return "settled"
	default:
		return "begun"
	}
}

type pricedLine struct {
	item      domain.CartItem
	unitPrice int64
}

// committer persists one checkout on q. It records the last state reached so a
// failed attempt can be reported; the caller owns commit and rollback.
type committer struct {
	q       db.Querier
	orders  orderStore
	stock   stockStore
	cart    cartStore
	eventID func() string
	state   state
}

func (c *committer) run(ctx context.Context, req Request, lines []pricedLine, total int64, paidAt time.Time) (int64, error) {
	orderID, err := c.orders.Create(ctx, c.q, domain.Order{
		UserID:          req.UserID,
		TotalAmount:     total,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Status:          domain.OrderStatusPending,
	})
	if err != nil {
		return 0, persistence("create order", err)
	}
	c.state = stateCreated

	cartIDs := make([]int64, 0, len(lines))
	items := make([]events.OrderPaidItem, 0, len(lines))
	for _, l := range lines {
		err := c.orders.AddItem(ctx, c.q, orderID, domain.OrderLine{
			OptionID:  l.item.OptionID,
			VariantID: l.item.VariantID,
			Quantity:  l.item.Quantity,
			UnitPrice: l.unitPrice,
		})
		if err != nil {
			return 0, persistence("add order item", err)
		}
		if err := c.stock.DecrementStock(ctx, c.q, l.item.OptionID, l.item.Quantity); err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				return 0, shortfallFor(l.item)
			}
			return 0, persistence("decrement stock", err)
		}
		if err := c.stock.IncrementSold(ctx, c.q, l.item.VariantID, l.item.Quantity); err != nil {
			return 0, persistence("increment sold count", err)
		}
		cartIDs = append(cartIDs, l.item.CartID)
		items = append(items, events.OrderPaidItem{OptionID: l.item.OptionID, Quantity: l.item.Quantity, UnitPrice: l.unitPrice})
	}
	c.state = stateLined

	deleted, err := c.cart.DeleteLines(ctx, c.q, req.UserID, cartIDs)
	if err != nil {
		return 0, persistence("clear cart", err)
	}
	if deleted != int64(len(cartIDs)) {
		return 0, persistence("clear cart", fmt.Errorf("deleted %d of %d cart lines", deleted, len(cartIDs)))
	}
	c.state = stateCleared

	if err := c.orders.SetStatus(ctx, c.q, orderID, domain.OrderStatusPending, domain.OrderStatusPaid); err != nil {
		return 0, persistence("settle order", err)
	}
	err = outbox.Insert(ctx, c.q, c.eventID(), events.TopicOrderPaid, strconv.FormatInt(orderID, 10), events.OrderPaid{
		EventType:   events.TopicOrderPaid,
		OrderID:     orderID,
		UserID:      req.UserID,
		TotalAmount: total,
		Items:       items,
		PaidAt:      paidAt.UTC(),
	})
	if err != nil {
		return 0, persistence("queue order event", err)
	}
	c.state = stateSettled
	return orderID, nil
}
