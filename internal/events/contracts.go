package events

import "time"

const TopicOrderPaid = "order.paid"

// OrderPaid is emitted once per committed checkout.
type OrderPaid struct {
	EventType   string          `json:"eventType"`
	OrderID     int64           `json:"orderId"`
	UserID      int64           `json:"userId"`
	TotalAmount int64           `json:"totalAmount"`
	Items       []OrderPaidItem `json:"items"`
	PaidAt      time.Time       `json:"paidAt"`
}

type OrderPaidItem struct {
	OptionID  int64 `json:"optionId"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unitPrice"`
}
