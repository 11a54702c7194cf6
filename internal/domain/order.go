package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
)

type Order struct {
	ID              int64       `json:"orderId"`
	UserID          int64       `json:"-"`
	TotalAmount     int64       `json:"totalAmount"`
	ShippingAddress string      `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
	Status          OrderStatus `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	Items           []OrderItem `json:"items"`
}

// OrderLine is what checkout persists per cart line. UnitPrice is frozen at checkout.
type OrderLine struct {
	OptionID  int64
	VariantID int64
	Quantity  int
	UnitPrice int64
}

// OrderItem is an order line as shown in the order history.
type OrderItem struct {
	ID              int64  `json:"orderItemId"`
	ProductID       int64  `json:"productId"`
	ProductName     string `json:"productName"`
	OptionID        int64  `json:"optionId"`
	Quantity        int    `json:"quantity"`
	Price           int64  `json:"price"`
	ColorName       string `json:"colorName"`
	ColorImage      string `json:"colorImg,omitempty"`
	Size            string `json:"size"`
	IsReviewWritten bool   `json:"isReviewWritten"`
}
