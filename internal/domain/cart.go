package domain

import "time"

// CartLine is one (option, quantity) pairing a user selected for checkout.
type CartLine struct {
	ID        int64     `json:"cartId"`
	UserID    int64     `json:"-"`
	OptionID  int64     `json:"optionId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

// CartItem is a cart line joined with the catalog rows needed to price and stock-check it.
type CartItem struct {
	CartID        int64      `json:"cartId"`
	OptionID      int64      `json:"optionId"`
	VariantID     int64      `json:"variantId"`
	ProductID     int64      `json:"productId"`
	Quantity      int        `json:"quantity"`
	BasePrice     int64      `json:"basePrice"`
	DiscountRate  int        `json:"discountRate"`
	SaleStartDate *time.Time `json:"saleStartDate,omitempty"`
	SaleEndDate   *time.Time `json:"saleEndDate,omitempty"`
	StockQuantity int        `json:"stockQuantity"`
	ProductName   string     `json:"productName"`
	ColorName     string     `json:"colorName"`
	Size          string     `json:"size"`
	ImageURL      string     `json:"image,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}
