package domain

import "time"

type Product struct {
	ID          int64     `json:"productId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	BasePrice   int64     `json:"basePrice"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProductVariant is the color-level grouping of a product. It carries the
// discount and the optional sale window during which the discount applies.
type ProductVariant struct {
	ID            int64      `json:"variantId"`
	ProductID     int64      `json:"productId"`
	ColorName     string     `json:"colorName"`
	ColorHex      string     `json:"colorHex,omitempty"`
	ImageURL      string     `json:"representativeImageUrl,omitempty"`
	DiscountRate  int        `json:"discountRate"`
	SaleStartDate *time.Time `json:"saleStartDate,omitempty"`
	SaleEndDate   *time.Time `json:"saleEndDate,omitempty"`
	SoldCount     int64      `json:"soldCount"`
}

// ProductOption is the size-level leaf under a variant and the unit that holds stock.
type ProductOption struct {
	ID            int64  `json:"optionId"`
	VariantID     int64  `json:"variantId"`
	Size          string `json:"size"`
	StockQuantity int    `json:"stockQuantity"`
}
