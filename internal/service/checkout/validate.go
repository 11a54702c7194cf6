package checkout

import "storefront/internal/domain"

// ValidateStock fails with ErrEmptyCart when there are no lines, otherwise with
// a *StockShortfallError for the first line whose stock is below its quantity.
func ValidateStock(lines []domain.CartItem) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	for _, l := range lines {
		if l.StockQuantity < l.Quantity {
			return shortfallFor(l)
		}
	}
	return nil
}

func shortfallFor(l domain.CartItem) *StockShortfallError {
	return &StockShortfallError{
		CartID:      l.CartID,
		OptionID:    l.OptionID,
		ProductName: l.ProductName,
		ColorName:   l.ColorName,
		Size:        l.Size,
		Requested:   l.Quantity,
		Available:   l.StockQuantity,
	}
}
