package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest means shippingAddress or paymentMethod is missing. No transaction is opened.
	ErrInvalidRequest = errors.New("shippingAddress and paymentMethod are required")
	// ErrEmptyCart means no cart line matched the request.
	ErrEmptyCart = errors.New("cart is empty")
)

// StockShortfallError names the first line whose option cannot cover its quantity.
type StockShortfallError struct {
	CartID      int64
	OptionID    int64
	ProductName string
	ColorName   string
	Size        string
	Requested   int
	Available   int
}

func (e *StockShortfallError) Error() string {
	return fmt.Sprintf("insufficient stock: %s (%s, %s)", e.ProductName, e.ColorName, e.Size)
}

// PersistenceError wraps a storage failure during checkout. Op names the step that failed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("checkout %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// Outcome labels err for metrics and logs.
func Outcome(err error) string {
	var shortfall *StockShortfallError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.As(err, &shortfall):
		return "stock_shortfall"
	default:
		return "persistence_error"
	}
}
