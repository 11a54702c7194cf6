// Package pricing evaluates the sale-aware unit price of a variant.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SaleWindow is an inclusive range of calendar days. Start and End hold
// midnight of the first and last day in the store's location.
type SaleWindow struct {
	Start time.Time
	End   time.Time
}

// NewSaleWindow returns nil unless both dates are set. Only the calendar day of
// each date is kept; it is re-anchored in loc (UTC when nil).
func NewSaleWindow(start, end *time.Time, loc *time.Location) *SaleWindow {
	if start == nil || end == nil {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SaleWindow{Start: midnight(*start, loc), End: midnight(*end, loc)}
}

// Contains reports whether now falls on any day from Start through End.
func (w SaleWindow) Contains(now time.Time) bool {
	if now.Before(w.Start) {
		return false
	}
	return now.Before(w.End.AddDate(0, 0, 1))
}

// DiscountFor is the discount percentage honored at now: the variant's rate
// while its sale window is open, zero otherwise or when there is no window.
func DiscountFor(rate int, window *SaleWindow, now time.Time) int {
	if window == nil || !window.Contains(now) {
		return 0
	}
	switch {
	case rate < 0:
		return 0
	case rate > 100:
		return 100
	}
	return rate
}

// EffectivePrice is floor(base * (1 - discount/100)) with the discount from DiscountFor.
func EffectivePrice(base int64, rate int, window *SaleWindow, now time.Time) int64 {
	discount := DiscountFor(rate, window, now)
	if discount == 0 {
		return base
	}
	factor := decimal.NewFromInt(int64(100 - discount)).Div(hundred)
	return decimal.NewFromInt(base).Mul(factor).Floor().IntPart()
}

// Line is a priced quantity.
type Line struct {
	UnitPrice int64
	Quantity  int
}

func (l Line) Total() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Total sums the line totals. Order totals must come from here so that the
// header amount always equals the sum of its lines.
func Total(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.Total()
	}
	return sum
}

func midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
