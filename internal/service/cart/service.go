package cart

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain"
	"storefront/internal/pricing"
	cartrepo "storefront/internal/repository/cart"
)

// ErrInvalidInput covers missing ids and non-positive quantities.
var ErrInvalidInput = errors.New("invalid cart input")

type cartRepo interface {
	ListItems(ctx context.Context, userID int64) ([]domain.CartItem, error)
	AddLine(ctx context.Context, userID, optionID int64, quantity int) (domain.CartLine, bool, error)
	UpdateQuantity(ctx context.Context, userID, cartID int64, quantity int) error
	Remove(ctx context.Context, userID, cartID int64) error
}

type Service struct {
	repo cartRepo
	loc  *time.Location
	now  func() time.Time
}

// New builds a Service. Sale windows are evaluated as calendar days in loc.
func New(repo cartrepo.Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc, now: time.Now}
}

// Item is a cart line with the price it would be charged at right now.
type Item struct {
	domain.CartItem
	UnitPrice int64 `json:"unitPrice"`
	LineTotal int64 `json:"lineTotal"`
}

type View struct {
	Items      []Item `json:"cartItems"`
	TotalItems int    `json:"totalItems"`
	TotalPrice int64  `json:"totalPrice"`
}

// View prices the user's cart with the same rules checkout applies.
func (s *Service) View(ctx context.Context, userID int64) (*View, error) {
	rows, err := s.repo.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	view := &View{Items: make([]Item, 0, len(rows)), TotalItems: len(rows)}
	for _, row := range rows {
		window := pricing.NewSaleWindow(row.SaleStartDate, row.SaleEndDate, s.loc)
		unit := pricing.EffectivePrice(row.BasePrice, row.DiscountRate, window, now)
		line := pricing.Line{UnitPrice: unit, Quantity: row.Quantity}
		view.Items = append(view.Items, Item{CartItem: row, UnitPrice: unit, LineTotal: line.Total()})
		view.TotalPrice += line.Total()
	}
	return view, nil
}

// Add puts an option in the cart, merging with an existing line for the same option.
// created reports whether a new line was inserted.
func (s *Service) Add(ctx context.Context, userID, optionID int64, quantity int) (domain.CartLine, bool, error) {
	if optionID <= 0 || quantity < 1 {
		return domain.CartLine{}, false, ErrInvalidInput
	}
	return s.repo.AddLine(ctx, userID, optionID, quantity)
}

func (s *Service) Update(ctx context.Context, userID, cartID int64, quantity int) error {
	if cartID <= 0 || quantity < 1 {
		return ErrInvalidInput
	}
	return s.repo.UpdateQuantity(ctx, userID, cartID, quantity)
}

func (s *Service) Remove(ctx context.Context, userID, cartID int64) error {
	if cartID <= 0 {
		return ErrInvalidInput
	}
	return s.repo.Remove(ctx, userID, cartID)
}
