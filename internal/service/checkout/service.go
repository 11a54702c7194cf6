// Package checkout turns a user's cart into a paid order in one database transaction.
package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/pricing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type cartStore interface {
	LoadSnapshot(ctx context.Context, q db.Querier, userID int64, lineIDs []int64) ([]domain.CartItem, error)
	DeleteLines(ctx context.Context, q db.Querier, userID int64, lineIDs []int64) (int64, error)
}

type orderStore interface {
	Create(ctx context.Context, q db.Querier, o domain.Order) (int64, error)
	AddItem(ctx context.Context, q db.Querier, orderID int64, line domain.OrderLine) error
	SetStatus(ctx context.Context, q db.Querier, orderID int64, from, to domain.OrderStatus) error
}

type stockStore interface {
	DecrementStock(ctx context.Context, q db.Querier, optionID int64, quantity int) error
	IncrementSold(ctx context.Context, q db.Querier, variantID int64, quantity int) error
}

// Request is a checkout of the user's cart, or of CartLineIDs only when set.
type Request struct {
	UserID          int64
	ShippingAddress string
	PaymentMethod   string
	CartLineIDs     []int64
}

type Receipt struct {
	OrderID     int64              `json:"orderId"`
	TotalAmount int64              `json:"totalAmount"`
	ItemCount   int                `json:"itemCount"`
	Status      domain.OrderStatus `json:"status"`
}

type Service struct {
	pool    db.TxBeginner
	cart    cartStore
	orders  orderStore
	stock   stockStore
	loc     *time.Location
	now     func() time.Time
	eventID func() string
	metrics *metrics.Metrics
	logger  *log.Logger
}

type Option func(*Service)

// WithClock replaces time.Now for sale window evaluation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone in which sale dates are calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(pool db.TxBeginner, cart cartStore, orders orderStore, stock stockStore, logger *log.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Service{
		pool:    pool,
		cart:    cart,
		orders:  orders,
		stock:   stock,
		loc:     time.UTC,
		now:     time.Now,
		eventID: uuid.NewString,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout reads and locks the cart, validates stock, prices every line and
// commits the order with its side effects. On any error the transaction is
// rolled back and nothing it wrote survives.
func (s *Service) Checkout(ctx context.Context, req Request) (receipt *Receipt, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveCheckout(Outcome(err), time.Since(started))
	}()

	req.ShippingAddress = strings.TrimSpace(req.ShippingAddress)
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if req.ShippingAddress == "" || req.PaymentMethod == "" {
		return nil, ErrInvalidRequest
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, persistence("begin", err)
	}
	closed := false
	defer func() {
		if closed {
			return
		}
		// The caller may be gone; the rollback must still reach the server.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Printf("checkout: rollback user_id=%d error=%v", req.UserID, rbErr)
		}
	}()

	lines, err := s.cart.LoadSnapshot(ctx, tx, req.UserID, req.CartLineIDs)
	if err != nil {
		return nil, persistence("load cart", err)
	}
	if err := ValidateStock(lines); err != nil {
		s.logger.Printf("checkout: rejected user_id=%d reason=%v", req.UserID, err)
		return nil, err
	}

	now := s.now()
	priced := make([]pricedLine, 0, len(lines))
	totals := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		window := pricing.NewSaleWindow(l.SaleStartDate, l.SaleEndDate, s.loc)
		unit := pricing.EffectivePrice(l.BasePrice, l.DiscountRate, window, now)
		priced = append(priced, pricedLine{item: l, unitPrice: unit})
		totals = append(totals, pricing.Line{UnitPrice: unit, Quantity: l.Quantity})
	}
	total := pricing.Total(totals)

	c := &committer{q: tx, orders: s.orders, stock: s.stock, cart: s.cart, eventID: s.eventID}
	orderID, err := c.run(ctx, req, priced, total, now)
	if err != nil {
		s.logger.Printf("checkout: aborted user_id=%d state=%s error=%v", req.UserID, c.state, err)
		return nil, err
	}

	// pgx closes the transaction whether or not Commit succeeds.
	closed = true
	if err := tx.Commit(ctx); err != nil {
		return nil, persistence("commit", err)
	}

	s.logger.Printf("checkout: settled user_id=%d order_id=%d total=%d items=%d", req.UserID, orderID, total, len(lines))
	return &Receipt{
		OrderID:     orderID,
		TotalAmount: total,
		ItemCount:   len(lines),
		Status:      domain.OrderStatusPaid,
	}, nil
}
