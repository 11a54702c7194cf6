// Package review records product reviews and summarizes them per product.
package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"storefront/internal/db"
	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ErrInvalidReview is returned for a missing product or a rating outside 1..5.
var ErrInvalidReview = errors.New("invalid review")

type reviewStore interface {
	Create(ctx context.Context, q db.Querier, r domain.Review) (int64, error)
	ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error)
}

type itemMarker interface {
	MarkItemReviewed(ctx context.Context, q db.Querier, userID, orderItemID, productID int64) error
}

// Summary is the review listing of one product.
type Summary struct {
	AvgRating   float64         `json:"avgRating"`
	ReviewCount int             `json:"reviewCount"`
	Reviews     []domain.Review `json:"reviews"`
}

type Service struct {
	pool    db.TxBeginner
	reviews reviewStore
	items   itemMarker
	logger  *log.Logger
}

func New(pool db.TxBeginner, reviews reviewStore, items itemMarker, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{pool: pool, reviews: reviews, items: items, logger: logger}
}

// Create stores r and, when it names an order item, flags that item as
// reviewed in the same transaction. It returns ErrAlreadyExists for a second
// review of the same item and ErrNotFound when the product or item is not the
// user's to review.
func (s *Service) Create(ctx context.Context, r domain.Review) (id int64, err error) {
	if r.ProductID <= 0 {
		return 0, fmt.Errorf("%w: productId is required", ErrInvalidReview)
	}
	if r.Rating < 1 || r.Rating > 5 {
		return 0, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidReview)
	}
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin review: %w", err)
	}
	closed := false
	defer func() {
		if closed {
			return
		}
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Printf("review: rollback user_id=%d error=%v", r.UserID, rbErr)
		}
	}()

	id, err = s.reviews.Create(ctx, tx, r)
	if err != nil {
		return 0, err
	}
	if r.OrderItemID != nil {
		if err := s.items.MarkItemReviewed(ctx, tx, r.UserID, *r.OrderItemID, r.ProductID); err != nil {
			return 0, err
		}
	}

	closed = true
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit review: %w", err)
	}
	s.logger.Printf("review: created review_id=%d user_id=%d product_id=%d rating=%d", id, r.UserID, r.ProductID, r.Rating)
	return id, nil
}

// List returns a product's reviews newest first with their average rating
// rounded to one decimal. A product without reviews averages zero.
func (s *Service) List(ctx context.Context, productID int64) (*Summary, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: productId is required", ErrInvalidReview)
	}
	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return &Summary{
		AvgRating:   averageRating(reviews),
		ReviewCount: len(reviews),
		Reviews:     reviews,
	}, nil
}

func averageRating(reviews []domain.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum int64
	for _, r := range reviews {
		sum += int64(r.Rating)
	}
	return decimal.NewFromInt(sum).
		Div(decimal.NewFromInt(int64(len(reviews)))).
		Round(1).
		InexactFloat64()
}
