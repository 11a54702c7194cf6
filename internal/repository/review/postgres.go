package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"storefront/internal/db"
	"storefront/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

type postgresRepo struct {
	pool   db.Querier
	logger *log.Logger
}

func NewPostgres(pool db.Querier, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

// Create returns ErrAlreadyExists when the order item, or the user and product
// pair for reviews without one, already has a review. It returns ErrNotFound
// when the product or order item does not exist.
func (r *postgresRepo) Create(ctx context.Context, q db.Querier, rv domain.Review) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, `
INSERT INTO reviews (user_id, product_id, order_item_id, rating, title, content)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING review_id
`, rv.UserID, rv.ProductID, rv.OrderItemID, rv.Rating, rv.Title, rv.Content).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return 0, domain.ErrAlreadyExists
			case "23503":
				return 0, fmt.Errorf("review of product %d: %w", rv.ProductID, domain.ErrNotFound)
			}
		}
		return 0, err
	}
	return id, nil
}

// ListByProduct returns reviews newest first.
func (r *postgresRepo) ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	const q = `
SELECT r.review_id, r.user_id, u.name, r.product_id, r.order_item_id, r.rating, r.title, r.content, r.created_at
FROM reviews r
JOIN users u ON u.user_id = r.user_id
WHERE r.product_id = $1
ORDER BY r.created_at DESC, r.review_id DESC
`
	rows, err := r.pool.Query(ctx, q, productID)
	if err != nil {
		r.logger.Printf("review repo: list product_id=%d error=%v", productID, err)
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.UserName, &rv.ProductID, &rv.OrderItemID, &rv.Rating, &rv.Title, &rv.Content, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
