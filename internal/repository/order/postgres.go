package order

import (
	"context"
	"fmt"
	"io"
	"log"

	"storefront/internal/db"
	"storefront/internal/domain"
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

func (r *postgresRepo) Create(ctx context.Context, q db.Querier, o domain.Order) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, `
INSERT INTO orders (user_id, total_amount, shipping_address, payment_method, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING order_id
`, o.UserID, o.TotalAmount, o.ShippingAddress, o.PaymentMethod, string(o.Status)).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *postgresRepo) AddItem(ctx context.Context, q db.Querier, orderID int64, line domain.OrderLine) error {
	_, err := q.Exec(ctx, `
INSERT INTO order_items (order_id, option_id, quantity, price)
VALUES ($1, $2, $3, $4)
`, orderID, line.OptionID, line.Quantity, line.UnitPrice)
	return err
}

// SetStatus moves an order between statuses. It fails when the order is not in from.
func (r *postgresRepo) SetStatus(ctx context.Context, q db.Querier, orderID int64, from, to domain.OrderStatus) error {
	cmd, err := q.Exec(ctx, `UPDATE orders SET status = $1 WHERE order_id = $2 AND status = $3`, string(to), orderID, string(from))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("order %d not in status %s: %w", orderID, from, domain.ErrNotFound)
	}
	return nil
}

// MarkItemReviewed returns ErrNotFound unless the item belongs to a paid order
// of userID and was bought as a variant of productID.
func (r *postgresRepo) MarkItemReviewed(ctx context.Context, q db.Querier, userID, orderItemID, productID int64) error {
	cmd, err := q.Exec(ctx, `
UPDATE order_items oi
SET is_review_written = TRUE
FROM orders o, product_options po, product_variants pv
WHERE oi.order_item_id = $1
  AND o.order_id = oi.order_id
  AND o.user_id = $2
  AND o.status = 'paid'
  AND po.option_id = oi.option_id
  AND pv.variant_id = po.variant_id
  AND pv.product_id = $3
`, orderItemID, userID, productID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("order item %d for user %d and product %d: %w", orderItemID, userID, productID, domain.ErrNotFound)
	}
	return nil
}

func (r *postgresRepo) ListHistory(ctx context.Context, userID int64) ([]HistoryRow, error) {
	const q = `
SELECT o.order_id, o.total_amount, o.shipping_address, o.payment_method, o.status, o.created_at,
       oi.order_item_id, p.product_id, p.name, oi.option_id, oi.quantity, oi.price,
       pv.color_name, COALESCE(pv.representative_image_url, ''), po.size, oi.is_review_written
FROM orders o
JOIN order_items oi ON oi.order_id = o.order_id
JOIN product_options po ON oi.option_id = po.option_id
JOIN product_variants pv ON po.variant_id = pv.variant_id
JOIN products p ON pv.product_id = p.product_id
WHERE o.user_id = $1
ORDER BY o.created_at DESC, o.order_id DESC, oi.order_item_id ASC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		r.logger.Printf("order repo: history user_id=%d error=%v", userID, err)
		return nil, err
	}
	defer rows.Close()

	var result []HistoryRow
	for rows.Next() {
		var h HistoryRow
		var status string
		if err := rows.Scan(
			&h.OrderID,
			&h.TotalAmount,
			&h.ShippingAddress,
			&h.PaymentMethod,
			&status,
			&h.CreatedAt,
			&h.Item.ID,
			&h.Item.ProductID,
			&h.Item.ProductName,
			&h.Item.OptionID,
			&h.Item.Quantity,
			&h.Item.Price,
			&h.Item.ColorName,
			&h.Item.ColorImage,
			&h.Item.Size,
			&h.Item.IsReviewWritten,
		); err != nil {
			return nil, err
		}
		h.Status = domain.OrderStatus(status)
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("order repo: history rows user_id=%d error=%v", userID, err)
		return nil, err
	}
	r.logger.Printf("order repo: history user_id=%d rows=%d", userID, len(result))
	return result, nil
}
