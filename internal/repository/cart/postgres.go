package cart

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront/internal/db"
	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
)

const itemColumns = `
SELECT c.cart_id, c.option_id, pv.variant_id, p.product_id, c.quantity, p.base_price,
       pv.discount_rate, pv.sale_start_date, pv.sale_end_date, po.stock_quantity,
       p.name, pv.color_name, po.size, COALESCE(pv.representative_image_url, ''), c.created_at
FROM cart c
JOIN product_options po ON c.option_id = po.option_id
JOIN product_variants pv ON po.variant_id = pv.variant_id
JOIN products p ON pv.product_id = p.product_id
WHERE c.user_id = $1`

type postgresRepo struct {
	pool   db.Pool
	logger *log.Logger
}

func NewPostgres(pool db.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) ListItems(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	items, err := queryItems(ctx, r.pool, itemColumns+"\nORDER BY c.created_at DESC, c.cart_id DESC", userID)
	if err != nil {
		r.logger.Printf("cart repo: list user_id=%d error=%v", userID, err)
		return nil, err
	}
	return items, nil
}

// LoadSnapshot reads the user's cart lines for checkout, restricted to lineIDs
// when non-empty. Cart and option rows are locked until the transaction ends,
// in option order so that concurrent checkouts acquire locks in the same order.
func (r *postgresRepo) LoadSnapshot(ctx context.Context, q db.Querier, userID int64, lineIDs []int64) ([]domain.CartItem, error) {
	query := itemColumns
	args := []any{userID}
	if len(lineIDs) > 0 {
		query += "\n  AND c.cart_id = ANY($2)"
		args = append(args, lineIDs)
	}
	query += "\nORDER BY po.option_id\nFOR UPDATE OF c, po"

	items, err := queryItems(ctx, q, query, args...)
	if err != nil {
		return nil, err
	}
	r.logger.Printf("cart repo: snapshot user_id=%d requested=%d lines=%d", userID, len(lineIDs), len(items))
	return items, nil
}

func (r *postgresRepo) DeleteLines(ctx context.Context, q db.Querier, userID int64, lineIDs []int64) (int64, error) {
	if len(lineIDs) == 0 {
		return 0, nil
	}
	cmd, err := q.Exec(ctx, `DELETE FROM cart WHERE user_id = $1 AND cart_id = ANY($2)`, userID, lineIDs)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *postgresRepo) AddLine(ctx context.Context, userID, optionID int64, quantity int) (domain.CartLine, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.CartLine{}, false, err
	}
	defer tx.Rollback(ctx)

	var stock int
	err = tx.QueryRow(ctx, `SELECT stock_quantity FROM product_options WHERE option_id = $1`, optionID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CartLine{}, false, domain.ErrNotFound
		}
		return domain.CartLine{}, false, err
	}

	var line domain.CartLine
	err = tx.QueryRow(ctx, `
SELECT cart_id, user_id, option_id, quantity, created_at
FROM cart
WHERE user_id = $1 AND option_id = $2
FOR UPDATE
`, userID, optionID).Scan(&line.ID, &line.UserID, &line.OptionID, &line.Quantity, &line.CreatedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return domain.CartLine{}, false, err
	}

	created := errors.Is(err, pgx.ErrNoRows)
	newQty := quantity
	if !created {
		newQty = line.Quantity + quantity
	}
	if stock < newQty {
		return domain.CartLine{}, false, domain.ErrInsufficientStock
	}

	if created {
		err = tx.QueryRow(ctx, `
INSERT INTO cart (user_id, option_id, quantity)
VALUES ($1, $2, $3)
RETURNING cart_id, user_id, option_id, quantity, created_at
`, userID, optionID, newQty).Scan(&line.ID, &line.UserID, &line.OptionID, &line.Quantity, &line.CreatedAt)
	} else {
		_, err = tx.Exec(ctx, `UPDATE cart SET quantity = $1 WHERE cart_id = $2`, newQty, line.ID)
		line.Quantity = newQty
	}
	if err != nil {
		return domain.CartLine{}, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.CartLine{}, false, err
	}
	return line, created, nil
}

func (r *postgresRepo) UpdateQuantity(ctx context.Context, userID, cartID int64, quantity int) error {
	var stock int
	err := r.pool.QueryRow(ctx, `
SELECT po.stock_quantity
FROM cart c
JOIN product_options po ON c.option_id = po.option_id
WHERE c.cart_id = $1 AND c.user_id = $2
`, cartID, userID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if stock < quantity {
		return domain.ErrInsufficientStock
	}

	cmd, err := r.pool.Exec(ctx, `UPDATE cart SET quantity = $1 WHERE cart_id = $2 AND user_id = $3`, quantity, cartID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Remove(ctx context.Context, userID, cartID int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart WHERE cart_id = $1 AND user_id = $2`, cartID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func queryItems(ctx context.Context, q db.Querier, query string, args ...any) ([]domain.CartItem, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(
			&it.CartID,
			&it.OptionID,
			&it.VariantID,
			&it.ProductID,
			&it.Quantity,
			&it.BasePrice,
			&it.DiscountRate,
			&it.SaleStartDate,
			&it.SaleEndDate,
			&it.StockQuantity,
			&it.ProductName,
			&it.ColorName,
			&it.Size,
			&it.ImageURL,
			&it.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
