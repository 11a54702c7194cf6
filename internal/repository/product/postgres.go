package product

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
)

const variantColumns = `variant_id, product_id, color_name, COALESCE(color_hex, ''), COALESCE(representative_image_url, ''),
       discount_rate, sale_start_date, sale_end_date, sold_count`

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

func (r *postgresRepo) GetVariant(ctx context.Context, variantID int64) (*domain.ProductVariant, error) {
	v, err := scanVariant(r.pool.QueryRow(ctx, `SELECT `+variantColumns+` FROM product_variants WHERE variant_id = $1`, variantID))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("product repo: get variant id=%d error=%v", variantID, err)
		}
		return nil, err
	}
	return v, nil
}

// PatchVariant writes only the columns set in patch. Column names come from a
// fixed list; values are always bound as parameters.
func (r *postgresRepo) PatchVariant(ctx context.Context, variantID int64, patch VariantPatch) (*domain.ProductVariant, error) {
	if patch.Empty() {
		return r.GetVariant(ctx, variantID)
	}

	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.ColorName != nil {
		add("color_name", *patch.ColorName)
	}
	if patch.ColorHex != nil {
		add("color_hex", *patch.ColorHex)
	}
	if patch.ImageURL != nil {
		add("representative_image_url", *patch.ImageURL)
	}
	if patch.DiscountRate != nil {
		add("discount_rate", *patch.DiscountRate)
	}
	if patch.ClearSale {
		sets = append(sets, "sale_start_date = NULL", "sale_end_date = NULL")
	} else {
		if patch.SaleStartDate != nil {
			add("sale_start_date", *patch.SaleStartDate)
		}
		if patch.SaleEndDate != nil {
			add("sale_end_date", *patch.SaleEndDate)
		}
	}

	args = append(args, variantID)
	q := fmt.Sprintf(`UPDATE product_variants SET %s WHERE variant_id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), variantColumns)

	v, err := scanVariant(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("product repo: patch variant id=%d error=%v", variantID, err)
		}
		return nil, err
	}
	r.logger.Printf("product repo: patched variant id=%d columns=%d", variantID, len(sets))
	return v, nil
}

// DecrementStock removes quantity from an option only if enough stock remains.
// A guarded update that touches no row means the option ran short.
// ListPopular returns up to limit variants, best sellers first. Ties go to the
// older variant.
func (r *postgresRepo) ListPopular(ctx context.Context, limit int) ([]PopularRow, error) {
	const q = `
SELECT pv.variant_id, pv.product_id, pv.color_name, COALESCE(pv.color_hex, ''), COALESCE(pv.representative_image_url, ''),
       pv.discount_rate, pv.sale_start_date, pv.sale_end_date, pv.sold_count,
       p.name, p.base_price,
       ARRAY(
           SELECT po.size FROM product_options po
           WHERE po.variant_id = pv.variant_id AND po.stock_quantity > 0
           ORDER BY po.option_id
       ) AS sizes
FROM product_variants pv
JOIN products p ON p.product_id = pv.product_id
ORDER BY pv.sold_count DESC, pv.variant_id ASC
LIMIT $1
`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		r.logger.Printf("product repo: popular limit=%d error=%v", limit, err)
		return nil, err
	}
	defer rows.Close()

	var out []PopularRow
	for rows.Next() {
		var row PopularRow
		v := &row.Variant
		if err := rows.Scan(
			&v.ID,
			&v.ProductID,
			&v.ColorName,
			&v.ColorHex,
			&v.ImageURL,
			&v.DiscountRate,
			&v.SaleStartDate,
			&v.SaleEndDate,
			&v.SoldCount,
			&row.ProductName,
			&row.BasePrice,
			&row.Sizes,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) DecrementStock(ctx context.Context, q db.Querier, optionID int64, quantity int) error {
	cmd, err := q.Exec(ctx, `
UPDATE product_options
SET stock_quantity = stock_quantity - $1
WHERE option_id = $2 AND stock_quantity >= $1
`, quantity, optionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

func (r *postgresRepo) IncrementSold(ctx context.Context, q db.Querier, variantID int64, quantity int) error {
	cmd, err := q.Exec(ctx, `UPDATE product_variants SET sold_count = sold_count + $1 WHERE variant_id = $2`, quantity, variantID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) UpsertProduct(ctx context.Context, q db.Querier, p domain.Product) (*domain.Product, error) {
	res := p
	err := q.QueryRow(ctx, `
INSERT INTO products (name, description, base_price)
VALUES ($1, NULLIF($2, ''), $3)
ON CONFLICT (name) DO UPDATE SET
    description = EXCLUDED.description,
    base_price = EXCLUDED.base_price
RETURNING product_id, created_at
`, p.Name, p.Description, p.BasePrice).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Printf("product repo: upsert product name=%s error=%v", p.Name, err)
		return nil, err
	}
	return &res, nil
}

func (r *postgresRepo) UpsertVariant(ctx context.Context, q db.Querier, v domain.ProductVariant) (*domain.ProductVariant, error) {
	res, err := scanVariant(q.QueryRow(ctx, `
INSERT INTO product_variants (product_id, color_name, color_hex, representative_image_url, discount_rate, sale_start_date, sale_end_date)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7)
ON CONFLICT (product_id, color_name) DO UPDATE SET
    color_hex = EXCLUDED.color_hex,
    representative_image_url = EXCLUDED.representative_image_url,
    discount_rate = EXCLUDED.discount_rate,
    sale_start_date = EXCLUDED.sale_start_date,
    sale_end_date = EXCLUDED.sale_end_date
RETURNING `+variantColumns,
		v.ProductID, v.ColorName, v.ColorHex, v.ImageURL, v.DiscountRate, v.SaleStartDate, v.SaleEndDate))
	if err != nil {
		r.logger.Printf("product repo: upsert variant product_id=%d color=%s error=%v", v.ProductID, v.ColorName, err)
		return nil, err
	}
	return res, nil
}

// UpsertOption sets the stock of a size. Importing the same row twice is a restock to that level, not an addition.
func (r *postgresRepo) UpsertOption(ctx context.Context, q db.Querier, o domain.ProductOption) (*domain.ProductOption, error) {
	res := o
	err := q.QueryRow(ctx, `
INSERT INTO product_options (variant_id, size, stock_quantity)
VALUES ($1, $2, $3)
ON CONFLICT (variant_id, size) DO UPDATE SET stock_quantity = EXCLUDED.stock_quantity
RETURNING option_id
`, o.VariantID, o.Size, o.StockQuantity).Scan(&res.ID)
	if err != nil {
		r.logger.Printf("product repo: upsert option variant_id=%d size=%s error=%v", o.VariantID, o.Size, err)
		return nil, err
	}
	return &res, nil
}

func scanVariant(row pgx.Row) (*domain.ProductVariant, error) {
	var v domain.ProductVariant
	err := row.Scan(
		&v.ID,
		&v.ProductID,
		&v.ColorName,
		&v.ColorHex,
		&v.ImageURL,
		&v.DiscountRate,
		&v.SaleStartDate,
		&v.SaleEndDate,
		&v.SoldCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}
