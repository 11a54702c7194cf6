package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Variant describes one color of a fixture product with its sizes and stock.
type Variant struct {
	Color        string
	DiscountRate int
	SaleStart    *time.Time
	SaleEnd      *time.Time
	Stock        map[string]int
}

// InsertUser creates a shopper and returns its id.
func InsertUser(t *testing.T, pool *pgxpool.Pool, email string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `
INSERT INTO users (email, password_hash, name) VALUES ($1, 'x', 'Tester') RETURNING user_id
`, email).Scan(&id)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

// InsertProduct creates a product with variants and options. The returned map
// is keyed by "color/size" and holds option ids.
func InsertProduct(t *testing.T, pool *pgxpool.Pool, name string, basePrice int64, variants ...Variant) map[string]int64 {
	t.Helper()
	ctx := context.Background()

	var productID int64
	if err := pool.QueryRow(ctx, `INSERT INTO products (name, base_price) VALUES ($1, $2) RETURNING product_id`, name, basePrice).Scan(&productID); err != nil {
		t.Fatalf("insert product: %v", err)
	}

	options := make(map[string]int64)
	for _, v := range variants {
		var variantID int64
		err := pool.QueryRow(ctx, `
INSERT INTO product_variants (product_id, color_name, discount_rate, sale_start_date, sale_end_date)
VALUES ($1, $2, $3, $4, $5)
RETURNING variant_id
`, productID, v.Color, v.DiscountRate, v.SaleStart, v.SaleEnd).Scan(&variantID)
		if err != nil {
			t.Fatalf("insert variant: %v", err)
		}
		for size, stock := range v.Stock {
			var optionID int64
			err := pool.QueryRow(ctx, `
INSERT INTO product_options (variant_id, size, stock_quantity) VALUES ($1, $2, $3) RETURNING option_id
`, variantID, size, stock).Scan(&optionID)
			if err != nil {
				t.Fatalf("insert option: %v", err)
			}
			options[v.Color+"/"+size] = optionID
		}
	}
	return options
}

// InsertCartLine puts an option in a user's cart and returns the cart line id.
func InsertCartLine(t *testing.T, pool *pgxpool.Pool, userID, optionID int64, quantity int) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `
INSERT INTO cart (user_id, option_id, quantity) VALUES ($1, $2, $3) RETURNING cart_id
`, userID, optionID, quantity).Scan(&id)
	if err != nil {
		t.Fatalf("insert cart line: %v", err)
	}
	return id
}

// Stock reads an option's stock.
func Stock(t *testing.T, pool *pgxpool.Pool, optionID int64) int {
	t.Helper()
	var stock int
	if err := pool.QueryRow(context.Background(), `SELECT stock_quantity FROM product_options WHERE option_id = $1`, optionID).Scan(&stock); err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return stock
}
