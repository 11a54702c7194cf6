package product

import (
	"context"
	"time"

	"storefront/internal/db"
	"storefront/internal/domain"
)

// VariantPatch is a partial update of a variant. Nil fields are left untouched.
// ClearSale removes the sale window and takes precedence over the date fields.
type VariantPatch struct {
	ColorName     *string
	ColorHex      *string
	ImageURL      *string
	DiscountRate  *int
	SaleStartDate *time.Time
	SaleEndDate   *time.Time
	ClearSale     bool
}

// Empty reports whether the patch would change nothing.
func (p VariantPatch) Empty() bool {
	return p.ColorName == nil && p.ColorHex == nil && p.ImageURL == nil && p.DiscountRate == nil &&
		p.SaleStartDate == nil && p.SaleEndDate == nil && !p.ClearSale
}

// PopularRow is a variant as ranked by sold_count, with the sizes still in stock.
type PopularRow struct {
	Variant     domain.ProductVariant
	ProductName string
	BasePrice   int64
	Sizes       []string
}

type Repository interface {
	GetVariant(ctx context.Context, variantID int64) (*domain.ProductVariant, error)
	PatchVariant(ctx context.Context, variantID int64, patch VariantPatch) (*domain.ProductVariant, error)
	ListPopular(ctx context.Context, limit int) ([]PopularRow, error)

	// Inventory statements run on the caller's transaction.
	DecrementStock(ctx context.Context, q db.Querier, optionID int64, quantity int) error
	IncrementSold(ctx context.Context, q db.Querier, variantID int64, quantity int) error

	// Catalog upserts used by the importer and seed.
	UpsertProduct(ctx context.Context, q db.Querier, p domain.Product) (*domain.Product, error)
	UpsertVariant(ctx context.Context, q db.Querier, v domain.ProductVariant) (*domain.ProductVariant, error)
	UpsertOption(ctx context.Context, q db.Querier, o domain.ProductOption) (*domain.ProductOption, error)
}
