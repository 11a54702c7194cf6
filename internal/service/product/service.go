package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/pricing"
	productrepo "storefront/internal/repository/product"
)

const (
	DefaultPopularLimit = 10
	maxPopularLimit     = 50
)

// ErrInvalidPatch is returned for out-of-range discounts or inverted sale windows.
var ErrInvalidPatch = errors.New("invalid variant patch")

type variantStore interface {
	GetVariant(ctx context.Context, variantID int64) (*domain.ProductVariant, error)
	PatchVariant(ctx context.Context, variantID int64, patch productrepo.VariantPatch) (*domain.ProductVariant, error)
}

type popularReader interface {
	ListPopular(ctx context.Context, limit int) ([]productrepo.PopularRow, error)
}

// PopularItem is one ranked variant priced at the moment of the listing.
type PopularItem struct {
	Rank          int      `json:"rank"`
	VariantID     int64    `json:"variantId"`
	ProductID     int64    `json:"productId"`
	Name          string   `json:"name"`
	ColorName     string   `json:"colorName"`
	Image         string   `json:"image,omitempty"`
	OriginalPrice int64    `json:"originalPrice"`
	Price         int64    `json:"price"`
	DiscountRate  int      `json:"discountRate"`
	Sizes         []string `json:"sizes"`
	SoldCount     int64    `json:"soldCount"`
}

type Service struct {
	repo    variantStore
	popular popularReader
	loc     *time.Location
	now     func() time.Time
}

// New evaluates sale windows as calendar days in loc (UTC when nil).
func New(repo productrepo.Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, popular: repo, loc: loc, now: time.Now}
}

func (s *Service) GetVariant(ctx context.Context, variantID int64) (*domain.ProductVariant, error) {
	return s.repo.GetVariant(ctx, variantID)
}

// PatchVariant validates the patch against the stored variant and applies it.
// The resulting sale window must have both dates or neither, with start not after end.
func (s *Service) PatchVariant(ctx context.Context, variantID int64, patch productrepo.VariantPatch) (*domain.ProductVariant, error) {
	if patch.DiscountRate != nil && (*patch.DiscountRate < 0 || *patch.DiscountRate > 100) {
		return nil, fmt.Errorf("%w: discountRate must be between 0 and 100", ErrInvalidPatch)
	}
	if patch.ColorName != nil && *patch.ColorName == "" {
		return nil, fmt.Errorf("%w: colorName cannot be empty", ErrInvalidPatch)
	}

	if !patch.ClearSale && (patch.SaleStartDate != nil || patch.SaleEndDate != nil) {
		current, err := s.repo.GetVariant(ctx, variantID)
		if err != nil {
			return nil, err
		}
		start, end := current.SaleStartDate, current.SaleEndDate
		if patch.SaleStartDate != nil {
			start = patch.SaleStartDate
		}
		if patch.SaleEndDate != nil {
			end = patch.SaleEndDate
		}
		if start == nil || end == nil {
			return nil, fmt.Errorf("%w: sale window needs both saleStartDate and saleEndDate", ErrInvalidPatch)
		}
		if start.After(*end) {
			return nil, fmt.Errorf("%w: saleStartDate is after saleEndDate", ErrInvalidPatch)
		}
	}

	return s.repo.PatchVariant(ctx, variantID, patch)
}

// Popular ranks variants by units sold. Price honors the variant's discount
// only while its sale window is open, the same way checkout prices a line.
// A limit outside 1..50 falls back to the default of 10.
func (s *Service) Popular(ctx context.Context, limit int) ([]PopularItem, error) {
	if limit <= 0 || limit > maxPopularLimit {
		limit = DefaultPopularLimit
	}
	rows, err := s.popular.ListPopular(ctx, limit)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]PopularItem, 0, len(rows))
	for i, row := range rows {
		v := row.Variant
		window := pricing.NewSaleWindow(v.SaleStartDate, v.SaleEndDate, s.loc)
		sizes := row.Sizes
		if sizes == nil {
			sizes = []string{}
		}
		items = append(items, PopularItem{
			Rank:          i + 1,
			VariantID:     v.ID,
			ProductID:     v.ProductID,
			Name:          row.ProductName,
			ColorName:     v.ColorName,
			Image:         v.ImageURL,
			OriginalPrice: row.BasePrice,
			Price:         pricing.EffectivePrice(row.BasePrice, v.DiscountRate, window, now),
			DiscountRate:  pricing.DiscountFor(v.DiscountRate, window, now),
			Sizes:         sizes,
			SoldCount:     v.SoldCount,
		})
	}
	return items, nil
}
