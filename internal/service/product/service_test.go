package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

type stubStore struct {
	current    domain.ProductVariant
	patched    *productrepo.VariantPatch
	patchCalls int
}

func (s *stubStore) GetVariant(_ context.Context, _ int64) (*domain.ProductVariant, error) {
	v := s.current
	return &v, nil
}

func (s *stubStore) PatchVariant(_ context.Context, _ int64, patch productrepo.VariantPatch) (*domain.ProductVariant, error) {
	s.patchCalls++
	s.patched = &patch
	v := s.current
	return &v, nil
}

func day(d int) *time.Time {
	t := time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func intPtr(v int) *int { return &v }

func TestPatchVariant_Validation(t *testing.T) {
	tests := []struct {
		name    string
		current domain.ProductVariant
		patch   productrepo.VariantPatch
		wantErr bool
	}{
		{name: "discount too high", patch: productrepo.VariantPatch{DiscountRate: intPtr(101)}, wantErr: true},
		{name: "discount negative", patch: productrepo.VariantPatch{DiscountRate: intPtr(-1)}, wantErr: true},
		{name: "discount ok", patch: productrepo.VariantPatch{DiscountRate: intPtr(30)}},
		{name: "half window", patch: productrepo.VariantPatch{SaleStartDate: day(1)}, wantErr: true},
		{name: "inverted window", patch: productrepo.VariantPatch{SaleStartDate: day(10), SaleEndDate: day(2)}, wantErr: true},
		{name: "full window", patch: productrepo.VariantPatch{SaleStartDate: day(1), SaleEndDate: day(10)}},
		{name: "extend stored window", current: domain.ProductVariant{SaleStartDate: day(1), SaleEndDate: day(5)}, patch: productrepo.VariantPatch{SaleEndDate: day(20)}},
		{name: "end before stored start", current: domain.ProductVariant{SaleStartDate: day(15), SaleEndDate: day(20)}, patch: productrepo.VariantPatch{SaleEndDate: day(3)}, wantErr: true},
		{name: "clear sale", current: domain.ProductVariant{SaleStartDate: day(1), SaleEndDate: day(5)}, patch: productrepo.VariantPatch{ClearSale: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{current: tt.current}
			svc := &Service{repo: store}
			_, err := svc.PatchVariant(context.Background(), 1, tt.patch)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPatch) {
					t.Fatalf("expected ErrInvalidPatch, got %v", err)
				}
				if store.patchCalls != 0 {
					t.Fatalf("invalid patch reached the store")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if store.patchCalls != 1 {
				t.Fatalf("expected one patch call, got %d", store.patchCalls)
			}
		})
	}
}

type stubPopular struct {
	rows     []productrepo.PopularRow
	gotLimit int
}

func (s *stubPopular) ListPopular(_ context.Context, limit int) ([]productrepo.PopularRow, error) {
	s.gotLimit = limit
	return s.rows, nil
}

func TestPopular_SaleAwarePricing(t *testing.T) {
	reader := &stubPopular{rows: []productrepo.PopularRow{
		{
			Variant:     domain.ProductVariant{ID: 4, ProductID: 2, ColorName: "Black", DiscountRate: 25, SaleStartDate: day(10), SaleEndDate: day(20), SoldCount: 30},
			ProductName: "Basic Tee", BasePrice: 9999, Sizes: []string{"S", "M"},
		},
		{
			Variant:     domain.ProductVariant{ID: 5, ProductID: 2, ColorName: "White", DiscountRate: 50, SaleStartDate: day(1), SaleEndDate: day(5), SoldCount: 12},
			ProductName: "Basic Tee", BasePrice: 10000,
		},
		{
			Variant:     domain.ProductVariant{ID: 6, ProductID: 3, ColorName: "Navy", DiscountRate: 40, SoldCount: 3},
			ProductName: "Linen Shirt", BasePrice: 42000, Sizes: []string{"L"},
		},
	}}
	svc := &Service{popular: reader, loc: time.UTC, now: func() time.Time { return *day(20) }}

	items, err := svc.Popular(context.Background(), 0)
	if err != nil {
		t.Fatalf("popular: %v", err)
	}
	if reader.gotLimit != DefaultPopularLimit {
		t.Fatalf("expected default limit, got %d", reader.gotLimit)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	open := items[0]
	if open.Rank != 1 || open.OriginalPrice != 9999 || open.Price != 7499 || open.DiscountRate != 25 {
		t.Fatalf("last day of the sale must be discounted with floor rounding: %+v", open)
	}
	if items[1].Price != 10000 || items[1].DiscountRate != 0 || items[1].Sizes == nil {
		t.Fatalf("ended sale must show base price: %+v", items[1])
	}
	if items[2].Rank != 3 || items[2].Price != 42000 {
		t.Fatalf("discount without a window must not apply: %+v", items[2])
	}
}

func TestPopular_ClampsLimit(t *testing.T) {
	reader := &stubPopular{}
	svc := &Service{popular: reader, loc: time.UTC, now: time.Now}

	if _, err := svc.Popular(context.Background(), 5); err != nil || reader.gotLimit != 5 {
		t.Fatalf("limit 5: got %d err %v", reader.gotLimit, err)
	}
	if _, err := svc.Popular(context.Background(), 500); err != nil || reader.gotLimit != DefaultPopularLimit {
		t.Fatalf("limit 500: got %d err %v", reader.gotLimit, err)
	}
}
