package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"storefront/internal/db"
	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
)

// CatalogWriter upserts catalog rows on the importer's transaction.
type CatalogWriter interface {
	UpsertProduct(ctx context.Context, q db.Querier, p domain.Product) (*domain.Product, error)
	UpsertVariant(ctx context.Context, q db.Querier, v domain.ProductVariant) (*domain.ProductVariant, error)
	UpsertOption(ctx context.Context, q db.Querier, o domain.ProductOption) (*domain.ProductOption, error)
}

// Stats counts the upserts issued by one import.
type Stats struct {
	Products int
	Variants int
	Options  int
}

// CSVImporter loads a catalog CSV with one row per size. Rows with an empty
// product column continue the previous product, and rows with an empty color
// continue the previous variant.
//
// Required headers: product, base_price, color, size, stock.
// Optional: description, color_hex, image_url, discount_rate, sale_start, sale_end.
type CSVImporter struct {
	reader *csv.Reader
	pool   db.TxBeginner
	repo   CatalogWriter
	loc    *time.Location
}

func NewCSVImporter(r io.Reader, pool db.TxBeginner, repo CatalogWriter, loc *time.Location) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	if loc == nil {
		loc = time.UTC
	}
	return &CSVImporter{
		reader: csvr,
		pool:   pool,
		repo:   repo,
		loc:    loc,
	}
}

type csvRow struct {
	line      int
	Product   string
	Desc      string
	BasePrice int64
	Color     string
	ColorHex  string
	ImageURL  string
	Discount  int
	SaleStart *time.Time
	SaleEnd   *time.Time
	Size      string
	Stock     int
}

var requiredHeaders = []string{"product", "base_price", "color", "size", "stock"}

// Run imports every row in one transaction. Any invalid row aborts the whole import.
func (i *CSVImporter) Run(ctx context.Context) (stats Stats, err error) {
	headers, err := i.reader.Read()
	if err != nil {
		return stats, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, h := range requiredHeaders {
		if _, ok := index[h]; !ok {
			return stats, fmt.Errorf("missing required header %q", h)
		}
	}

	tx, err := i.pool.Begin(ctx)
	if err != nil {
		return stats, fmt.Errorf("begin import: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) && err != nil {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
		}
	}()

	var (
		product *domain.Product
		variant *domain.ProductVariant
		prev    *csvRow
		line    = 1
	)

	for {
		record, readErr := i.reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		line++
		if readErr != nil {
			return stats, fmt.Errorf("read row %d: %w", line, readErr)
		}

		row, parseErr := i.parseRow(record, index, prev, line)
		if parseErr != nil {
			return stats, parseErr
		}
		if row == nil {
			continue
		}

		if product == nil || row.Product != product.Name {
			product, err = i.repo.UpsertProduct(ctx, tx, domain.Product{Name: row.Product, Description: row.Desc, BasePrice: row.BasePrice})
			if err != nil {
				return stats, fmt.Errorf("upsert product %q: %w", row.Product, err)
			}
			stats.Products++
			variant = nil
		}
		if variant == nil || row.Color != variant.ColorName {
			variant, err = i.repo.UpsertVariant(ctx, tx, domain.ProductVariant{
				ProductID:     product.ID,
				ColorName:     row.Color,
				ColorHex:      row.ColorHex,
				ImageURL:      row.ImageURL,
				DiscountRate:  row.Discount,
				SaleStartDate: row.SaleStart,
				SaleEndDate:   row.SaleEnd,
			})
			if err != nil {
				return stats, fmt.Errorf("upsert variant %q/%q: %w", row.Product, row.Color, err)
			}
			stats.Variants++
		}
		if _, err = i.repo.UpsertOption(ctx, tx, domain.ProductOption{VariantID: variant.ID, Size: row.Size, StockQuantity: row.Stock}); err != nil {
			return stats, fmt.Errorf("upsert option %q/%q/%q: %w", row.Product, row.Color, row.Size, err)
		}
		stats.Options++
		prev = row
	}

	committed = true
	if err := tx.Commit(ctx); err != nil {
		return Stats{}, fmt.Errorf("commit import: %w", err)
	}
	return stats, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

// parseRow returns nil for blank rows. Product and variant columns left empty
// are inherited from prev.
func (i *CSVImporter) parseRow(record []string, index map[string]int, prev *csvRow, line int) (*csvRow, error) {
	blank := true
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			blank = false
			break
		}
	}
	if blank {
		return nil, nil
	}

	row := &csvRow{
		line:     line,
		Product:  pick(record, index, "product"),
		Desc:     pick(record, index, "description"),
		Color:    pick(record, index, "color"),
		ColorHex: pick(record, index, "color_hex"),
		ImageURL: pick(record, index, "image_url"),
		Size:     pick(record, index, "size"),
	}

	if row.Product == "" {
		if prev == nil {
			return nil, fmt.Errorf("row %d: product is required", line)
		}
		row.Product, row.Desc, row.BasePrice = prev.Product, prev.Desc, prev.BasePrice
	} else {
		price, err := strconv.ParseInt(pick(record, index, "base_price"), 10, 64)
		if err != nil || price < 0 {
			return nil, fmt.Errorf("row %d: base_price must be a non-negative integer", line)
		}
		row.BasePrice = price
	}

	inheritVariant := row.Color == "" && prev != nil && prev.Product == row.Product
	if inheritVariant {
		row.Color, row.ColorHex, row.ImageURL = prev.Color, prev.ColorHex, prev.ImageURL
		row.Discount, row.SaleStart, row.SaleEnd = prev.Discount, prev.SaleStart, prev.SaleEnd
	} else {
		if row.Color == "" {
			return nil, fmt.Errorf("row %d: color is required", line)
		}
		if err := i.parseSale(row, record, index); err != nil {
			return nil, err
		}
	}

	if row.Size == "" {
		return nil, fmt.Errorf("row %d: size is required", line)
	}
	stock, err := strconv.Atoi(pick(record, index, "stock"))
	if err != nil || stock < 0 {
		return nil, fmt.Errorf("row %d: stock must be a non-negative integer", line)
	}
	row.Stock = stock
	return row, nil
}

func (i *CSVImporter) parseSale(row *csvRow, record []string, index map[string]int) error {
	if raw := pick(record, index, "discount_rate"); raw != "" {
		rate, err := strconv.Atoi(raw)
		if err != nil || rate < 0 || rate > 100 {
			return fmt.Errorf("row %d: discount_rate must be between 0 and 100", row.line)
		}
		row.Discount = rate
	}

	var err error
	if row.SaleStart, err = i.parseDate(pick(record, index, "sale_start")); err != nil {
		return fmt.Errorf("row %d: sale_start: %w", row.line, err)
	}
	if row.SaleEnd, err = i.parseDate(pick(record, index, "sale_end")); err != nil {
		return fmt.Errorf("row %d: sale_end: %w", row.line, err)
	}
	if (row.SaleStart == nil) != (row.SaleEnd == nil) {
		return fmt.Errorf("row %d: sale_start and sale_end must be set together", row.line)
	}
	if row.SaleStart != nil && row.SaleStart.After(*row.SaleEnd) {
		return fmt.Errorf("row %d: sale_start is after sale_end", row.line)
	}
	return nil
}

// parseDate reads RFC 3339 timestamps, or plain dates as midnight in the importer's location.
func (i *CSVImporter) parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, i.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", raw)
	}
	return &t, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
