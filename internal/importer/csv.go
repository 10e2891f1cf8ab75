// Package importer loads reference data from CSV exports into the store.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/whyyagswhy/dealcalc-sub000/internal/approval"
	"github.com/whyyagswhy/dealcalc-sub000/internal/productname"
)

var (
	// ThresholdColumns is the expected header of a discount matrix export.
	ThresholdColumns = []string{"product_name", "qty_min", "qty_max", "level0", "level1", "level2", "level3", "level4"}
	// PriceBookColumns is the expected header of a price book export.
	PriceBookColumns = []string{"category", "edition", "monthly_list_price", "annual_list_price"}

	// ErrHeader is returned when the first record does not name the expected columns.
	ErrHeader = errors.New("unexpected csv header")
	// ErrDuplicate marks a row repeating the key of an earlier row.
	ErrDuplicate = errors.New("duplicate row")
)

// LineError attaches the 1-based source line to a row failure.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// ReadThresholds parses a discount matrix export. Product names are kept
// exactly as written; empty level cells mean the level does not apply.
func ReadThresholds(r io.Reader) ([]approval.DiscountThreshold, error) {
	records, err := readRecords(r, ThresholdColumns)
	if err != nil {
		return nil, err
	}
	type bandKey struct {
		name   string
		lo, hi int
	}
	seen := make(map[bandKey]int, len(records))
	out := make([]approval.DiscountThreshold, 0, len(records))
	for _, rec := range records {
		t, err := thresholdFrom(rec.fields)
		if err == nil {
			err = t.Validate()
		}
		if err != nil {
			return nil, &LineError{Line: rec.line, Err: err}
		}
		key := bandKey{t.ProductName, t.QtyMin, t.QtyMax}
		if first, ok := seen[key]; ok {
			return nil, &LineError{Line: rec.line, Err: fmt.Errorf("%w: same band as line %d", ErrDuplicate, first)}
		}
		seen[key] = rec.line
		out = append(out, t)
	}
	return out, nil
}

// ReadPriceBook parses a price book export. A blank or N/A edition is stored
// as no edition; a missing monthly price is derived from the annual one.
func ReadPriceBook(r io.Reader) ([]productname.PriceBookProduct, error) {
	records, err := readRecords(r, PriceBookColumns)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]int, len(records))
	out := make([]productname.PriceBookProduct, 0, len(records))
	for _, rec := range records {
		p, err := productFrom(rec.fields)
		if err != nil {
			return nil, &LineError{Line: rec.line, Err: err}
		}
		key := strings.ToLower(p.Category) + "\x00" + p.EditionKey()
		if first, ok := seen[key]; ok {
			return nil, &LineError{Line: rec.line, Err: fmt.Errorf("%w: same product as line %d", ErrDuplicate, first)}
		}
		seen[key] = rec.line
		out = append(out, p)
	}
	return out, nil
}

type record struct {
	line   int
	fields []string
}

func readRecords(r io.Reader, columns []string) ([]record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(columns)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", ErrHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, want := range columns {
		got := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
		if got != want {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrHeader, i+1, header[i], want)
		}
	}

	var out []record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if blank(fields) {
			continue
		}
		out = append(out, record{line: line, fields: fields})
	}
}

func thresholdFrom(f []string) (approval.DiscountThreshold, error) {
	t := approval.DiscountThreshold{ProductName: f[0]}
	var err error
	if t.QtyMin, err = parseQuantity("qty_min", f[1]); err != nil {
		return t, err
	}
	if t.QtyMax, err = parseQuantity("qty_max", f[2]); err != nil {
		return t, err
	}
	levels := make([]*decimal.Decimal, approval.LevelCount)
	for i := range levels {
		if levels[i], err = parseOptionalDecimal(ThresholdColumns[3+i], f[3+i]); err != nil {
			return t, err
		}
	}
	t.Level0Max, t.Level1Max, t.Level2Max, t.Level3Max, t.Level4Max = levels[0], levels[1], levels[2], levels[3], levels[4]
	return t, nil
}

func productFrom(f []string) (productname.PriceBookProduct, error) {
	p := productname.PriceBookProduct{Category: strings.TrimSpace(f[0])}
	if p.Category == "" {
		return p, errors.New("category is empty")
	}
	if edition := strings.TrimSpace(f[1]); edition != "" && !strings.EqualFold(edition, productname.NoEdition) {
		p.Edition = &edition
	}
	monthly, err := parseOptionalDecimal("monthly_list_price", f[2])
	if err != nil {
		return p, err
	}
	if p.AnnualListPrice, err = parseOptionalDecimal("annual_list_price", f[3]); err != nil {
		return p, err
	}
	switch {
	case monthly == nil && p.AnnualListPrice == nil:
		return p, errors.New("one of monthly_list_price or annual_list_price is required")
	case monthly != nil && monthly.IsNegative(), p.AnnualListPrice != nil && p.AnnualListPrice.IsNegative():
		return p, errors.New("list price is negative")
	}
	if monthly != nil {
		p.MonthlyListPrice = *monthly
	}
	p.Name = productname.Build(p.Category, p.Edition)
	return p, nil
}

func parseQuantity(column, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", column, raw)
	}
	return n, nil
}

func parseOptionalDecimal(column, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", column, raw)
	}
	return &d, nil
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
