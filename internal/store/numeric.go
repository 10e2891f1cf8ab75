package store

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Numerics cross the wire as text so no precision is lost to float64.

func parseNumeric(v *string) (*decimal.Decimal, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*v))
	if err != nil {
		return nil, fmt.Errorf("parse numeric %q: %w", *v, err)
	}
	return &d, nil
}

func numericParam(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func editionFromColumn(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func editionParam(e *string) string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(*e)
}
