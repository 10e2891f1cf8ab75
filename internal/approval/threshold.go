// Package approval maps a requested discount onto the approval tier defined
// by a quantity-banded threshold table.
package approval

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyProductName is returned for threshold rows without a product name.
	ErrEmptyProductName = errors.New("threshold product name is empty")
	// ErrInvalidBand indicates a negative or inverted quantity band.
	ErrInvalidBand = errors.New("threshold quantity band is invalid")
	// ErrLevelOutOfRange indicates a level maximum outside [0, 1].
	ErrLevelOutOfRange = errors.New("threshold level maximum out of range")
	// ErrLevelsNotMonotonic indicates a level maximum below a lower level's maximum.
	ErrLevelsNotMonotonic = errors.New("threshold level maximums decrease")
)

// LevelCount is the number of instant approval tiers (L0 through L4).
const LevelCount = 5

// DiscountThreshold is one product/quantity band of the discount matrix.
// LevelNMax is the largest discount approvable at tier N; nil means the tier
// is not offered for the band.
type DiscountThreshold struct {
	ID          uuid.UUID        `json:"id"`
	ProductName string           `json:"productName"`
	QtyMin      int              `json:"qtyMin"`
	QtyMax      int              `json:"qtyMax"`
	Level0Max   *decimal.Decimal `json:"level0Max"`
	Level1Max   *decimal.Decimal `json:"level1Max"`
	Level2Max   *decimal.Decimal `json:"level2Max"`
	Level3Max   *decimal.Decimal `json:"level3Max"`
	Level4Max   *decimal.Decimal `json:"level4Max"`
}

// InBand reports whether quantity falls inside the inclusive band.
func (t DiscountThreshold) InBand(quantity int) bool {
	return quantity >= t.QtyMin && quantity <= t.QtyMax
}

// LevelMax returns the maximum for tier i, or nil when the tier is absent or
// i is out of range.
func (t DiscountThreshold) LevelMax(i int) *decimal.Decimal {
	switch i {
	case 0:
		return t.Level0Max
	case 1:
		return t.Level1Max
	case 2:
		return t.Level2Max
	case 3:
		return t.Level3Max
	case 4:
		return t.Level4Max
	default:
		return nil
	}
}

// Validate checks the row is usable reference data: a product name, an
// ordered non-negative band and level maximums in [0, 1] that never decrease.
func (t DiscountThreshold) Validate() error {
	if strings.TrimSpace(t.ProductName) == "" {
		return ErrEmptyProductName
	}
	if t.QtyMin < 0 || t.QtyMax < t.QtyMin {
		return ErrInvalidBand
	}
	var prev *decimal.Decimal
	for i := 0; i < LevelCount; i++ {
		limit := t.LevelMax(i)
		if limit == nil {
			continue
		}
		if limit.IsNegative() || limit.GreaterThan(decimal.NewFromInt(1)) {
			return ErrLevelOutOfRange
		}
		if prev != nil && limit.LessThan(*prev) {
			return ErrLevelsNotMonotonic
		}
		prev = limit
	}
	return nil
}
