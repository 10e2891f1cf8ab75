package productname

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceBookProduct is one catalog row. Several rows share a category with
// different editions; a nil Edition means the category has no edition variant.
type PriceBookProduct struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name,omitempty"`
	Category         string           `json:"category"`
	Edition          *string          `json:"edition"`
	MonthlyListPrice decimal.Decimal  `json:"monthlyListPrice"`
	AnnualListPrice  *decimal.Decimal `json:"annualListPrice,omitempty"`
}

// MonthlyPrice returns the monthly list price, deriving it from the annual
// price when no monthly price was recorded.
func (p PriceBookProduct) MonthlyPrice() decimal.Decimal {
	if !p.MonthlyListPrice.IsZero() || p.AnnualListPrice == nil {
		return p.MonthlyListPrice
	}
	return p.AnnualListPrice.Div(decimal.NewFromInt(12))
}

// DisplayName is the bracket-notation name of the row.
func (p PriceBookProduct) DisplayName() string {
	return Build(p.Category, p.Edition)
}

// EditionKey is the lower-cased edition, empty for the no-edition variant.
func (p PriceBookProduct) EditionKey() string {
	if !hasEdition(p.Edition) {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*p.Edition))
}

type pairKey struct {
	category string
	edition  string
}

func keyOf(p PriceBookProduct) pairKey {
	return pairKey{category: strings.ToLower(strings.TrimSpace(p.Category)), edition: p.EditionKey()}
}
