package approval

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/whyyagswhy/dealcalc-sub000/internal/match"
	"github.com/whyyagswhy/dealcalc-sub000/internal/productname"
)

// minFuzzyLength is the base-name length both sides must exceed before a
// containment match counts.
const minFuzzyLength = 3

// Result is the approval outcome for one product, quantity and discount.
type Result struct {
	Level              Level            `json:"level"`
	MaxL4Discount      *decimal.Decimal `json:"maxL4Discount"`
	IsInstantApproval  bool             `json:"isInstantApproval"`
	MatchedProductName *string          `json:"matchedProductName"`
}

// FindThreshold selects the row governing productName at quantity. Only rows
// whose band contains quantity are considered. The first step that yields
// candidates wins: exact name, then base name with edition preference, then
// base-name containment with edition preference. Ties go to input order.
func FindThreshold(thresholds []DiscountThreshold, productName string, quantity int) (DiscountThreshold, bool) {
	name := strings.TrimSpace(productName)
	if name == "" {
		return DiscountThreshold{}, false
	}
	inBand := match.Filter(thresholds, func(t DiscountThreshold) bool { return t.InBand(quantity) })
	if len(inBand) == 0 {
		return DiscountThreshold{}, false
	}

	parsed := productname.Parse(name)
	base := strings.ToLower(parsed.Category)
	preferEdition := func(c []DiscountThreshold) []DiscountThreshold {
		if len(parsed.Editions) == 0 {
			return c
		}
		return match.Prefer(c, func(t DiscountThreshold) bool {
			return productname.HasEditionOverlap(productname.Parse(t.ProductName).Editions, parsed.Editions)
		})
	}

	row, _, ok := match.First(inBand,
		match.Where("exact", func(t DiscountThreshold) bool {
			return strings.EqualFold(strings.TrimSpace(t.ProductName), name)
		}),
		match.Where("base", func(t DiscountThreshold) bool {
			return rowBase(t) == base
		}).Then(preferEdition),
		match.Where("fuzzy", func(t DiscountThreshold) bool {
			rb := rowBase(t)
			if len(rb) <= minFuzzyLength || len(base) <= minFuzzyLength {
				return false
			}
			return strings.Contains(rb, base) || strings.Contains(base, rb)
		}).Then(preferEdition),
	)
	return row, ok
}

// Resolve derives the tier for discount against row. found=false yields N/A.
// A nil or non-positive discount is L0; otherwise the first tier whose
// maximum is present and not below the discount; otherwise L5+.
func Resolve(row DiscountThreshold, found bool, discount *decimal.Decimal) Result {
	if !found {
		return Result{Level: LevelNA}
	}
	matched := row.ProductName
	res := Result{MaxL4Discount: row.Level4Max, MatchedProductName: &matched}
	res.Level = levelFor(row, discount)
	res.IsInstantApproval = res.Level.IsInstant()
	return res
}

// Evaluate looks up the governing row and resolves the tier.
func Evaluate(thresholds []DiscountThreshold, productName string, quantity int, discount *decimal.Decimal) Result {
	row, found := FindThreshold(thresholds, productName, quantity)
	return Resolve(row, found, discount)
}

// MaxInstantDiscount returns the largest discount the matched row clears
// without escalation.
func MaxInstantDiscount(res Result) (*decimal.Decimal, bool) {
	if res.Level == LevelNA || res.MaxL4Discount == nil {
		return nil, false
	}
	v := *res.MaxL4Discount
	return &v, true
}

func levelFor(row DiscountThreshold, discount *decimal.Decimal) Level {
	if discount == nil || !discount.IsPositive() {
		return LevelL0
	}
	for i, lv := range instantLevels {
		if limit := row.LevelMax(i); limit != nil && discount.LessThanOrEqual(*limit) {
			return lv
		}
	}
	return LevelL5Plus
}

func rowBase(t DiscountThreshold) string {
	return strings.ToLower(productname.BaseName(t.ProductName))
}
