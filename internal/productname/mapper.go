package productname

import (
	"strings"

	"github.com/whyyagswhy/dealcalc-sub000/internal/match"
)

// Override pins the discount matrix name of a price book entry whose
// edition does not map one-to-one. An empty Edition targets the no-edition row.
type Override struct {
	Category   string `json:"category"`
	Edition    string `json:"edition"`
	MatrixName string `json:"matrixName"`
}

// DefaultOverrides covers the categories whose price book editions collapse
// into a shared discount matrix row.
var DefaultOverrides = []Override{
	{Category: "Slack", Edition: "Business+", MatrixName: "[Business Plus] Slack"},
	{Category: "Slack", Edition: "Enterprise Grid", MatrixName: "[Enterprise] Slack"},
	{Category: "Tableau", Edition: "Creator", MatrixName: "[Creator, Explorer, Viewer] Tableau"},
	{Category: "Tableau", Edition: "Explorer", MatrixName: "[Creator, Explorer, Viewer] Tableau"},
	{Category: "Tableau", Edition: "Viewer", MatrixName: "[Creator, Explorer, Viewer] Tableau"},
	{Category: "Sales Cloud", Edition: "Unlimited+", MatrixName: "[Unlimited] Sales Cloud"},
	{Category: "Service Cloud", Edition: "Unlimited+", MatrixName: "[Unlimited] Service Cloud"},
	{Category: "Data Cloud", Edition: "", MatrixName: "[Enterprise, Unlimited] Data Cloud"},
}

// Mapper translates price book entries to discount matrix names.
type Mapper struct {
	overrides map[pairKey]string
	search    SearchOptions
}

// NewMapper builds a Mapper from an override table. Later entries replace
// earlier ones for the same category/edition pair.
func NewMapper(overrides []Override, opts SearchOptions) *Mapper {
	m := &Mapper{overrides: make(map[pairKey]string, len(overrides)), search: opts}
	for _, o := range overrides {
		if strings.TrimSpace(o.MatrixName) == "" {
			continue
		}
		edition := o.Edition
		k := pairKey{category: strings.ToLower(strings.TrimSpace(o.Category)), edition: editionKey(&edition)}
		m.overrides[k] = strings.TrimSpace(o.MatrixName)
	}
	return m
}

// DiscountMatrixName returns the threshold table name for a price book entry.
func (m *Mapper) DiscountMatrixName(category string, edition *string) string {
	if m != nil {
		k := pairKey{category: strings.ToLower(strings.TrimSpace(category)), edition: editionKey(edition)}
		if name, ok := m.overrides[k]; ok {
			return name
		}
	}
	return Build(category, edition)
}

// FindBestPriceBookMatch resolves a quote or matrix product name to a single
// catalog row: exact bracket name, then override table, then category and
// edition, then category alone, then the best fuzzy hit.
func (m *Mapper) FindBestPriceBookMatch(catalog []PriceBookProduct, name string) (PriceBookProduct, bool) {
	name = strings.TrimSpace(name)
	if name == "" || len(catalog) == 0 {
		return PriceBookProduct{}, false
	}
	parsed := Parse(name)

	p, _, ok := match.First(catalog,
		match.Where("exact", func(p PriceBookProduct) bool {
			return strings.EqualFold(p.DisplayName(), name)
		}),
		match.Where("override", func(p PriceBookProduct) bool {
			return strings.EqualFold(m.DiscountMatrixName(p.Category, p.Edition), name)
		}),
		match.Where("structural", func(p PriceBookProduct) bool {
			return strings.EqualFold(strings.TrimSpace(p.Category), parsed.Category) &&
				p.Edition != nil && HasEditionOverlap([]string{*p.Edition}, parsed.Editions)
		}),
		match.Where("category", func(p PriceBookProduct) bool {
			return strings.EqualFold(strings.TrimSpace(p.Category), parsed.Category)
		}).Then(func(c []PriceBookProduct) []PriceBookProduct {
			return match.Prefer(c, func(p PriceBookProduct) bool { return !hasEdition(p.Edition) })
		}),
		match.Step[PriceBookProduct]{Name: "fuzzy", Run: func(c []PriceBookProduct) []PriceBookProduct {
			return m.fuzzy(c, name)
		}},
	)
	return p, ok
}

func (m *Mapper) fuzzy(catalog []PriceBookProduct, name string) []PriceBookProduct {
	opts := DefaultSearchOptions
	if m != nil {
		opts = m.search
	}
	hits := SearchProducts(catalog, name, 1, opts)
	if len(hits) == 0 {
		return nil
	}
	for _, p := range catalog {
		if p.ID == hits[0].ProductID && strings.EqualFold(p.DisplayName(), hits[0].DisplayName) {
			return []PriceBookProduct{p}
		}
	}
	return nil
}
