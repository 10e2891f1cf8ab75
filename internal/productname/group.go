package productname

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EditionOption is one selectable edition of a category. A nil Edition is
// the no-edition variant.
type EditionOption struct {
	Edition      *string         `json:"edition"`
	ProductID    uuid.UUID       `json:"productId"`
	DisplayName  string          `json:"displayName"`
	MonthlyPrice decimal.Decimal `json:"monthlyPrice"`
}

// CategoryGroup lists the distinct editions of one category.
type CategoryGroup struct {
	Category string          `json:"category"`
	Editions []EditionOption `json:"editions"`
}

// GroupProductsByCategory groups catalog rows by category. Categories named
// in priority come first in that order, the rest alphabetically. Editions are
// deduplicated and sorted alphabetically with the no-edition variant last.
func GroupProductsByCategory(catalog []PriceBookProduct, priority []string) []CategoryGroup {
	index := make(map[string]int)
	seen := make(map[pairKey]bool)
	var groups []CategoryGroup
	for _, p := range catalog {
		category := strings.TrimSpace(p.Category)
		if category == "" {
			continue
		}
		k := keyOf(p)
		if seen[k] {
			continue
		}
		seen[k] = true

		i, ok := index[k.category]
		if !ok {
			i = len(groups)
			index[k.category] = i
			groups = append(groups, CategoryGroup{Category: category})
		}
		var edition *string
		if hasEdition(p.Edition) {
			e := strings.TrimSpace(*p.Edition)
			edition = &e
		}
		groups[i].Editions = append(groups[i].Editions, EditionOption{
			Edition:      edition,
			ProductID:    p.ID,
			DisplayName:  Build(category, edition),
			MonthlyPrice: p.MonthlyPrice(),
		})
	}

	rank := make(map[string]int, len(priority))
	for i, name := range priority {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := rank[key]; !dup {
			rank[key] = i
		}
	}

	sort.SliceStable(groups, func(a, b int) bool {
		ka, kb := strings.ToLower(groups[a].Category), strings.ToLower(groups[b].Category)
		ra, pa := rank[ka]
		rb, pb := rank[kb]
		switch {
		case pa && pb:
			return ra < rb
		case pa != pb:
			return pa
		default:
			return ka < kb
		}
	})
	for i := range groups {
		sortEditions(groups[i].Editions)
	}
	return groups
}

func sortEditions(editions []EditionOption) {
	sort.SliceStable(editions, func(a, b int) bool {
		ea, eb := editions[a].Edition, editions[b].Edition
		switch {
		case ea == nil:
			return false
		case eb == nil:
			return true
		default:
			return strings.ToLower(*ea) < strings.ToLower(*eb)
		}
	})
}
