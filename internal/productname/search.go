package productname

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// DefaultSearchLimit applies when callers pass a non-positive limit.
	DefaultSearchLimit = 10

	minSearchScore = 0.3
	categoryFloor  = 0.95
	editionFloor   = 0.8
)

// SearchResult is one ranked catalog row.
type SearchResult struct {
	Category     string          `json:"category"`
	Edition      *string         `json:"edition"`
	DisplayName  string          `json:"displayName"`
	MonthlyPrice decimal.Decimal `json:"monthlyPrice"`
	Score        float64         `json:"score"`
	ProductID    uuid.UUID       `json:"productId"`
}

// SearchOptions carries the curated ordering used for empty queries.
type SearchOptions struct {
	PriorityCategories []string
	PriorityEditions   []string
}

// DefaultSearchOptions lists the most frequently quoted products.
var DefaultSearchOptions = SearchOptions{
	PriorityCategories: []string{"Sales Cloud", "Service Cloud", "Platform", "Marketing Cloud", "Slack", "Tableau"},
	PriorityEditions:   []string{"Enterprise", "Unlimited", "Professional"},
}

// SearchProducts ranks catalog rows against a free text query. An empty
// query returns the curated popular ordering without scoring.
func SearchProducts(catalog []PriceBookProduct, query string, limit int, opts SearchOptions) []SearchResult {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	normalized := Normalize(query)
	if normalized == "" {
		return popularProducts(catalog, limit, opts)
	}
	queryTokens := strings.Fields(normalized)

	var scored []SearchResult
	for _, p := range catalog {
		score := scoreProduct(p, normalized, queryTokens)
		if score <= minSearchScore {
			continue
		}
		scored = append(scored, resultFor(p, score))
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	seen := make(map[pairKey]bool, len(scored))
	out := make([]SearchResult, 0, limit)
	for _, r := range scored {
		k := pairKey{category: strings.ToLower(strings.TrimSpace(r.Category)), edition: editionKey(r.Edition)}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out
}

func scoreProduct(p PriceBookProduct, normalizedQuery string, queryTokens []string) float64 {
	groups := [][]string{Tokenize(p.Category)}
	if p.Edition != nil {
		groups = append(groups, Tokenize(*p.Edition))
	}
	if p.Name != "" {
		groups = append(groups, Tokenize(p.Name))
	}
	groups = append(groups, Tokenize(p.DisplayName()))

	total := 0.0
	for _, qt := range queryTokens {
		total += bestTokenScore(qt, groups)
	}
	score := total / float64(len(queryTokens))

	if strings.Contains(Normalize(p.Category), normalizedQuery) && score < categoryFloor {
		score = categoryFloor
	}
	if p.Edition != nil && strings.Contains(Normalize(*p.Edition), normalizedQuery) && score < editionFloor {
		score = editionFloor
	}
	return score
}

// popularProducts orders priority categories by priority editions first,
// then every remaining distinct category/edition pair in catalog order.
func popularProducts(catalog []PriceBookProduct, limit int, opts SearchOptions) []SearchResult {
	seen := make(map[pairKey]bool)
	out := make([]SearchResult, 0, limit)
	add := func(p PriceBookProduct) bool {
		k := keyOf(p)
		if seen[k] {
			return len(out) < limit
		}
		seen[k] = true
		out = append(out, resultFor(p, 0))
		return len(out) < limit
	}

	for _, category := range opts.PriorityCategories {
		for _, edition := range opts.PriorityEditions {
			for _, p := range catalog {
				if !strings.EqualFold(strings.TrimSpace(p.Category), category) || !strings.EqualFold(p.EditionKey(), edition) {
					continue
				}
				if !add(p) {
					return out
				}
				break
			}
		}
	}
	for _, p := range catalog {
		if strings.TrimSpace(p.Category) == "" {
			continue
		}
		if !add(p) {
			return out
		}
	}
	return out
}

func resultFor(p PriceBookProduct, score float64) SearchResult {
	var edition *string
	if hasEdition(p.Edition) {
		e := strings.TrimSpace(*p.Edition)
		edition = &e
	}
	return SearchResult{
		Category:     strings.TrimSpace(p.Category),
		Edition:      edition,
		DisplayName:  p.DisplayName(),
		MonthlyPrice: p.MonthlyPrice(),
		Score:        score,
		ProductID:    p.ID,
	}
}

func editionKey(edition *string) string {
	if !hasEdition(edition) {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*edition))
}
