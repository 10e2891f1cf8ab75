// Package productname bridges the price book naming scheme (category plus
// optional edition) and the discount matrix bracket notation
// "[Edition, Edition] Category", and ranks catalog rows for interactive search.
package productname

import "strings"

// NoEdition is the sentinel some sources use for "no edition variant".
const NoEdition = "N/A"

// ParsedName is the structural view of a bracket-notation name. Edition is
// the first listed edition; Editions holds all of them.
type ParsedName struct {
	Category string   `json:"category"`
	Edition  *string  `json:"edition"`
	Editions []string `json:"editions"`
}

// Build renders a catalog entry in bracket notation. A nil, blank or N/A
// edition yields the bare category.
func Build(category string, edition *string) string {
	category = strings.TrimSpace(category)
	if !hasEdition(edition) {
		return category
	}
	return "[" + strings.TrimSpace(*edition) + "] " + category
}

// BuildMulti renders a category with several editions sharing one bracket pair.
func BuildMulti(category string, editions []string) string {
	category = strings.TrimSpace(category)
	kept := make([]string, 0, len(editions))
	for _, e := range editions {
		if hasEdition(&e) {
			kept = append(kept, strings.TrimSpace(e))
		}
	}
	if len(kept) == 0 {
		return category
	}
	return "[" + strings.Join(kept, ", ") + "] " + category
}

// Parse splits a bracket-notation name. Names without a leading bracket
// group are returned as a bare category.
func Parse(name string) ParsedName {
	name = strings.TrimSpace(name)
	if !strings.HasPrefix(name, "[") {
		return ParsedName{Category: name, Editions: []string{}}
	}
	end := strings.Index(name, "]")
	if end < 0 {
		return ParsedName{Category: name, Editions: []string{}}
	}
	editions := splitEditions(name[1:end])
	parsed := ParsedName{
		Category: strings.TrimSpace(name[end+1:]),
		Editions: editions,
	}
	if len(editions) > 0 {
		primary := editions[0]
		parsed.Edition = &primary
	}
	return parsed
}

// BaseName returns the text after any leading bracketed edition list.
func BaseName(name string) string {
	return Parse(name).Category
}

// HasEditionOverlap reports whether any edition of a appears in b, ignoring case.
func HasEditionOverlap(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if strings.EqualFold(x, y) {
				return true
			}
		}
	}
	return false
}

func splitEditions(inner string) []string {
	parts := strings.Split(inner, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func hasEdition(edition *string) bool {
	if edition == nil {
		return false
	}
	e := strings.TrimSpace(*edition)
	return e != "" && !strings.EqualFold(e, NoEdition)
}
