package productname

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	prefixScore        = 1.0
	substringScore     = 0.9
	fuzzyWeight        = 0.8
	fuzzyMinSimilarity = 0.7
)

// Normalize lower-cases text, strips everything that is not a letter, digit
// or whitespace and collapses runs of whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize returns the whitespace separated tokens of the normalized text.
func Tokenize(s string) []string {
	return strings.Fields(Normalize(s))
}

// Similarity is 1 - editDistance/maxLength over runes.
func Similarity(a, b string) float64 {
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// tokenScore scores one query token against one target token.
func tokenScore(query, target string) float64 {
	switch {
	case query == "" || target == "":
		return 0
	case strings.HasPrefix(target, query):
		return prefixScore
	case strings.Contains(target, query):
		return substringScore
	}
	if sim := Similarity(query, target); sim > fuzzyMinSimilarity {
		return sim * fuzzyWeight
	}
	return 0
}

// bestTokenScore is the best score of a query token across every target group.
func bestTokenScore(query string, groups [][]string) float64 {
	best := 0.0
	for _, group := range groups {
		for _, target := range group {
			if s := tokenScore(query, target); s > best {
				best = s
				if best == prefixScore {
					return best
				}
			}
		}
	}
	return best
}
