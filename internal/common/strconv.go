package common

import "strconv"

// AtoiDefault converts the provided string to an integer falling back to the default when parsing fails.
func AtoiDefault(value string, def int) int {
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

// ClampLimit bounds a requested page size by ceiling, using def for
// non-positive requests.
func ClampLimit(requested, def, ceiling int) int {
	if requested <= 0 {
		requested = def
	}
	if ceiling > 0 && requested > ceiling {
		return ceiling
	}
	return requested
}
