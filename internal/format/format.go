// Package format renders decimals for display. Rounding happens here and
// nowhere else; callers keep full precision.
package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DefaultCurrency = "USD"
	DefaultLocale   = "en-US"
)

// Formatter binds a locale and a currency.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewFormatter parses an ISO 4217 currency code and a BCP 47 locale. Empty
// values fall back to USD and en-US.
func NewFormatter(currencyCode, locale string) (*Formatter, error) {
	if strings.TrimSpace(currencyCode) == "" {
		currencyCode = DefaultCurrency
	}
	if strings.TrimSpace(locale) == "" {
		locale = DefaultLocale
	}
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(currencyCode)))
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", currencyCode, err)
	}
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return &Formatter{printer: message.NewPrinter(tag), unit: unit}, nil
}

// Currency renders amount with the currency symbol and no decimal places.
func (f *Formatter) Currency(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	return sign + f.printer.Sprintf("%v%v", currency.Symbol(f.unit), number.Decimal(rounded.IntPart()))
}

// Percent renders a fraction (0.125) as a percentage with one decimal place.
func (f *Formatter) Percent(fraction decimal.Decimal) string {
	v, _ := fraction.Round(3).Float64()
	return f.printer.Sprint(number.Percent(v, number.MinFractionDigits(1), number.MaxFractionDigits(1)))
}
