// Package pricing derives every monetary figure of a quote line and of a
// whole scenario from the raw pricing fields captured on the quote.
//
// All functions are total: invalid ranges clamp to zero instead of failing,
// and none of them mutate their inputs.
package pricing

import "github.com/shopspring/decimal"

// MonthsPerYear is the fixed annualisation factor used for run-rate and ACV.
const MonthsPerYear = 12

var (
	one    = decimal.NewFromInt(1)
	twelve = decimal.NewFromInt(MonthsPerYear)
)

// NetFromDiscount returns listPrice * (1 - discount). Out of range inputs
// (negative list price, discount outside [0,1]) yield zero.
func NetFromDiscount(listPrice, discount decimal.Decimal) decimal.Decimal {
	if listPrice.IsNegative() || discount.IsNegative() || discount.GreaterThan(one) {
		return decimal.Zero
	}
	return listPrice.Mul(one.Sub(discount))
}

// DiscountFromNet returns the discount fraction implied by a net price.
func DiscountFromNet(listPrice, netPrice decimal.Decimal) decimal.Decimal {
	if !listPrice.IsPositive() || netPrice.IsNegative() || netPrice.GreaterThan(listPrice) {
		return decimal.Zero
	}
	return listPrice.Sub(netPrice).Div(listPrice)
}

// LineMonthly is the monthly value of a line: unit price times quantity.
func LineMonthly(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	if unitPrice.IsNegative() || quantity <= 0 {
		return decimal.Zero
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// LineAnnual is the yearly run-rate of a monthly value, always twelve months
// regardless of the contract term.
func LineAnnual(monthly decimal.Decimal) decimal.Decimal {
	if monthly.IsNegative() {
		return decimal.Zero
	}
	return monthly.Mul(twelve)
}

// LineTerm is the value of a monthly amount over the whole contract term.
func LineTerm(monthly decimal.Decimal, termMonths int) decimal.Decimal {
	if monthly.IsNegative() || termMonths <= 0 {
		return decimal.Zero
	}
	return monthly.Mul(decimal.NewFromInt(int64(termMonths)))
}

// ACV annualises a net monthly value to exactly twelve months. The contract
// term never enters into it.
func ACV(netMonthly decimal.Decimal) decimal.Decimal {
	if netMonthly.IsNegative() {
		return decimal.Zero
	}
	return netMonthly.Mul(twelve)
}

// ExistingAnnual is the yearly value of the seats a customer already owns.
func ExistingAnnual(existingNetPrice *decimal.Decimal, existingVolume *int) decimal.Decimal {
	if existingNetPrice == nil || existingVolume == nil {
		return decimal.Zero
	}
	if existingNetPrice.IsNegative() || *existingVolume < 0 {
		return decimal.Zero
	}
	return existingNetPrice.Mul(decimal.NewFromInt(int64(*existingVolume))).Mul(twelve)
}

// CommissionableACV returns the part of the annual value that counts towards
// commission. Add-ons only earn on the increment above the existing baseline.
func CommissionableACV(revenueType RevenueType, netAnnual, existingAnnual decimal.Decimal) decimal.Decimal {
	value := netAnnual
	if revenueType == RevenueAddOn {
		value = netAnnual.Sub(existingAnnual)
	}
	return nonNegative(value)
}

// BlendedDiscount is the discount implied by aggregate term totals. It is
// not an average of per-line discounts.
func BlendedDiscount(termList, termNet decimal.Decimal) decimal.Decimal {
	if !termList.IsPositive() {
		return decimal.Zero
	}
	return termList.Sub(termNet).Div(termList)
}

// TotalSavings is the term value given away, floored at zero.
func TotalSavings(termList, termNet decimal.Decimal) decimal.Decimal {
	return nonNegative(termList.Sub(termNet))
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
