package pricing

import "github.com/shopspring/decimal"

// RevenueType classifies a line as new business or an expansion of an
// existing subscription.
type RevenueType string

const (
	RevenueNetNew RevenueType = "net_new"
	RevenueAddOn  RevenueType = "add_on"
)

// Valid reports whether the revenue type is one of the known values.
func (t RevenueType) Valid() bool {
	return t == RevenueNetNew || t == RevenueAddOn
}

// PriceDriver records which of the two pricing views determines a line's net price.
type PriceDriver string

const (
	DrivenByNeither  PriceDriver = "neither"
	DrivenByDiscount PriceDriver = "discount"
	DrivenByNet      PriceDriver = "net"
)

// LineItem is one row of a scenario quote. Prices are monthly per unit.
// DiscountPercent and NetUnitPrice are two views of the same quantity; read
// them through Reconcile rather than directly.
type LineItem struct {
	ProductName        string           `json:"productName,omitempty"`
	ListUnitPrice      decimal.Decimal  `json:"listUnitPrice"`
	Quantity           int              `json:"quantity"`
	TermMonths         int              `json:"termMonths"`
	DiscountPercent    *decimal.Decimal `json:"discountPercent,omitempty"`
	NetUnitPrice       *decimal.Decimal `json:"netUnitPrice,omitempty"`
	RevenueType        RevenueType      `json:"revenueType"`
	ExistingVolume     *int             `json:"existingVolume,omitempty"`
	ExistingNetPrice   *decimal.Decimal `json:"existingNetPrice,omitempty"`
	ExistingTermMonths *int             `json:"existingTermMonths,omitempty"`
}

// PricingState is the reconciled view of a line's pricing fields.
type PricingState struct {
	Driver       PriceDriver
	NetUnitPrice decimal.Decimal
	Discount     decimal.Decimal
}

// Reconcile resolves the effective net unit price of a line. A stored net
// price wins; a discount is used only when no net price is present; with
// neither the line is sold at list.
func Reconcile(item LineItem) PricingState {
	list := nonNegative(item.ListUnitPrice)
	switch {
	case item.NetUnitPrice != nil:
		net := nonNegative(*item.NetUnitPrice)
		return PricingState{Driver: DrivenByNet, NetUnitPrice: net, Discount: DiscountFromNet(list, net)}
	case item.DiscountPercent != nil:
		net := NetFromDiscount(list, *item.DiscountPercent)
		return PricingState{Driver: DrivenByDiscount, NetUnitPrice: net, Discount: DiscountFromNet(list, net)}
	default:
		return PricingState{Driver: DrivenByNeither, NetUnitPrice: list, Discount: decimal.Zero}
	}
}

// WithDiscount returns a copy of the line where the discount was the last
// edited field. The net price is rewritten to match.
func (item LineItem) WithDiscount(discount decimal.Decimal) LineItem {
	net := NetFromDiscount(item.ListUnitPrice, discount)
	item.DiscountPercent = &discount
	item.NetUnitPrice = &net
	return item
}

// WithNetPrice returns a copy of the line where the net price was the last
// edited field. The discount is rewritten to match.
func (item LineItem) WithNetPrice(net decimal.Decimal) LineItem {
	discount := DiscountFromNet(item.ListUnitPrice, net)
	item.NetUnitPrice = &net
	item.DiscountPercent = &discount
	return item
}

// ClearPricing drops both pricing views so the line is sold at list.
func (item LineItem) ClearPricing() LineItem {
	item.DiscountPercent = nil
	item.NetUnitPrice = nil
	return item
}
