package quote

import (
	"reflect"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/whyyagswhy/dealcalc-sub000/internal/common"
	"github.com/whyyagswhy/dealcalc-sub000/internal/pricing"
)

type lineItemRequest struct {
	ProductName        string           `json:"productName" validate:"max=200"`
	ListUnitPrice      decimal.Decimal  `json:"listUnitPrice" validate:"gte=0"`
	Quantity           int              `json:"quantity" validate:"gte=0"`
	TermMonths         int              `json:"termMonths" validate:"gte=1,lte=120"`
	DiscountPercent    *decimal.Decimal `json:"discountPercent" validate:"omitempty,gte=0,lte=1"`
	NetUnitPrice       *decimal.Decimal `json:"netUnitPrice" validate:"omitempty,gte=0"`
	RevenueType        string           `json:"revenueType" validate:"omitempty,oneof=net_new add_on"`
	ExistingVolume     *int             `json:"existingVolume" validate:"omitempty,gte=0"`
	ExistingNetPrice   *decimal.Decimal `json:"existingNetPrice" validate:"omitempty,gte=0"`
	ExistingTermMonths *int             `json:"existingTermMonths" validate:"omitempty,gte=1"`
	LastEdited         string           `json:"lastEdited" validate:"omitempty,oneof=discount net list"`
}

func (r lineItemRequest) toLineItem() pricing.LineItem {
	revenue := pricing.RevenueType(r.RevenueType)
	if !revenue.Valid() {
		revenue = pricing.RevenueNetNew
	}
	item := pricing.LineItem{
		ProductName:        r.ProductName,
		ListUnitPrice:      r.ListUnitPrice,
		Quantity:           r.Quantity,
		TermMonths:         r.TermMonths,
		DiscountPercent:    r.DiscountPercent,
		NetUnitPrice:       r.NetUnitPrice,
		RevenueType:        revenue,
		ExistingVolume:     r.ExistingVolume,
		ExistingNetPrice:   r.ExistingNetPrice,
		ExistingTermMonths: r.ExistingTermMonths,
	}
	switch r.LastEdited {
	case "discount":
		if r.DiscountPercent != nil {
			item = item.WithDiscount(*r.DiscountPercent)
		}
	case "net":
		if r.NetUnitPrice != nil {
			item = item.WithNetPrice(*r.NetUnitPrice)
		}
	case "list":
		item = item.ClearPricing()
	}
	return item
}

type scenarioRequest struct {
	Name  string            `json:"name" validate:"required,max=100"`
	Items []lineItemRequest `json:"items" validate:"max=500,dive"`
}

type totalsRequest struct {
	Items []lineItemRequest `json:"items" validate:"max=500,dive"`
}

type approvalRequest struct {
	ProductName string            `json:"productName" validate:"required_without=Items,max=200"`
	Quantity    int               `json:"quantity" validate:"gte=0"`
	Discount    *decimal.Decimal  `json:"discountPercent" validate:"omitempty,gte=0,lte=1"`
	Items       []lineItemRequest `json:"items" validate:"omitempty,max=500,dive"`
}

type compareRequest struct {
	Scenarios []scenarioRequest `json:"scenarios" validate:"required,min=1,max=10,dive"`
}

func toLineItems(in []lineItemRequest) []pricing.LineItem {
	out := make([]pricing.LineItem, 0, len(in))
	for _, r := range in {
		out = append(out, r.toLineItem())
	}
	return out
}

// newValidator extends the shared validator so numeric rules apply to decimals.
func newValidator() *validator.Validate {
	v := common.NewValidator()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}
