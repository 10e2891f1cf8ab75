package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReconcilePrecedence(t *testing.T) {
	base := LineItem{ListUnitPrice: d("100"), Quantity: 1, TermMonths: 12, RevenueType: RevenueNetNew}

	state := Reconcile(base)
	require.Equal(t, DrivenByNeither, state.Driver)
	requireDecimal(t, "100", state.NetUnitPrice)
	requireDecimal(t, "0", state.Discount)

	withDiscount := base
	withDiscount.DiscountPercent = dp("0.1")
	state = Reconcile(withDiscount)
	require.Equal(t, DrivenByDiscount, state.Driver)
	requireDecimal(t, "90", state.NetUnitPrice)

	both := withDiscount
	both.NetUnitPrice = dp("75")
	state = Reconcile(both)
	require.Equal(t, DrivenByNet, state.Driver)
	requireDecimal(t, "75", state.NetUnitPrice)
	requireDecimal(t, "0.25", state.Discount)
}

func TestLastEditedWins(t *testing.T) {
	item := LineItem{ListUnitPrice: d("200"), Quantity: 2, TermMonths: 12, RevenueType: RevenueNetNew}

	item = item.WithNetPrice(d("150"))
	requireDecimal(t, "0.25", *item.DiscountPercent)

	item = item.WithDiscount(d("0.1"))
	requireDecimal(t, "180", *item.NetUnitPrice)
	requireDecimal(t, "180", Reconcile(item).NetUnitPrice)

	item = item.ClearPricing()
	require.Nil(t, item.DiscountPercent)
	require.Nil(t, item.NetUnitPrice)
}

func TestComputeLineItemAddOn(t *testing.T) {
	item := LineItem{
		ListUnitPrice:    d("100"),
		Quantity:         10,
		TermMonths:       24,
		NetUnitPrice:     dp("90"),
		RevenueType:      RevenueAddOn,
		ExistingVolume:   intp(5),
		ExistingNetPrice: dp("80"),
	}
	totals := ComputeLineItem(item)
	requireDecimal(t, "1000", totals.ListMonthly)
	requireDecimal(t, "900", totals.NetMonthly)
	requireDecimal(t, "12000", totals.ListAnnual)
	requireDecimal(t, "10800", totals.NetAnnual)
	requireDecimal(t, "24000", totals.ListTerm)
	requireDecimal(t, "21600", totals.NetTerm)
	requireDecimal(t, "10800", totals.ACV)
	requireDecimal(t, "4800", totals.ExistingAnnual)
	requireDecimal(t, "6000", totals.CommissionableACV)
}

func TestComputeLineItemIgnoresExistingForNetNew(t *testing.T) {
	item := LineItem{
		ListUnitPrice:    d("100"),
		Quantity:         1,
		TermMonths:       12,
		RevenueType:      RevenueNetNew,
		ExistingVolume:   intp(5),
		ExistingNetPrice: dp("80"),
	}
	totals := ComputeLineItem(item)
	requireDecimal(t, "0", totals.ExistingAnnual)
	requireDecimal(t, "1200", totals.CommissionableACV)
}

func TestComputeScenarioEmpty(t *testing.T) {
	totals := ComputeScenario(nil)
	for _, v := range []string{
		totals.ListMonthly.String(), totals.NetMonthly.String(), totals.ListAnnual.String(),
		totals.NetAnnual.String(), totals.ListTerm.String(), totals.NetTerm.String(),
		totals.ACV.String(), totals.CommissionableACV.String(), totals.ExistingAnnual.String(),
		totals.BlendedDiscount.String(), totals.TotalSavings.String(),
	} {
		require.Equal(t, "0", v)
	}
}

func TestComputeScenarioBlendsOnTermTotals(t *testing.T) {
	items := []LineItem{
		{ListUnitPrice: d("100"), Quantity: 10, TermMonths: 12, NetUnitPrice: dp("80"), RevenueType: RevenueNetNew},
		{ListUnitPrice: d("200"), Quantity: 5, TermMonths: 12, NetUnitPrice: dp("160"), RevenueType: RevenueNetNew},
	}
	totals := ComputeScenario(items)
	requireDecimal(t, "2000", totals.ListMonthly)
	requireDecimal(t, "1600", totals.NetMonthly)
	requireDecimal(t, "0.2", totals.BlendedDiscount)
	requireDecimal(t, totals.ListTerm.Sub(totals.NetTerm).String(), totals.TotalSavings)
	requireDecimal(t, "4800", totals.TotalSavings)
}

func TestComputeScenarioWeightsLongTerms(t *testing.T) {
	// Averaging the two line discounts would give 0.25; the 36 month line dominates.
	items := []LineItem{
		{ListUnitPrice: d("100"), Quantity: 1, TermMonths: 36, DiscountPercent: dp("0.5"), RevenueType: RevenueNetNew},
		{ListUnitPrice: d("100"), Quantity: 1, TermMonths: 12, RevenueType: RevenueNetNew},
	}
	totals := ComputeScenario(items)
	requireDecimal(t, "4800", totals.ListTerm)
	requireDecimal(t, "3000", totals.NetTerm)
	requireDecimal(t, "0.375", totals.BlendedDiscount)
}

func TestCompareScenariosKeepsOrder(t *testing.T) {
	line := LineItem{ListUnitPrice: d("10"), Quantity: 1, TermMonths: 12, RevenueType: RevenueNetNew}
	out := CompareScenarios([]Scenario{
		{Name: "B", Items: []LineItem{line}},
		{Name: "A", Items: []LineItem{line, line}},
	})
	require.Len(t, out, 2)
	require.Equal(t, "B", out[0].Name)
	requireDecimal(t, "10", out[0].Totals.NetMonthly)
	require.Equal(t, "A", out[1].Name)
	requireDecimal(t, "20", out[1].Totals.NetMonthly)
}
