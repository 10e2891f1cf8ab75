package pricing

import "github.com/shopspring/decimal"

// LineItemTotals holds every derived figure for a single line. It is
// recomputed on each read and never stored.
type LineItemTotals struct {
	ListMonthly       decimal.Decimal `json:"listMonthly"`
	NetMonthly        decimal.Decimal `json:"netMonthly"`
	ListAnnual        decimal.Decimal `json:"listAnnual"`
	NetAnnual         decimal.Decimal `json:"netAnnual"`
	ListTerm          decimal.Decimal `json:"listTerm"`
	NetTerm           decimal.Decimal `json:"netTerm"`
	ACV               decimal.Decimal `json:"acv"`
	CommissionableACV decimal.Decimal `json:"commissionableAcv"`
	ExistingAnnual    decimal.Decimal `json:"existingAnnual"`
}

// ScenarioTotals sums LineItemTotals across a scenario. BlendedDiscount and
// TotalSavings come from the summed term totals.
type ScenarioTotals struct {
	LineItemTotals
	BlendedDiscount decimal.Decimal `json:"blendedDiscount"`
	TotalSavings    decimal.Decimal `json:"totalSavings"`
}

// ComputeLineItem derives all totals of a line.
func ComputeLineItem(item LineItem) LineItemTotals {
	state := Reconcile(item)
	listMonthly := LineMonthly(item.ListUnitPrice, item.Quantity)
	netMonthly := LineMonthly(state.NetUnitPrice, item.Quantity)
	netAnnual := LineAnnual(netMonthly)

	existing := decimal.Zero
	if item.RevenueType == RevenueAddOn {
		existing = ExistingAnnual(item.ExistingNetPrice, item.ExistingVolume)
	}

	return LineItemTotals{
		ListMonthly:       listMonthly,
		NetMonthly:        netMonthly,
		ListAnnual:        LineAnnual(listMonthly),
		NetAnnual:         netAnnual,
		ListTerm:          LineTerm(listMonthly, item.TermMonths),
		NetTerm:           LineTerm(netMonthly, item.TermMonths),
		ACV:               ACV(netMonthly),
		CommissionableACV: CommissionableACV(item.RevenueType, netAnnual, existing),
		ExistingAnnual:    existing,
	}
}

// ComputeScenario aggregates a list of lines. Sums are taken first and the
// blended discount is derived from them afterwards.
func ComputeScenario(items []LineItem) ScenarioTotals {
	sum := zeroTotals()
	for _, item := range items {
		sum = sum.add(ComputeLineItem(item))
	}
	return ScenarioTotals{
		LineItemTotals:  sum,
		BlendedDiscount: BlendedDiscount(sum.ListTerm, sum.NetTerm),
		TotalSavings:    TotalSavings(sum.ListTerm, sum.NetTerm),
	}
}

// Scenario is one named alternative of a quote.
type Scenario struct {
	Name  string     `json:"name"`
	Items []LineItem `json:"items"`
}

// ScenarioSummary pairs a scenario name with its totals.
type ScenarioSummary struct {
	Name   string         `json:"name"`
	Totals ScenarioTotals `json:"totals"`
}

// CompareScenarios computes totals for each scenario, preserving input order.
func CompareScenarios(scenarios []Scenario) []ScenarioSummary {
	out := make([]ScenarioSummary, 0, len(scenarios))
	for _, s := range scenarios {
		out = append(out, ScenarioSummary{Name: s.Name, Totals: ComputeScenario(s.Items)})
	}
	return out
}

func zeroTotals() LineItemTotals {
	return LineItemTotals{
		ListMonthly:       decimal.Zero,
		NetMonthly:        decimal.Zero,
		ListAnnual:        decimal.Zero,
		NetAnnual:         decimal.Zero,
		ListTerm:          decimal.Zero,
		NetTerm:           decimal.Zero,
		ACV:               decimal.Zero,
		CommissionableACV: decimal.Zero,
		ExistingAnnual:    decimal.Zero,
	}
}

func (t LineItemTotals) add(o LineItemTotals) LineItemTotals {
	return LineItemTotals{
		ListMonthly:       t.ListMonthly.Add(o.ListMonthly),
		NetMonthly:        t.NetMonthly.Add(o.NetMonthly),
		ListAnnual:        t.ListAnnual.Add(o.ListAnnual),
		NetAnnual:         t.NetAnnual.Add(o.NetAnnual),
		ListTerm:          t.ListTerm.Add(o.ListTerm),
		NetTerm:           t.NetTerm.Add(o.NetTerm),
		ACV:               t.ACV.Add(o.ACV),
		CommissionableACV: t.CommissionableACV.Add(o.CommissionableACV),
		ExistingAnnual:    t.ExistingAnnual.Add(o.ExistingAnnual),
	}
}
