package quote

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/whyyagswhy/dealcalc-sub000/internal/approval"
	"github.com/whyyagswhy/dealcalc-sub000/internal/obs"
	"github.com/whyyagswhy/dealcalc-sub000/internal/pricing"
)

// DisplayTotals holds locale-formatted scenario figures.
type DisplayTotals struct {
	ListTerm          string `json:"listTerm"`
	NetTerm           string `json:"netTerm"`
	ACV               string `json:"acv"`
	CommissionableACV string `json:"commissionableAcv"`
	TotalSavings      string `json:"totalSavings"`
	BlendedDiscount   string `json:"blendedDiscount"`
}

// TotalsResult is the priced view of one scenario.
type TotalsResult struct {
	Lines   []pricing.LineItemTotals `json:"lines"`
	Totals  pricing.ScenarioTotals   `json:"totals"`
	Display DisplayTotals            `json:"display"`
}

// ApprovalRequest asks for the tier of one product at a discount.
type ApprovalRequest struct {
	ProductName string
	Quantity    int
	Discount    *decimal.Decimal
}

// ApprovalResult decorates the resolver output with display strings.
type ApprovalResult struct {
	approval.Result
	MaxInstantDiscountDisplay *string `json:"maxInstantDiscountDisplay"`
}

// ScenarioComparison is one scenario's totals and approval side by side.
type ScenarioComparison struct {
	Name     string                  `json:"name"`
	Totals   pricing.ScenarioTotals  `json:"totals"`
	Display  DisplayTotals           `json:"display"`
	Approval approval.ScenarioResult `json:"approval"`
}

// Totals prices a scenario. It needs no reference data.
func (s *Service) Totals(items []pricing.LineItem) TotalsResult {
	lines := make([]pricing.LineItemTotals, 0, len(items))
	for _, item := range items {
		lines = append(lines, pricing.ComputeLineItem(item))
	}
	totals := pricing.ComputeScenario(items)
	return TotalsResult{Lines: lines, Totals: totals, Display: s.display(totals)}
}

// Approval resolves the tier for one product.
func (s *Service) Approval(ctx context.Context, req ApprovalRequest) (ApprovalResult, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return ApprovalResult{}, err
	}
	res := approval.Evaluate(snap.Thresholds, req.ProductName, req.Quantity, req.Discount)
	obs.IncCounter(obs.ApprovalResolutionsTotal, string(res.Level))
	if res.Level == approval.LevelNA {
		s.logger.Debug().Str("product", req.ProductName).Int("quantity", req.Quantity).Msg("no threshold row")
	}
	out := ApprovalResult{Result: res}
	if limit, ok := approval.MaxInstantDiscount(res); ok {
		display := s.formatter.Percent(*limit)
		out.MaxInstantDiscountDisplay = &display
	}
	return out, nil
}

// ScenarioApproval resolves every line of a scenario.
func (s *Service) ScenarioApproval(ctx context.Context, items []pricing.LineItem) (approval.ScenarioResult, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return approval.ScenarioResult{}, err
	}
	res := approval.EvaluateScenario(snap.Thresholds, items)
	for _, line := range res.Lines {
		obs.IncCounter(obs.ApprovalResolutionsTotal, string(line.Level))
	}
	return res, nil
}

// AppliedScenario is a scenario after every matched line was moved to its
// largest instant-approval discount.
type AppliedScenario struct {
	Items    []pricing.LineItem      `json:"items"`
	Totals   TotalsResult            `json:"totals"`
	Approval approval.ScenarioResult `json:"approval"`
}

// ApplyMaxInstantDiscount sets each matched line's discount to its row's
// level 4 limit. Lines with no governing row keep their pricing.
func (s *Service) ApplyMaxInstantDiscount(ctx context.Context, items []pricing.LineItem) (AppliedScenario, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return AppliedScenario{}, err
	}
	applied := make([]pricing.LineItem, 0, len(items))
	for _, item := range items {
		res := approval.Evaluate(snap.Thresholds, item.ProductName, item.Quantity, nil)
		if limit, ok := approval.MaxInstantDiscount(res); ok {
			item = item.WithDiscount(*limit)
		}
		applied = append(applied, item)
	}
	return AppliedScenario{
		Items:    applied,
		Totals:   s.Totals(applied),
		Approval: approval.EvaluateScenario(snap.Thresholds, applied),
	}, nil
}

// Compare prices and resolves several scenarios, preserving input order.
func (s *Service) Compare(ctx context.Context, scenarios []pricing.Scenario) ([]ScenarioComparison, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	summaries := pricing.CompareScenarios(scenarios)
	out := make([]ScenarioComparison, 0, len(scenarios))
	for i, sum := range summaries {
		out = append(out, ScenarioComparison{
			Name:     sum.Name,
			Totals:   sum.Totals,
			Display:  s.display(sum.Totals),
			Approval: approval.EvaluateScenario(snap.Thresholds, scenarios[i].Items),
		})
	}
	return out, nil
}

func (s *Service) display(t pricing.ScenarioTotals) DisplayTotals {
	f := s.formatter
	return DisplayTotals{
		ListTerm:          f.Currency(t.ListTerm),
		NetTerm:           f.Currency(t.NetTerm),
		ACV:               f.Currency(t.ACV),
		CommissionableACV: f.Currency(t.CommissionableACV),
		TotalSavings:      f.Currency(t.TotalSavings),
		BlendedDiscount:   f.Percent(t.BlendedDiscount),
	}
}
