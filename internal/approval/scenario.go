package approval

import (
	"github.com/shopspring/decimal"

	"github.com/whyyagswhy/dealcalc-sub000/internal/pricing"
)

// LineResult is the approval outcome of one scenario line.
type LineResult struct {
	Index       int             `json:"index"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Discount    decimal.Decimal `json:"discount"`
	Result
}

// ScenarioResult summarises approval across a scenario. Level is the highest
// tier among matched lines; unmatched lines are counted but do not raise it.
// Level is N/A when no line matched a row. An empty scenario is L0.
type ScenarioResult struct {
	Lines             []LineResult `json:"lines"`
	Level             Level        `json:"level"`
	IsInstantApproval bool         `json:"isInstantApproval"`
	Unmatched         int          `json:"unmatched"`
}

// EvaluateScenario resolves every line using its reconciled discount. The
// scenario is instant only when every line matched a row and no line needs
// escalation.
func EvaluateScenario(thresholds []DiscountThreshold, items []pricing.LineItem) ScenarioResult {
	out := ScenarioResult{Lines: make([]LineResult, 0, len(items)), Level: LevelL0}
	for i, item := range items {
		state := pricing.Reconcile(item)
		var discount *decimal.Decimal
		if state.Driver != pricing.DrivenByNeither {
			discount = &state.Discount
		}
		res := Evaluate(thresholds, item.ProductName, item.Quantity, discount)
		out.Lines = append(out.Lines, LineResult{
			Index:       i,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Discount:    state.Discount,
			Result:      res,
		})
		if res.Level == LevelNA {
			out.Unmatched++
			continue
		}
		if res.Level.Rank() > out.Level.Rank() {
			out.Level = res.Level
		}
	}
	if len(items) > 0 && out.Unmatched == len(items) {
		out.Level = LevelNA
	}
	out.IsInstantApproval = out.Unmatched == 0 && out.Level.IsInstant()
	return out
}
