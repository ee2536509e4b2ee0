package strategy

import "TradeSentinel/internal/calculator"

// ProfitPlan is the profit-management decision for one price.
type ProfitPlan struct {
	Valid               bool // false when risk is not positive or an input is undefined
	Risk                float64
	RMultiple           float64
	MoveToBreakeven     bool
	PartialProfitTarget *float64
}

// ManageProfit measures the gain at price in units of initial risk.
// At 1R the stop moves to breakeven; below 2R the 2R level is the partial
// profit target.
func ManageProfit(entry, initialStop, price float64) ProfitPlan {
	risk := entry - initialStop
	if !calculator.Defined(entry, initialStop, price) || risk <= 0 {
		return ProfitPlan{}
	}
	plan := ProfitPlan{
		Valid:     true,
		Risk:      risk,
		RMultiple: (price - entry) / risk,
	}
	plan.MoveToBreakeven = plan.RMultiple >= 1
	if plan.RMultiple < 2 {
		target := entry + 2*risk
		plan.PartialProfitTarget = &target
	}
	return plan
}
