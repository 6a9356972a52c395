// Package pipeline derives progress figures from the ledger and assembles
// the dashboard view model rendered by every surface.
package pipeline

import (
	"github.com/shopspring/decimal"
	"github.com/theirongolddev/nakop/internal/model"
)

// FallbackMonths is the estimate used when the monthly plan is not positive.
const FallbackMonths = 1

var hundred = decimal.NewFromInt(100)

// Recalculate derives progress toward goal from the per-period values and
// the starting capital. It is pure: identical inputs give identical output.
func Recalculate(values []decimal.Decimal, startingCapital decimal.Decimal, goal model.Goal) model.ProgressSnapshot {
	accumulated := decimal.Sum(startingCapital, values...)

	remaining := goal.Target.Sub(accumulated)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	months := int64(FallbackMonths)
	if goal.MonthlyPlan.IsPositive() {
		q, _ := remaining.QuoRem(goal.MonthlyPlan, 0)
		months = q.IntPart()
	}

	percent := decimal.Zero
	if goal.Target.IsPositive() {
		percent = accumulated.Div(goal.Target).Mul(hundred)
	}

	return model.ProgressSnapshot{
		Accumulated:     accumulated,
		Remaining:       remaining,
		EstimatedMonths: months,
		EstimatedFinish: model.AddPeriods(goal.Start, int(months)),
		PercentComplete: percent,
	}
}
