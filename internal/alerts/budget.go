package alerts

import (
	"fmt"
	"math"

	"fintrack/internal/core"
)

// Budget classification thresholds as spend/limit ratios.
const (
	budgetDangerRatio  = 1.0
	budgetWarningRatio = 0.8
)

// EvaluateBudgets compares each budget against the per-category expense
// totals for the same period. Budgets with a non-positive limit never
// alert. First matching rule wins: exceeded beats approaching.
func EvaluateBudgets(budgets []core.Budget, spentByCategory map[string]int64, month, year int) []BudgetAlert {
	out := make([]BudgetAlert, 0, len(budgets))
	for _, b := range budgets {
		if b.Amount.Cents <= 0 {
			continue
		}

		spent := core.Money{Cents: spentByCategory[b.Category]}
		ratio := float64(spent.Cents) / float64(b.Amount.Cents)

		var level Level
		var message string
		switch {
		case ratio >= budgetDangerRatio:
			level = LevelDanger
			message = fmt.Sprintf("Your %q budget (%s) has been exceeded. Spent %s.",
				b.Category, b.Amount, spent)
		case ratio >= budgetWarningRatio:
			level = LevelWarning
			message = fmt.Sprintf("You have used %d%% of your %q budget this month.",
				roundPercent(ratio), b.Category)
		default:
			continue
		}

		remaining := b.Amount.Sub(spent)
		if remaining.IsNegative() {
			remaining = core.Money{}
		}

		out = append(out, BudgetAlert{
			ID:        b.ID,
			Source:    SourceBudget,
			Level:     level,
			Category:  b.Category,
			Month:     month,
			Year:      year,
			Limit:     b.Amount,
			Spent:     spent,
			Remaining: remaining,
			Message:   message,
		})
	}
	return out
}

// Progress returns one row per budget regardless of thresholds, for the
// dashboard. Percentage is rounded to the nearest integer and zero when
// the limit is non-positive.
func Progress(budgets []core.Budget, spentByCategory map[string]int64) []BudgetProgress {
	out := make([]BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		spent := core.Money{Cents: spentByCategory[b.Category]}
		pct := 0
		if b.Amount.Cents > 0 {
			pct = roundPercent(float64(spent.Cents) / float64(b.Amount.Cents))
		}
		out = append(out, BudgetProgress{
			Category:   b.Category,
			Budget:     b.Amount,
			Spent:      spent,
			Percentage: pct,
		})
	}
	return out
}

func roundPercent(ratio float64) int {
	return int(math.Round(ratio * 100))
}
