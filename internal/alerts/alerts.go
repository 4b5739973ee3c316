// Package alerts derives budget and goal alerts from aggregated data.
// Everything here is a pure function over query results; alerts are never
// persisted, so they cannot drift from the live transaction data.
package alerts

import "fintrack/internal/core"

// Source says which evaluator produced an alert.
type Source string

// Level classifies how urgent an alert is.
type Level string

const (
	SourceBudget Source = "budget"
	SourceGoal   Source = "goal"

	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
	LevelSuccess Level = "success"
)

// BudgetAlert reports a budget whose spend crossed a threshold this period.
type BudgetAlert struct {
	ID        int64      `json:"id"`
	Source    Source     `json:"source"`
	Level     Level      `json:"level"`
	Category  string     `json:"category"`
	Month     int        `json:"month"`
	Year      int        `json:"year"`
	Limit     core.Money `json:"limit"`
	Spent     core.Money `json:"spent"`
	Remaining core.Money `json:"remaining"`
	Message   string     `json:"message"`
}

// GoalAlert reports a goal near its deadline, near completion, or newly
// across its target.
type GoalAlert struct {
	ID            int64      `json:"id"`
	Source        Source     `json:"source"`
	Level         Level      `json:"level"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	TargetAmount  core.Money `json:"targetAmount"`
	CurrentAmount core.Money `json:"currentAmount"`
	Progress      float64    `json:"progress"`
	DaysLeft      *int       `json:"daysLeft"`
}

// Feed is the combined alert response for one user and period. Budget and
// goal alerts are independent result sets; they merge only here.
type Feed struct {
	Month   int           `json:"month"`
	Year    int           `json:"year"`
	Budgets []BudgetAlert `json:"budgets"`
	Goals   []GoalAlert   `json:"goals"`
}

// BudgetProgress is the dashboard variant: one row per budget no matter
// how little was spent.
type BudgetProgress struct {
	Category   string     `json:"category"`
	Budget     core.Money `json:"budget"`
	Spent      core.Money `json:"spent"`
	Percentage int        `json:"percentage"`
}
