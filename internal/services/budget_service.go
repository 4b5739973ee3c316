package services

import (
	"context"

	"fintrack/internal/alerts"
	"fintrack/internal/core"
	"fintrack/internal/store"
)

// BudgetService manages monthly category budgets and their progress.
type BudgetService struct {
	budgets store.BudgetStore
	stats   store.StatsReader
	clock   core.Clock
}

func NewBudgetService(budgets store.BudgetStore, stats store.StatsReader, clock core.Clock) *BudgetService {
	return &BudgetService{budgets: budgets, stats: stats, clock: clock}
}

// Upsert creates a budget or replaces the amount of the existing one for
// the same (category, month, year).
func (s *BudgetService) Upsert(ctx context.Context, b *core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	return s.budgets.UpsertBudget(ctx, b)
}

// List returns the user's budgets for the given period, defaulting missing
// month and year to the current ones.
func (s *BudgetService) List(ctx context.Context, userID int64, month, year int) ([]core.Budget, error) {
	month, year, err := core.ResolveMonth(s.clock, month, year)
	if err != nil {
		return nil, err
	}
	return s.budgets.ListBudgets(ctx, userID, month, year)
}

// Delete removes a budget owned by the user.
func (s *BudgetService) Delete(ctx context.Context, id, userID int64) error {
	return s.budgets.DeleteBudget(ctx, id, userID)
}

// Progress reports, for every budget in the period, the spent amount and
// the percentage of the limit used. Unlike the alert feed, the period is
// explicit: callers must say which month they are charting.
func (s *BudgetService) Progress(ctx context.Context, userID int64, month, year int) ([]alerts.BudgetProgress, error) {
	if month < 1 || month > 12 {
		return nil, core.Invalid("month", "required, must be between 1 and 12")
	}
	if year < 1 {
		return nil, core.Invalid("year", "required")
	}

	budgets, err := s.budgets.ListBudgets(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}

	spent, err := s.spentByCategory(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}

	return alerts.Progress(budgets, spent), nil
}

func (s *BudgetService) spentByCategory(ctx context.Context, userID int64, month, year int) (map[string]int64, error) {
	period := core.MonthRange(year, month)
	totals, err := s.stats.SumByCategory(ctx, userID, core.Expense, period)
	if err != nil {
		return nil, err
	}
	spent := make(map[string]int64, len(totals))
	for _, t := range totals {
		spent[t.Category] = t.Total.Cents
	}
	return spent, nil
}
