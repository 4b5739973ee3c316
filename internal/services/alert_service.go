package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/alerts"
	"fintrack/internal/core"
	"fintrack/internal/store"
)

// AlertService composes the combined alert feed for a period: budget
// threshold alerts for the month plus goal progress and deadline alerts.
type AlertService struct {
	budgets store.BudgetStore
	goals   store.GoalStore
	stats   store.StatsReader
	clock   core.Clock
}

func NewAlertService(budgets store.BudgetStore, goals store.GoalStore, stats store.StatsReader, clock core.Clock) *AlertService {
	return &AlertService{budgets: budgets, goals: goals, stats: stats, clock: clock}
}

// Feed evaluates all of the user's budgets and goals against current data.
// Completed goals go through the evaluator too; it decides what they still
// warrant. The budget and goal sides read independent tables, so they are
// fetched concurrently.
func (s *AlertService) Feed(ctx context.Context, userID int64, month, year int) (*alerts.Feed, error) {
	month, year, err := core.ResolveMonth(s.clock, month, year)
	if err != nil {
		return nil, err
	}

	var (
		budgets []core.Budget
		spent   map[string]int64
		goals   []core.Goal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budgets, err = s.budgets.ListBudgets(gctx, userID, month, year)
		if err != nil {
			return err
		}
		spent, err = s.spentByCategory(gctx, userID, month, year)
		return err
	})
	g.Go(func() error {
		var err error
		goals, err = s.goals.ListGoals(gctx, userID, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	feed := &alerts.Feed{
		Month:   month,
		Year:    year,
		Budgets: alerts.EvaluateBudgets(budgets, spent, month, year),
		Goals:   alerts.EvaluateGoals(goals, s.clock.Now()),
	}
	return feed, nil
}

func (s *AlertService) spentByCategory(ctx context.Context, userID int64, month, year int) (map[string]int64, error) {
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
