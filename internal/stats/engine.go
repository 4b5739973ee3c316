// Package stats computes period aggregates over transaction data: totals,
// per-category sums and monthly breakdowns. All methods are read-only and
// carry no caching, so repeated calls over unchanged data are identical.
package stats

import (
	"context"
	"fmt"
	"sort"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Scope selects the date range of a category-usage query.
type Scope string

const (
	ScopeMonth Scope = "month"
	ScopeYear  Scope = "year"
	ScopeAll   Scope = "all"
)

// Summary is the income/expense/balance triple for one month.
type Summary struct {
	Month        int        `json:"month"`
	Year         int        `json:"year"`
	TotalIncome  core.Money `json:"totalIncome"`
	TotalExpense core.Money `json:"totalExpense"`
	Balance      core.Money `json:"balance"`
}

// ByCategory is the per-category sum of one transaction type for a month.
type ByCategory struct {
	Month int                   `json:"month"`
	Year  int                   `json:"year"`
	Type  core.TransactionType  `json:"type"`
	Data  []store.CategoryTotal `json:"data"`
}

// MonthTotals is one month's income and expense sums.
type MonthTotals struct {
	Month        int        `json:"month"`
	TotalIncome  core.Money `json:"totalIncome"`
	TotalExpense core.Money `json:"totalExpense"`
}

// YearBreakdown is the per-month series for a year plus year totals. Data
// is sparse: months without activity are omitted, sorted ascending.
type YearBreakdown struct {
	Year         int           `json:"year"`
	Data         []MonthTotals `json:"data"`
	TotalIncome  core.Money    `json:"totalIncome"`
	TotalExpense core.Money    `json:"totalExpense"`
}

// CategoryUsageRow pivots one category's income and expense sums.
type CategoryUsageRow struct {
	Category     string     `json:"category"`
	TotalIncome  core.Money `json:"totalIncome"`
	TotalExpense core.Money `json:"totalExpense"`
}

// CategoryUsage is the pivoted per-category report for a scope.
type CategoryUsage struct {
	Scope Scope              `json:"scope"`
	Month int                `json:"month,omitempty"`
	Year  int                `json:"year,omitempty"`
	Data  []CategoryUsageRow `json:"data"`
}

// Reader is the slice of the store the engine reads from.
type Reader interface {
	store.TransactionStore
	store.StatsReader
}

// Engine answers aggregate queries by combining store scans and grouped
// sums.
type Engine struct {
	store Reader
	clock core.Clock
}

// NewEngine builds an aggregation engine over the given store.
func NewEngine(st Reader, clock core.Clock) *Engine {
	return &Engine{store: st, clock: clock}
}

// Summary totals income and expense for the resolved month. It folds over
// the raw transactions rather than a stored aggregate, trading O(n) per
// call for guaranteed consistency with live data.
func (e *Engine) Summary(ctx context.Context, userID int64, month, year int) (*Summary, error) {
	month, year, err := core.ResolveMonth(e.clock, month, year)
	if err != nil {
		return nil, err
	}
	period := core.MonthRange(year, month)

	txns, _, err := e.store.ListTransactions(ctx, userID, store.TransactionFilter{Period: &period})
	if err != nil {
		return nil, fmt.Errorf("list transactions for summary: %w", err)
	}

	s := &Summary{Month: month, Year: year}
	for _, t := range txns {
		switch t.Type {
		case core.Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case core.Expense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s, nil
}

// ByCategory sums one transaction type per category for the resolved
// month. Categories without matching transactions are absent.
func (e *Engine) ByCategory(ctx context.Context, userID int64, month, year int, typ core.TransactionType) (*ByCategory, error) {
	if !typ.Valid() {
		return nil, core.Invalid("type", "must be income or expense")
	}
	month, year, err := core.ResolveMonth(e.clock, month, year)
	if err != nil {
		return nil, err
	}

	totals, err := e.store.SumByCategory(ctx, userID, typ, core.MonthRange(year, month))
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}
	if totals == nil {
		totals = []store.CategoryTotal{}
	}
	return &ByCategory{Month: month, Year: year, Type: typ, Data: totals}, nil
}

// Monthly returns the sparse per-month breakdown for the resolved year,
// sorted by month ascending, plus year totals.
func (e *Engine) Monthly(ctx context.Context, userID int64, year int) (*YearBreakdown, error) {
	year = core.ResolveYear(e.clock, year)

	rows, err := e.store.SumByMonthAndType(ctx, userID, year)
	if err != nil {
		return nil, fmt.Errorf("sum by month: %w", err)
	}

	byMonth := make(map[int]*MonthTotals)
	for _, r := range rows {
		mt, ok := byMonth[r.Month]
		if !ok {
			mt = &MonthTotals{Month: r.Month}
			byMonth[r.Month] = mt
		}
		switch r.Type {
		case core.Income:
			mt.TotalIncome = mt.TotalIncome.Add(core.Money{Cents: r.TotalCents})
		case core.Expense:
			mt.TotalExpense = mt.TotalExpense.Add(core.Money{Cents: r.TotalCents})
		}
	}

	out := &YearBreakdown{Year: year, Data: make([]MonthTotals, 0, len(byMonth))}
	for _, mt := range byMonth {
		out.Data = append(out.Data, *mt)
	}
	sort.Slice(out.Data, func(i, j int) bool { return out.Data[i].Month < out.Data[j].Month })

	for _, mt := range out.Data {
		out.TotalIncome = out.TotalIncome.Add(mt.TotalIncome)
		out.TotalExpense = out.TotalExpense.Add(mt.TotalExpense)
	}
	return out, nil
}

// DensifyMonthly expands a sparse month series into exactly twelve rows,
// filling missing months with zeros. Kept in the engine's contract so
// consumers never reimplement the gap filling.
func DensifyMonthly(sparse []MonthTotals) []MonthTotals {
	dense := make([]MonthTotals, 12)
	for i := range dense {
		dense[i] = MonthTotals{Month: i + 1}
	}
	for _, mt := range sparse {
		if mt.Month >= 1 && mt.Month <= 12 {
			dense[mt.Month-1] = mt
		}
	}
	return dense
}

// CategoryUsage pivots (category, type) sums into per-category income and
// expense columns for the requested scope, sorted by category name.
func (e *Engine) CategoryUsage(ctx context.Context, userID int64, scope Scope, month, year int) (*CategoryUsage, error) {
	year = core.ResolveYear(e.clock, year)

	var period *core.Period
	result := &CategoryUsage{Scope: scope, Year: year}
	switch scope {
	case ScopeMonth:
		var err error
		month, year, err = core.ResolveMonth(e.clock, month, year)
		if err != nil {
			return nil, err
		}
		p := core.MonthRange(year, month)
		period = &p
		result.Month = month
		result.Year = year
	case ScopeYear:
		p := core.YearRange(year)
		period = &p
	case ScopeAll:
		// no date filter
	default:
		return nil, core.Invalid("scope", "must be month, year or all")
	}

	rows, err := e.store.SumByCategoryAndType(ctx, userID, period)
	if err != nil {
		return nil, fmt.Errorf("sum by category and type: %w", err)
	}

	byCategory := make(map[string]*CategoryUsageRow)
	for _, r := range rows {
		row, ok := byCategory[r.Category]
		if !ok {
			row = &CategoryUsageRow{Category: r.Category}
			byCategory[r.Category] = row
		}
		switch r.Type {
		case core.Income:
			row.TotalIncome = row.TotalIncome.Add(core.Money{Cents: r.TotalCents})
		case core.Expense:
			row.TotalExpense = row.TotalExpense.Add(core.Money{Cents: r.TotalCents})
		}
	}

	result.Data = make([]CategoryUsageRow, 0, len(byCategory))
	for _, row := range byCategory {
		result.Data = append(result.Data, *row)
	}
	sort.Slice(result.Data, func(i, j int) bool {
		return result.Data[i].Category < result.Data[j].Category
	})
	return result, nil
}
