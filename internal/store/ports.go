// Package store defines the persistence ports the rest of the application
// talks to. The SQLite implementation lives in the sqlite subpackage; tests
// substitute fakes.
package store

import (
	"context"

	"fintrack/internal/core"
)

// TransactionFilter narrows a transaction listing. Zero values mean "no
// filter"; a Limit of zero or less disables pagination.
type TransactionFilter struct {
	Type     core.TransactionType
	Category string
	Period   *core.Period
	Page     int
	Limit    int
	SortAsc  bool
}

// CategoryTotal is a grouped sum of one transaction type per category.
type CategoryTotal struct {
	Category string     `json:"category"`
	Total    core.Money `json:"totalAmount"`
}

// GroupTotal is a raw (category, type) grouped sum; the stats engine
// pivots these into per-category income/expense records.
type GroupTotal struct {
	Category   string
	Type       core.TransactionType
	TotalCents int64
}

// MonthGroupTotal is a raw (month, type) grouped sum for one year.
type MonthGroupTotal struct {
	Month      int
	Type       core.TransactionType
	TotalCents int64
}

// TransactionStore persists transactions and recurring templates.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t *core.Transaction) error
	GetTransaction(ctx context.Context, id, userID int64) (*core.Transaction, error)
	UpdateTransaction(ctx context.Context, t *core.Transaction) error
	DeleteTransaction(ctx context.Context, id, userID int64) error
	// ListTransactions returns the page plus the unpaginated match count.
	ListTransactions(ctx context.Context, userID int64, f TransactionFilter) ([]core.Transaction, int, error)

	// ListRecurringTemplates returns recurring transactions across all
	// users, for the recurring worker.
	ListRecurringTemplates(ctx context.Context) ([]core.Transaction, error)
	SetLastApplied(ctx context.Context, id int64, day core.Date) error
}

// StatsReader exposes the grouped-sum aggregation queries. Groups with no
// transactions are absent from every result, never zero-valued.
type StatsReader interface {
	// SumByCategory sums amounts of one type per category within the
	// period, ordered by category name ascending.
	SumByCategory(ctx context.Context, userID int64, typ core.TransactionType, p core.Period) ([]CategoryTotal, error)

	// SumByCategoryAndType groups by (category, type) jointly. A nil
	// period means all time.
	SumByCategoryAndType(ctx context.Context, userID int64, p *core.Period) ([]GroupTotal, error)

	// SumByMonthAndType groups by (calendar month, type) across one year.
	SumByMonthAndType(ctx context.Context, userID int64, year int) ([]MonthGroupTotal, error)
}

// BudgetStore persists monthly category budgets.
type BudgetStore interface {
	// UpsertBudget inserts or, when the (user, category, month, year) key
	// exists, replaces the amount. The budget's ID is filled in either way.
	UpsertBudget(ctx context.Context, b *core.Budget) error
	// ListBudgets returns the period's budgets ordered by category name.
	ListBudgets(ctx context.Context, userID int64, month, year int) ([]core.Budget, error)
	DeleteBudget(ctx context.Context, id, userID int64) error
}

// GoalStore persists savings goals.
type GoalStore interface {
	CreateGoal(ctx context.Context, g *core.Goal) error
	GetGoal(ctx context.Context, id, userID int64) (*core.Goal, error)
	UpdateGoal(ctx context.Context, g *core.Goal) error
	DeleteGoal(ctx context.Context, id, userID int64) error
	// ListGoals filters by status when non-empty, ordered by name.
	ListGoals(ctx context.Context, userID int64, status core.GoalStatus) ([]core.Goal, error)

	// ContributeToGoal runs the read-modify-write inside one database
	// transaction so concurrent contributions to the same goal serialize.
	ContributeToGoal(ctx context.Context, id, userID, amountCents int64) (*core.Goal, error)
}

// CategoryStore persists user categories.
type CategoryStore interface {
	// CreateCategory returns core.ErrConflict when the name is taken.
	CreateCategory(ctx context.Context, c *core.Category) error
	ListCategories(ctx context.Context, userID int64) ([]core.Category, error)
	UpdateCategory(ctx context.Context, c *core.Category) error
	DeleteCategory(ctx context.Context, id, userID int64) error
}

// NotificationStore persists alert notifications written by the worker.
type NotificationStore interface {
	// InsertNotification is idempotent per dedupKey; it reports whether a
	// row was actually written.
	InsertNotification(ctx context.Context, n *core.Notification, dedupKey string) (bool, error)
	ListNotifications(ctx context.Context, userID int64, unreadOnly bool) ([]core.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID int64) error
}

// Store is the full persistence surface one backend provides.
type Store interface {
	TransactionStore
	StatsReader
	BudgetStore
	GoalStore
	CategoryStore
	NotificationStore
}
