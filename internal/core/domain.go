package core

import (
	"strings"
	"time"
)

type (
	// TransactionType distinguishes money coming in from money going out.
	TransactionType string

	// Frequency is how often a recurring transaction template repeats.
	Frequency string

	// GoalStatus tracks whether a savings goal has reached its target.
	GoalStatus string
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
	Never   Frequency = "none"

	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly, Never:
		return true
	}
	return false
}

// Valid reports whether s is a known goal status.
func (s GoalStatus) Valid() bool {
	return s == GoalActive || s == GoalCompleted
}

// Date is a calendar day. The time component is always midnight local time;
// range comparisons happen on the day, not the instant.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return Date{}, Invalid("date", "must be YYYY-MM-DD")
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalJSON emits the date as a quoted YYYY-MM-DD string, or null when zero.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted YYYY-MM-DD string or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Transaction is a single income or expense record. Once written it is only
// ever changed by its owner through CRUD; aggregation never mutates it.
// A transaction with IsRecurring set acts as a template: the recurring worker
// materializes concrete occurrences from it and advances LastApplied.
type Transaction struct {
	ID                 int64           `json:"id"`
	UserID             int64           `json:"userId"`
	Amount             Money           `json:"amount"`
	Type               TransactionType `json:"type"`
	Category           string          `json:"category"`
	Date               Date            `json:"date"`
	Note               string          `json:"note,omitempty"`
	IsRecurring        bool            `json:"isRecurring"`
	RecurringFrequency Frequency       `json:"recurringFrequency"`
	LastApplied        Date            `json:"-"`
}

// Validate checks the transaction before it is stored.
func (t Transaction) Validate() error {
	if t.UserID <= 0 {
		return Invalid("userId", "required")
	}
	if t.Amount.IsNegative() {
		return Invalid("amount", "cannot be negative")
	}
	if !t.Type.Valid() {
		return Invalid("type", "must be income or expense")
	}
	if strings.TrimSpace(t.Category) == "" {
		return Invalid("category", "required")
	}
	if t.Date.IsZero() {
		return Invalid("date", "required")
	}
	if len(t.Note) > 500 {
		return Invalid("note", "too long (max 500 characters)")
	}
	if t.IsRecurring {
		if t.RecurringFrequency == Never || !t.RecurringFrequency.Valid() {
			return Invalid("recurringFrequency", "must be daily, weekly, monthly or yearly")
		}
	} else if t.RecurringFrequency != "" && t.RecurringFrequency != Never {
		return Invalid("recurringFrequency", "only allowed on recurring transactions")
	}
	return nil
}

// Budget is a monthly spending limit for one category. The (userID,
// category, month, year) tuple is unique; creating over an existing one
// replaces the amount. Every budget is an expense limit.
type Budget struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"userId"`
	Category string `json:"category"`
	Amount   Money  `json:"amount"`
	Month    int    `json:"month"`
	Year     int    `json:"year"`
}

// Validate checks the budget before upsert.
func (b Budget) Validate() error {
	if b.UserID <= 0 {
		return Invalid("userId", "required")
	}
	if strings.TrimSpace(b.Category) == "" {
		return Invalid("category", "required")
	}
	if !b.Amount.IsPositive() {
		return Invalid("amount", "must be greater than 0")
	}
	if b.Month < 1 || b.Month > 12 {
		return Invalid("month", "must be between 1 and 12")
	}
	if b.Year <= 0 {
		return Invalid("year", "required")
	}
	return nil
}

// Goal is a savings target. Status flips to completed automatically when
// CurrentAmount reaches TargetAmount via a contribution and back to active
// when a contribution drops it below target again.
type Goal struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"userId"`
	Name          string     `json:"name"`
	TargetAmount  Money      `json:"targetAmount"`
	CurrentAmount Money      `json:"currentAmount"`
	Deadline      Date       `json:"deadline,omitempty"`
	Note          string     `json:"note,omitempty"`
	Status        GoalStatus `json:"status"`
}

// Validate checks the goal before create or update.
func (g Goal) Validate() error {
	if g.UserID <= 0 {
		return Invalid("userId", "required")
	}
	if strings.TrimSpace(g.Name) == "" {
		return Invalid("name", "required")
	}
	if !g.TargetAmount.IsPositive() {
		return Invalid("targetAmount", "must be greater than 0")
	}
	if g.CurrentAmount.IsNegative() {
		return Invalid("currentAmount", "cannot be negative")
	}
	if !g.Status.Valid() {
		return Invalid("status", "must be active or completed")
	}
	return nil
}

// ApplyContribution adds deltaCents to the goal's current amount, clamping
// at zero, and derives the status transition: completed once current
// reaches target, back to active when a reduction drops it below target.
// Callers enforce that user-facing contributions are strictly positive;
// negative deltas exist for downward adjustments.
func (g *Goal) ApplyContribution(deltaCents int64) {
	next := g.CurrentAmount.Cents + deltaCents
	if next < 0 {
		next = 0
	}
	g.CurrentAmount = Money{Cents: next}

	if g.CurrentAmount.Cents >= g.TargetAmount.Cents {
		g.Status = GoalCompleted
	} else if g.Status == GoalCompleted {
		g.Status = GoalActive
	}
}

// RecomputeCompletion applies the auto-complete rule after a direct edit.
// Unlike ApplyContribution it never reverts completed back to active;
// only contributions do that.
func (g *Goal) RecomputeCompletion() {
	if g.CurrentAmount.Cents >= g.TargetAmount.Cents {
		g.Status = GoalCompleted
	}
}

// Category is a user-defined label for grouping transactions. Names are
// unique per user.
type Category struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Color  string `json:"color"`
}

// DefaultCategoryColor is used when a category is created without one.
const DefaultCategoryColor = "#4f46e5"

// Validate checks the category before create or update.
func (c Category) Validate() error {
	if c.UserID <= 0 {
		return Invalid("userId", "required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return Invalid("name", "required")
	}
	return nil
}

// Notification is a persisted copy of a threshold alert, written by the
// worker when a transaction event pushes a budget or goal over a line.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Source    string    `json:"source"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
