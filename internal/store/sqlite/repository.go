// Package sqlite implements the store ports on SQLite via the cgo-free
// modernc driver. Dates are stored as YYYY-MM-DD text so range filters and
// strftime grouping work directly on the column.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"

	_ "modernc.org/sqlite"
)

// Repository is the SQLite-backed implementation of store.Store.
type Repository struct {
	db *sql.DB
}

var _ store.Store = (*Repository)(nil)

// New opens (creating if needed) the database at dbPath and runs
// migrations.
func New(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func dateArg(d core.Date) string { return d.String() }

func periodArgs(p core.Period) (string, string) {
	return p.Start.Format("2006-01-02"), p.End.Format("2006-01-02")
}

func scanDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

// --- transactions ---

const txnColumns = "id, user_id, amount_cents, type, category, date, note, is_recurring, recurring_frequency, COALESCE(last_applied, '')"

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t           core.Transaction
		dateStr     string
		appliedStr  string
		isRecurring int64
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Amount.Cents, &t.Type, &t.Category,
		&dateStr, &t.Note, &isRecurring, &t.RecurringFrequency, &appliedStr)
	if err != nil {
		return t, err
	}
	t.IsRecurring = isRecurring != 0
	if t.Date, err = scanDate(dateStr); err != nil {
		return t, err
	}
	if t.LastApplied, err = scanDate(appliedStr); err != nil {
		return t, err
	}
	return t, nil
}

func (r *Repository) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO transactions (user_id, amount_cents, type, category, date, note, is_recurring, recurring_frequency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		t.UserID, t.Amount.Cents, t.Type, t.Category, dateArg(t.Date), t.Note,
		boolToInt(t.IsRecurring), frequencyArg(t)).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func frequencyArg(t *core.Transaction) core.Frequency {
	if !t.IsRecurring {
		return core.Never
	}
	return t.RecurringFrequency
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (r *Repository) GetTransaction(ctx context.Context, id, userID int64) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+txnColumns+" FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, t *core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET amount_cents = ?, type = ?, category = ?, date = ?, note = ?, is_recurring = ?, recurring_frequency = ?
		WHERE id = ? AND user_id = ?`,
		t.Amount.Cents, t.Type, t.Category, dateArg(t.Date), t.Note,
		boolToInt(t.IsRecurring), frequencyArg(t), t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteTransaction(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID int64, f store.TransactionFilter) ([]core.Transaction, int, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}

	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, f.Type)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Period != nil {
		start, end := periodArgs(*f.Period)
		where = append(where, "date >= ?", "date <= ?")
		args = append(args, start, end)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE "+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	order := "date DESC, id DESC"
	if f.SortAsc {
		order = "date ASC, id ASC"
	}
	query := "SELECT " + txnColumns + " FROM transactions WHERE " + clause + " ORDER BY " + order
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, (page-1)*f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func (r *Repository) ListRecurringTemplates(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+txnColumns+" FROM transactions WHERE is_recurring = 1 ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list recurring templates: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) SetLastApplied(ctx context.Context, id int64, day core.Date) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET last_applied = ? WHERE id = ?", dateArg(day), id)
	if err != nil {
		return fmt.Errorf("set last applied: %w", err)
	}
	return requireRow(res)
}

// --- aggregation ---

func (r *Repository) SumByCategory(ctx context.Context, userID int64, typ core.TransactionType, p core.Period) ([]store.CategoryTotal, error) {
	start, end := periodArgs(p)
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount_cents)
		FROM transactions
		WHERE user_id = ? AND type = ? AND date >= ? AND date <= ?
		GROUP BY category
		ORDER BY category`,
		userID, typ, start, end)
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}
	defer rows.Close()

	var out []store.CategoryTotal
	for rows.Next() {
		var ct store.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

func (r *Repository) SumByCategoryAndType(ctx context.Context, userID int64, p *core.Period) ([]store.GroupTotal, error) {
	query := `
		SELECT category, type, SUM(amount_cents)
		FROM transactions
		WHERE user_id = ?`
	args := []any{userID}
	if p != nil {
		start, end := periodArgs(*p)
		query += " AND date >= ? AND date <= ?"
		args = append(args, start, end)
	}
	query += " GROUP BY category, type ORDER BY category, type"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sum by category and type: %w", err)
	}
	defer rows.Close()

	var out []store.GroupTotal
	for rows.Next() {
		var gt store.GroupTotal
		if err := rows.Scan(&gt.Category, &gt.Type, &gt.TotalCents); err != nil {
			return nil, fmt.Errorf("scan group total: %w", err)
		}
		out = append(out, gt)
	}
	return out, rows.Err()
}

func (r *Repository) SumByMonthAndType(ctx context.Context, userID int64, year int) ([]store.MonthGroupTotal, error) {
	p := core.YearRange(year)
	start, end := periodArgs(p)
	rows, err := r.db.QueryContext(ctx, `
		SELECT CAST(strftime('%m', date) AS INTEGER) AS month, type, SUM(amount_cents)
		FROM transactions
		WHERE user_id = ? AND date >= ? AND date <= ?
		GROUP BY month, type
		ORDER BY month, type`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("sum by month and type: %w", err)
	}
	defer rows.Close()

	var out []store.MonthGroupTotal
	for rows.Next() {
		var mt store.MonthGroupTotal
		if err := rows.Scan(&mt.Month, &mt.Type, &mt.TotalCents); err != nil {
			return nil, fmt.Errorf("scan month total: %w", err)
		}
		out = append(out, mt)
	}
	return out, rows.Err()
}

// --- budgets ---

func (r *Repository) UpsertBudget(ctx context.Context, b *core.Budget) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO budgets (user_id, category, amount_cents, month, year)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, category, month, year) DO UPDATE SET amount_cents = excluded.amount_cents
		RETURNING id`,
		b.UserID, b.Category, b.Amount.Cents, b.Month, b.Year).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

func (r *Repository) ListBudgets(ctx context.Context, userID int64, month, year int) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, category, amount_cents, month, year
		FROM budgets
		WHERE user_id = ? AND month = ? AND year = ?
		ORDER BY category`,
		userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.Amount.Cents, &b.Month, &b.Year); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteBudget(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM budgets WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res)
}

// --- goals ---

const goalColumns = "id, user_id, name, target_cents, current_cents, COALESCE(deadline, ''), note, status"

func scanGoal(row interface{ Scan(...any) error }) (core.Goal, error) {
	var (
		g           core.Goal
		deadlineStr string
	)
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount.Cents,
		&g.CurrentAmount.Cents, &deadlineStr, &g.Note, &g.Status)
	if err != nil {
		return g, err
	}
	if g.Deadline, err = scanDate(deadlineStr); err != nil {
		return g, err
	}
	return g, nil
}

func (r *Repository) CreateGoal(ctx context.Context, g *core.Goal) error {
	var deadline any
	if !g.Deadline.IsZero() {
		deadline = dateArg(g.Deadline)
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO goals (user_id, name, target_cents, current_cents, deadline, note, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		g.UserID, g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		deadline, g.Note, g.Status).Scan(&g.ID)
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

func (r *Repository) GetGoal(ctx context.Context, id, userID int64) (*core.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE id = ? AND user_id = ?", id, userID)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return &g, nil
}

func (r *Repository) UpdateGoal(ctx context.Context, g *core.Goal) error {
	var deadline any
	if !g.Deadline.IsZero() {
		deadline = dateArg(g.Deadline)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals
		SET name = ?, target_cents = ?, current_cents = ?, deadline = ?, note = ?, status = ?
		WHERE id = ? AND user_id = ?`,
		g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents, deadline,
		g.Note, g.Status, g.ID, g.UserID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteGoal(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM goals WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) ListGoals(ctx context.Context, userID int64, status core.GoalStatus) ([]core.Goal, error) {
	query := "SELECT " + goalColumns + " FROM goals WHERE user_id = ?"
	args := []any{userID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ContributeToGoal applies the contribution inside a single database
// transaction, so concurrent contributions to one goal serialize on the
// write lock instead of racing a read-then-save.
func (r *Repository) ContributeToGoal(ctx context.Context, id, userID, amountCents int64) (*core.Goal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin contribution: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE id = ? AND user_id = ?", id, userID)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read goal for contribution: %w", err)
	}

	g.ApplyContribution(amountCents)

	if _, err := tx.ExecContext(ctx,
		"UPDATE goals SET current_cents = ?, status = ? WHERE id = ? AND user_id = ?",
		g.CurrentAmount.Cents, g.Status, id, userID); err != nil {
		return nil, fmt.Errorf("write contribution: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit contribution: %w", err)
	}
	return &g, nil
}

// --- categories ---

func (r *Repository) CreateCategory(ctx context.Context, c *core.Category) error {
	var exists int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE user_id = ? AND name = ?",
		c.UserID, c.Name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("category %q: %w", c.Name, core.ErrConflict)
	}

	color := c.Color
	if color == "" {
		color = core.DefaultCategoryColor
	}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO categories (user_id, name, color)
		VALUES (?, ?, ?)
		RETURNING id`,
		c.UserID, c.Name, color).Scan(&c.ID)
	if err != nil {
		// The unique index closes the check-then-insert window.
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("category %q: %w", c.Name, core.ErrConflict)
		}
		return fmt.Errorf("create category: %w", err)
	}
	c.Color = color
	return nil
}

func (r *Repository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name, color FROM categories WHERE user_id = ? ORDER BY name", userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateCategory(ctx context.Context, c *core.Category) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, color = ? WHERE id = ? AND user_id = ?",
		c.Name, c.Color, c.ID, c.UserID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("category %q: %w", c.Name, core.ErrConflict)
		}
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteCategory(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM categories WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res)
}

// --- notifications ---

func (r *Repository) InsertNotification(ctx context.Context, n *core.Notification, dedupKey string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO notifications (user_id, source, level, message, dedup_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.UserID, n.Source, n.Level, n.Message, dedupKey,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return count > 0, nil
}

func (r *Repository) ListNotifications(ctx context.Context, userID int64, unreadOnly bool) ([]core.Notification, error) {
	query := "SELECT id, user_id, source, level, message, is_read, created_at FROM notifications WHERE user_id = ?"
	if unreadOnly {
		query += " AND is_read = 0"
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []core.Notification
	for rows.Next() {
		var (
			n       core.Notification
			isRead  int64
			created string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Source, &n.Level, &n.Message, &isRead, &created); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Read = isRead != 0
		if ts, err := time.Parse(time.RFC3339, created); err == nil {
			n.CreatedAt = ts
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repository) MarkNotificationRead(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return requireRow(res)
}
