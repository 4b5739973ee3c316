package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "fintrack.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustCreateTransaction(t *testing.T, repo *Repository, tx *core.Transaction) *core.Transaction {
	t.Helper()
	if err := repo.CreateTransaction(context.Background(), tx); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	return tx
}

func expense(userID int64, category string, cents int64, date core.Date) *core.Transaction {
	return &core.Transaction{
		UserID:   userID,
		Amount:   core.Money{Cents: cents},
		Type:     core.Expense,
		Category: category,
		Date:     date,
	}
}

func TestTransactionCRUD(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	tx := expense(1, "groceries", 4250, core.NewDate(2026, 8, 28))
	tx.Note = "weekly shop"
	mustCreateTransaction(t, repo, tx)
	if tx.ID == 0 {
		t.Fatal("expected assigned ID")
	}

	got, err := repo.GetTransaction(ctx, tx.ID, 1)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Amount.Cents != 4250 || got.Category != "groceries" || got.Note != "weekly shop" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Date.String() != "2026-08-28" {
		t.Errorf("date = %s", got.Date)
	}
	if got.RecurringFrequency != core.Never {
		t.Errorf("frequency = %q, want none for one-off", got.RecurringFrequency)
	}

	got.Amount = core.Money{Cents: 5000}
	if err := repo.UpdateTransaction(ctx, got); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	got, err = repo.GetTransaction(ctx, tx.ID, 1)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Amount.Cents != 5000 {
		t.Errorf("amount = %d after update", got.Amount.Cents)
	}

	if err := repo.DeleteTransaction(ctx, tx.ID, 1); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, tx.ID, 1); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestTransactionOwnership(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	tx := mustCreateTransaction(t, repo, expense(1, "groceries", 100, core.NewDate(2026, 8, 1)))

	if _, err := repo.GetTransaction(ctx, tx.ID, 2); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("other user's read should be not found, got %v", err)
	}
	if err := repo.DeleteTransaction(ctx, tx.ID, 2); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("other user's delete should be not found, got %v", err)
	}
	tx.UserID = 2
	if err := repo.UpdateTransaction(ctx, tx); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("other user's update should be not found, got %v", err)
	}
}

func TestListTransactionsFilters(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	mustCreateTransaction(t, repo, expense(1, "groceries", 100, core.NewDate(2026, 8, 1)))
	mustCreateTransaction(t, repo, expense(1, "groceries", 200, core.NewDate(2026, 8, 15)))
	mustCreateTransaction(t, repo, expense(1, "travel", 300, core.NewDate(2026, 7, 20)))
	income := expense(1, "salary", 400, core.NewDate(2026, 8, 25))
	income.Type = core.Income
	mustCreateTransaction(t, repo, income)
	mustCreateTransaction(t, repo, expense(2, "groceries", 999, core.NewDate(2026, 8, 1)))

	t.Run("by user", func(t *testing.T) {
		got, total, err := repo.ListTransactions(ctx, 1, store.TransactionFilter{})
		if err != nil {
			t.Fatalf("ListTransactions: %v", err)
		}
		if len(got) != 4 || total != 4 {
			t.Errorf("got %d/%d, want 4/4", len(got), total)
		}
	})

	t.Run("by category", func(t *testing.T) {
		got, total, err := repo.ListTransactions(ctx, 1, store.TransactionFilter{Category: "groceries"})
		if err != nil {
			t.Fatalf("ListTransactions: %v", err)
		}
		if len(got) != 2 || total != 2 {
			t.Errorf("got %d/%d, want 2/2", len(got), total)
		}
	})

	t.Run("by type", func(t *testing.T) {
		got, _, err := repo.ListTransactions(ctx, 1, store.TransactionFilter{Type: core.Income})
		if err != nil {
			t.Fatalf("ListTransactions: %v", err)
		}
		if len(got) != 1 || got[0].Category != "salary" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("by period", func(t *testing.T) {
		period := core.MonthRange(2026, 8)
		got, total, err := repo.ListTransactions(ctx, 1, store.TransactionFilter{Period: &period})
		if err != nil {
			t.Fatalf("ListTransactions: %v", err)
		}
		if len(got) != 3 || total != 3 {
			t.Errorf("got %d/%d, want 3/3 for august", len(got), total)
		}
	})

	t.Run("default order is newest first", func(t *testing.T) {
		got, _, err := repo.ListTransactions(ctx, 1, store.TransactionFilter{})
		if err != nil {
			t.Fatalf("ListTransactions: %v", err)
		}
		if got[0].Date.String() != "2026-08-25" {
			t.Errorf("first = %s, want newest", got[0].Date)
		}
	})

	t.Run("pagination keeps total", func(t *testing.T) {
		got, total, err := repo.ListTransactions(ctx, 1, store.TransactionFilter{Limit: 2, Page: 2, SortAsc: true})
		if err != nil {
			t.Fatalf("ListTransactions: %v", err)
		}
		if total != 4 {
			t.Errorf("total = %d, want 4", total)
		}
		if len(got) != 2 || got[0].Date.String() != "2026-08-15" {
			t.Errorf("page 2 = %+v", got)
		}
	})
}

func TestRecurringTemplates(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	tmpl := expense(1, "rent", 80000, core.NewDate(2026, 1, 1))
	tmpl.IsRecurring = true
	tmpl.RecurringFrequency = core.Monthly
	mustCreateTransaction(t, repo, tmpl)
	mustCreateTransaction(t, repo, expense(1, "groceries", 100, core.NewDate(2026, 8, 1)))

	templates, err := repo.ListRecurringTemplates(ctx)
	if err != nil {
		t.Fatalf("ListRecurringTemplates: %v", err)
	}
	if len(templates) != 1 || templates[0].Category != "rent" {
		t.Fatalf("templates = %+v", templates)
	}
	if !templates[0].LastApplied.IsZero() {
		t.Error("fresh template must have zero last applied")
	}

	day := core.NewDate(2026, 8, 28)
	if err := repo.SetLastApplied(ctx, tmpl.ID, day); err != nil {
		t.Fatalf("SetLastApplied: %v", err)
	}
	templates, err = repo.ListRecurringTemplates(ctx)
	if err != nil {
		t.Fatalf("ListRecurringTemplates: %v", err)
	}
	if templates[0].LastApplied.String() != "2026-08-28" {
		t.Errorf("last applied = %s", templates[0].LastApplied)
	}

	if err := repo.SetLastApplied(ctx, 9999, day); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected not found for missing template, got %v", err)
	}
}

func TestAggregations(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	mustCreateTransaction(t, repo, expense(1, "groceries", 100, core.NewDate(2026, 8, 1)))
	mustCreateTransaction(t, repo, expense(1, "groceries", 200, core.NewDate(2026, 8, 15)))
	mustCreateTransaction(t, repo, expense(1, "travel", 300, core.NewDate(2026, 3, 20)))
	salary := expense(1, "salary", 400, core.NewDate(2026, 8, 25))
	salary.Type = core.Income
	mustCreateTransaction(t, repo, salary)

	t.Run("sum by category", func(t *testing.T) {
		got, err := repo.SumByCategory(ctx, 1, core.Expense, core.MonthRange(2026, 8))
		if err != nil {
			t.Fatalf("SumByCategory: %v", err)
		}
		if len(got) != 1 || got[0].Category != "groceries" || got[0].Total.Cents != 300 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("sum by category and type all time", func(t *testing.T) {
		got, err := repo.SumByCategoryAndType(ctx, 1, nil)
		if err != nil {
			t.Fatalf("SumByCategoryAndType: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("got %d groups, want 3", len(got))
		}
		// Ordered by category then type.
		if got[0].Category != "groceries" || got[0].TotalCents != 300 {
			t.Errorf("first group = %+v", got[0])
		}
	})

	t.Run("sum by month and type", func(t *testing.T) {
		got, err := repo.SumByMonthAndType(ctx, 1, 2026)
		if err != nil {
			t.Fatalf("SumByMonthAndType: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("got %d rows, want 3", len(got))
		}
		if got[0].Month != 3 || got[0].Type != core.Expense || got[0].TotalCents != 300 {
			t.Errorf("march row = %+v", got[0])
		}
		if got[1].Month != 8 || got[2].Month != 8 {
			t.Errorf("august rows = %+v %+v", got[1], got[2])
		}
	})
}

func TestBudgetUpsert(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	b := &core.Budget{UserID: 1, Category: "food", Amount: core.Money{Cents: 50000}, Month: 8, Year: 2026}
	if err := repo.UpsertBudget(ctx, b); err != nil {
		t.Fatalf("UpsertBudget: %v", err)
	}
	firstID := b.ID

	// Same key replaces the amount, keeping the row.
	b2 := &core.Budget{UserID: 1, Category: "food", Amount: core.Money{Cents: 60000}, Month: 8, Year: 2026}
	if err := repo.UpsertBudget(ctx, b2); err != nil {
		t.Fatalf("UpsertBudget: %v", err)
	}
	if b2.ID != firstID {
		t.Errorf("upsert created new row: %d vs %d", b2.ID, firstID)
	}

	budgets, err := repo.ListBudgets(ctx, 1, 8, 2026)
	if err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	if len(budgets) != 1 || budgets[0].Amount.Cents != 60000 {
		t.Errorf("budgets = %+v", budgets)
	}

	// Different month is a separate budget.
	b3 := &core.Budget{UserID: 1, Category: "food", Amount: core.Money{Cents: 40000}, Month: 9, Year: 2026}
	if err := repo.UpsertBudget(ctx, b3); err != nil {
		t.Fatalf("UpsertBudget: %v", err)
	}
	if b3.ID == firstID {
		t.Error("different month must not collide")
	}

	if err := repo.DeleteBudget(ctx, firstID, 1); err != nil {
		t.Fatalf("DeleteBudget: %v", err)
	}
	if err := repo.DeleteBudget(ctx, firstID, 1); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete should be not found, got %v", err)
	}
}

func TestGoalCRUDAndContribution(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	g := &core.Goal{
		UserID:       1,
		Name:         "vacation",
		TargetAmount: core.Money{Cents: 100000},
		Deadline:     core.NewDate(2026, 12, 31),
		Status:       core.GoalActive,
	}
	if err := repo.CreateGoal(ctx, g); err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}

	got, err := repo.GetGoal(ctx, g.ID, 1)
	if err != nil {
		t.Fatalf("GetGoal: %v", err)
	}
	if got.Deadline.String() != "2026-12-31" {
		t.Errorf("deadline = %s", got.Deadline)
	}

	got, err = repo.ContributeToGoal(ctx, g.ID, 1, 100000)
	if err != nil {
		t.Fatalf("ContributeToGoal: %v", err)
	}
	if got.CurrentAmount.Cents != 100000 || got.Status != core.GoalCompleted {
		t.Errorf("after contribution: %+v", got)
	}

	// Withdrawal below target flips back to active; clamped at zero.
	got, err = repo.ContributeToGoal(ctx, g.ID, 1, -250000)
	if err != nil {
		t.Fatalf("ContributeToGoal: %v", err)
	}
	if got.CurrentAmount.Cents != 0 || got.Status != core.GoalActive {
		t.Errorf("after withdrawal: %+v", got)
	}

	if _, err := repo.ContributeToGoal(ctx, g.ID, 2, 100); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("other user's contribution should be not found, got %v", err)
	}

	active, err := repo.ListGoals(ctx, 1, core.GoalActive)
	if err != nil {
		t.Fatalf("ListGoals: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("active goals = %+v", active)
	}
	none, err := repo.ListGoals(ctx, 1, core.GoalCompleted)
	if err != nil {
		t.Fatalf("ListGoals: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("completed goals = %+v", none)
	}

	if err := repo.DeleteGoal(ctx, g.ID, 1); err != nil {
		t.Fatalf("DeleteGoal: %v", err)
	}
	if _, err := repo.GetGoal(ctx, g.ID, 1); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestGoalWithoutDeadline(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	g := &core.Goal{UserID: 1, Name: "buffer", TargetAmount: core.Money{Cents: 1000}, Status: core.GoalActive}
	if err := repo.CreateGoal(ctx, g); err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	got, err := repo.GetGoal(ctx, g.ID, 1)
	if err != nil {
		t.Fatalf("GetGoal: %v", err)
	}
	if !got.Deadline.IsZero() {
		t.Errorf("deadline should stay zero, got %s", got.Deadline)
	}
}

func TestCategoryConflict(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	c := &core.Category{UserID: 1, Name: "groceries"}
	if err := repo.CreateCategory(ctx, c); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if c.Color != core.DefaultCategoryColor {
		t.Errorf("color = %q, want default", c.Color)
	}

	dup := &core.Category{UserID: 1, Name: "groceries"}
	if err := repo.CreateCategory(ctx, dup); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Same name for another user is fine.
	other := &core.Category{UserID: 2, Name: "groceries", Color: "#ff0000"}
	if err := repo.CreateCategory(ctx, other); err != nil {
		t.Fatalf("CreateCategory for other user: %v", err)
	}

	list, err := repo.ListCategories(ctx, 1)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("categories = %+v", list)
	}
}

func TestNotificationDedup(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	n := &core.Notification{UserID: 1, Source: "budget", Level: "danger", Message: "food exceeded"}
	ok, err := repo.InsertNotification(ctx, n, "budget:1:2026-08:danger")
	if err != nil {
		t.Fatalf("InsertNotification: %v", err)
	}
	if !ok {
		t.Fatal("first insert should report written")
	}

	ok, err = repo.InsertNotification(ctx, n, "budget:1:2026-08:danger")
	if err != nil {
		t.Fatalf("InsertNotification: %v", err)
	}
	if ok {
		t.Fatal("duplicate dedup key should be ignored")
	}

	ok, err = repo.InsertNotification(ctx, n, "budget:1:2026-08:warning")
	if err != nil {
		t.Fatalf("InsertNotification: %v", err)
	}
	if !ok {
		t.Fatal("different level is a new notification")
	}

	list, err := repo.ListNotifications(ctx, 1, false)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("notifications = %d, want 2", len(list))
	}

	if err := repo.MarkNotificationRead(ctx, list[0].ID, 1); err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	unread, err := repo.ListNotifications(ctx, 1, true)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(unread) != 1 {
		t.Errorf("unread = %d, want 1", len(unread))
	}

	if err := repo.MarkNotificationRead(ctx, 9999, 1); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
