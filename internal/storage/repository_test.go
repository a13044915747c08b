package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"budgetwise/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sample(id string, typ core.TransactionType, cents int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		Type:        typ,
		Amount:      core.Cents(cents),
		Category:    core.CategoryFood,
		Description: "lunch " + id,
		Date:        core.NewDate(2024, 1, 10),
		CreatedAt:   time.Date(2024, 1, 10, 12, 0, 0, 123, time.UTC),
	}
}

func TestRepositoryDefaults(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	b, err := repo.GetBudgets(ctx)
	if err != nil || len(b) != 7 {
		t.Fatalf("default budgets = %v, %v", b, err)
	}
	s, err := repo.GetSettings(ctx)
	if err != nil || s != core.DefaultSettings() {
		t.Fatalf("default settings = %+v, %v", s, err)
	}
	list, err := repo.ListTransactions(ctx)
	if err != nil || len(list) != 0 {
		t.Fatalf("empty list = %v, %v", list, err)
	}
}

func TestRepositoryTransactions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.AddTransaction(ctx, sample("a", core.Expense, 1250)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := repo.AddTransactions(ctx, []core.Transaction{sample("b", core.Income, 5000), sample("c", core.Expense, 99)}); err != nil {
		t.Fatalf("add batch: %v", err)
	}

	list, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].ID != "c" || list[2].ID != "a" {
		t.Fatalf("expected newest first, got %+v", list)
	}

	got, err := repo.GetTransaction(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := sample("a", core.Expense, 1250)
	if got.Amount != want.Amount || got.Date != want.Date || !got.CreatedAt.Equal(want.CreatedAt) || got.Description != want.Description {
		t.Fatalf("round trip: got %+v, want %+v", got, want)
	}

	if err := repo.AddTransaction(ctx, sample("a", core.Expense, 1)); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("duplicate err = %v", err)
	}

	// a bad row rolls back the whole batch
	bad := sample("e", core.Expense, 1)
	bad.Date = core.Date{}
	if err := repo.AddTransactions(ctx, []core.Transaction{sample("d", core.Expense, 1), bad}); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("bad batch err = %v", err)
	}
	if _, err := repo.GetTransaction(ctx, "d"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("rolled back row is visible: %v", err)
	}

	if err := repo.DeleteTransaction(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, "b"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestRepositoryBudgetsAndSettings(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.SaveBudgets(ctx, core.BudgetConfig{"food": core.Cents(40000), "pets": core.Cents(2500)}); err != nil {
		t.Fatalf("save budgets: %v", err)
	}
	b, _ := repo.GetBudgets(ctx)
	if len(b) != 2 || b["food"].Cents != 40000 || b["pets"].Cents != 2500 {
		t.Fatalf("budgets = %v", b)
	}
	if err := repo.SaveBudgets(ctx, core.BudgetConfig{"food": core.Cents(-5)}); !errors.Is(err, core.ErrInvalidBudget) {
		t.Fatalf("negative budget err = %v", err)
	}

	if err := repo.SaveSettings(ctx, core.Settings{DarkMode: true, Currency: "EUR"}); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	if s, _ := repo.GetSettings(ctx); !s.DarkMode || s.Currency != "EUR" {
		t.Fatalf("settings = %+v", s)
	}
}

func TestRepositoryExportImportClear(t *testing.T) {
	ctx := context.Background()
	src := newTestRepo(t)
	_ = src.AddTransactions(ctx, []core.Transaction{sample("a", core.Expense, 100), sample("b", core.Income, 200)})
	_ = src.SaveBudgets(ctx, core.BudgetConfig{"food": core.Cents(300)})

	snap, err := src.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := newTestRepo(t)
	_ = dst.AddTransaction(ctx, sample("old", core.Expense, 1))
	if err := dst.Import(ctx, snap); err != nil {
		t.Fatalf("import: %v", err)
	}
	list, _ := dst.ListTransactions(ctx)
	if len(list) != 2 || list[0].ID != "b" || list[1].ID != "a" {
		t.Fatalf("imported order = %+v", list)
	}
	if b, _ := dst.GetBudgets(ctx); len(b) != 1 || b["food"].Cents != 300 {
		t.Fatalf("imported budgets = %v", b)
	}

	// budgets only; transactions untouched
	if err := dst.Import(ctx, core.Snapshot{Budgets: core.BudgetConfig{"bills": core.Cents(1)}}); err != nil {
		t.Fatalf("partial import: %v", err)
	}
	if list, _ := dst.ListTransactions(ctx); len(list) != 2 {
		t.Fatalf("partial import dropped transactions")
	}

	dup := core.Snapshot{Transactions: []core.Transaction{sample("dup", core.Expense, 1), sample("dup", core.Expense, 2)}}
	if err := dst.Import(ctx, dup); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("duplicate ids: err = %v, want ErrConflict", err)
	}
	empty := core.Snapshot{Transactions: []core.Transaction{sample("", core.Expense, 1)}}
	if err := dst.Import(ctx, empty); !errors.Is(err, core.ErrEmptyID) {
		t.Fatalf("empty id: err = %v, want ErrEmptyID", err)
	}
	if list, _ := dst.ListTransactions(ctx); len(list) != 2 {
		t.Fatalf("rejected import changed store: %+v", list)
	}

	if err := dst.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	list, _ = dst.ListTransactions(ctx)
	b, _ := dst.GetBudgets(ctx)
	if len(list) != 0 || len(b) != 7 {
		t.Fatalf("after clear: %d transactions, budgets %v", len(list), b)
	}
}

func TestRepositoryMirrorQueue(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	_ = repo.AddTransactions(ctx, []core.Transaction{
		sample("a", core.Expense, 1),
		sample("b", core.Expense, 2),
		sample("c", core.Expense, 3),
	})

	ids, err := repo.PendingMirror(ctx, 2)
	if err != nil || len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("pending = %v, %v", ids, err)
	}

	if err := repo.MarkMirrored(ctx, "a"); err != nil {
		t.Fatalf("mark mirrored: %v", err)
	}
	if err := repo.MarkMirrorError(ctx, "b"); err != nil {
		t.Fatalf("mark error: %v", err)
	}
	ids, _ = repo.PendingMirror(ctx, 10)
	if len(ids) != 1 || ids[0] != "c" {
		t.Fatalf("pending after marks = %v", ids)
	}
	if err := repo.MarkMirrored(ctx, "zzz"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown id err = %v", err)
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run: %v", err)
	}
}
