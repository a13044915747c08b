package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"budgetwise/internal/core"
	"budgetwise/internal/storage/memory"
)

func TestProfileBudgetsAndSettings(t *testing.T) {
	ctx := context.Background()
	changes := 0
	svc := NewProfileService(memory.New(), func() time.Time { return fixedNow }, func() { changes++ })

	if err := svc.SaveBudgets(ctx, core.BudgetConfig{core.CategoryFood: core.Cents(-1)}); !errors.Is(err, core.ErrInvalidBudget) {
		t.Fatalf("negative budget err = %v", err)
	}
	if err := svc.SaveBudgets(ctx, core.BudgetConfig{core.CategoryFood: core.Cents(40000)}); err != nil {
		t.Fatalf("save budgets: %v", err)
	}
	b, _ := svc.Budgets(ctx)
	if len(b) != 1 || b[core.CategoryFood].Cents != 40000 {
		t.Fatalf("budgets = %v", b)
	}

	if err := svc.SaveSettings(ctx, core.Settings{DarkMode: true, Currency: " eur "}); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	st, _ := svc.Settings(ctx)
	if !st.DarkMode || st.Currency != "EUR" {
		t.Fatalf("settings = %+v", st)
	}
	_ = svc.SaveSettings(ctx, core.Settings{})
	if st, _ := svc.Settings(ctx); st.Currency != "USD" {
		t.Fatalf("empty currency = %q", st.Currency)
	}

	if changes != 3 {
		t.Fatalf("change hook ran %d times, want 3", changes)
	}
}

func TestProfileExportImportClear(t *testing.T) {
	ctx := context.Background()
	src := memory.New()
	_ = src.AddTransaction(ctx, entry("a", core.Expense, 10, core.CategoryFood, core.NewDate(2024, 3, 1)))
	svc := NewProfileService(src, func() time.Time { return fixedNow }, nil)

	snap, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !snap.ExportedAt.Equal(fixedNow) || len(snap.Transactions) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}

	dst := NewProfileService(memory.New(), nil, nil)
	if err := dst.ImportSnapshot(ctx, snap); err != nil {
		t.Fatalf("import: %v", err)
	}
	again, _ := dst.Export(ctx)
	if len(again.Transactions) != 1 || again.Transactions[0].ID != "a" {
		t.Fatalf("imported = %+v", again.Transactions)
	}

	if err := dst.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	cleared, _ := dst.Export(ctx)
	if len(cleared.Transactions) != 0 || len(cleared.Budgets) != 7 {
		t.Fatalf("after clear = %+v", cleared)
	}
}
