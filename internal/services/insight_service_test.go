package services

import (
	"context"
	"testing"
	"time"

	"budgetwise/internal/cache"
	"budgetwise/internal/core"
	"budgetwise/internal/storage/memory"
)

func seeded(t *testing.T, txs []core.Transaction, budgets core.BudgetConfig) *memory.Store {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	if err := store.AddTransactions(ctx, txs); err != nil {
		t.Fatalf("seed transactions: %v", err)
	}
	if budgets != nil {
		if err := store.SaveBudgets(ctx, budgets); err != nil {
			t.Fatalf("seed budgets: %v", err)
		}
	}
	return store
}

func entry(id string, typ core.TransactionType, dollars int64, category string, d core.Date) core.Transaction {
	return core.Transaction{ID: id, Type: typ, Amount: core.Cents(dollars * 100), Category: category, Date: d}
}

func TestBuildDashboard(t *testing.T) {
	txs := []core.Transaction{
		entry("1", core.Income, 3000, core.CategorySalary, core.NewDate(2024, 3, 1)),
		entry("2", core.Expense, 600, core.CategoryFood, core.NewDate(2024, 3, 5)),
		entry("3", core.Expense, 200, core.CategoryTransport, core.NewDate(2024, 3, 14)),
		entry("4", core.Expense, 400, core.CategoryFood, core.NewDate(2024, 2, 20)),
		entry("5", core.Income, 500, core.CategoryGift, core.NewDate(2023, 12, 24)),
	}
	budgets := core.BudgetConfig{
		core.CategoryFood:      core.Cents(50000),
		core.CategoryTransport: core.Cents(30000),
		core.CategorySavings:   core.Cents(500000),
	}

	d := BuildDashboard(txs, budgets, core.PeriodMonth, fixedNow)

	checks := []struct {
		name string
		got  int64
		want int64
	}{
		{"balance", d.Balance.Cents, 230000},
		{"monthly income", d.MonthlyIncome.Cents, 300000},
		{"monthly expenses", d.MonthlyExpenses.Cents, 80000},
		{"monthly net", d.MonthlyNet.Cents, 220000},
		{"period expenses", d.PeriodExpenses.Cents, 80000},
		{"food this month", d.SpendingByCategory[core.CategoryFood].Cents, 60000},
		{"food remaining", d.Budgets[core.CategoryFood].Remaining.Cents, -10000},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
	if d.TransactionCount != 3 || len(d.Trend) != 6 {
		t.Fatalf("count = %d, trend buckets = %d", d.TransactionCount, len(d.Trend))
	}
	if _, ok := d.Budgets[core.CategorySavings]; !ok {
		t.Fatalf("savings goal should be evaluated like any positive limit")
	}
	if d.Comparison.Trend != core.TrendUp {
		t.Fatalf("comparison = %+v", d.Comparison)
	}
	if len(d.Recommendations) == 0 || d.Recommendations[0].Type != core.RecWarning {
		t.Fatalf("recommendations = %+v", d.Recommendations)
	}
	if d.SavingsProgress == nil || *d.SavingsProgress != 46 {
		t.Fatalf("savings progress = %v", d.SavingsProgress)
	}
}

func TestSavingsProgress(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		goal    int64
		want    float64
		unset   bool
	}{
		{"no goal", 1000, 0, 0, true},
		{"partial", 2500, 10000, 25, false},
		{"capped", 50000, 10000, 100, false},
		{"negative balance", -500, 10000, 0, false},
		{"rounded", 1, 3, 33.3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := savingsProgress(core.Cents(tt.balance), core.Cents(tt.goal))
			if tt.unset {
				if got != nil {
					t.Fatalf("expected nil, got %v", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Fatalf("progress = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDashboardCachedUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	store := seeded(t, []core.Transaction{
		entry("1", core.Expense, 10, core.CategoryFood, core.NewDate(2024, 3, 10)),
	}, nil)
	reports := cache.NewLRUCache[Dashboard](10, time.Hour)
	svc := NewInsightService(store, reports, func() time.Time { return fixedNow })

	first, err := svc.Dashboard(ctx, core.PeriodMonth)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if first.PeriodExpenses.Cents != 1000 {
		t.Fatalf("period expenses = %d", first.PeriodExpenses.Cents)
	}

	_ = store.AddTransaction(ctx, entry("2", core.Expense, 5, core.CategoryFood, core.NewDate(2024, 3, 11)))
	cached, _ := svc.Dashboard(ctx, core.PeriodMonth)
	if cached.PeriodExpenses.Cents != 1000 {
		t.Fatalf("expected cached report, got %d", cached.PeriodExpenses.Cents)
	}
	if reports.Size() != 1 {
		t.Fatalf("cache size = %d", reports.Size())
	}

	svc.Invalidate()
	fresh, _ := svc.Dashboard(ctx, core.PeriodMonth)
	if fresh.PeriodExpenses.Cents != 1500 {
		t.Fatalf("after invalidate = %d", fresh.PeriodExpenses.Cents)
	}
}

func TestRecommendationsAndTrend(t *testing.T) {
	ctx := context.Background()
	svc := NewInsightService(seeded(t, nil, nil), nil, func() time.Time { return fixedNow })

	recs, total, err := svc.Recommendations(ctx)
	if err != nil {
		t.Fatalf("recommendations: %v", err)
	}
	if len(recs) != 1 || recs[0].Type != core.RecSuccess || !total.IsZero() {
		t.Fatalf("empty profile recommendations = %+v, total %v", recs, total)
	}

	trend, err := svc.Trend(ctx, 0)
	if err != nil || len(trend) != 6 {
		t.Fatalf("trend = %d buckets, %v", len(trend), err)
	}
	trend, _ = svc.Trend(ctx, 12)
	if len(trend) != 12 || trend[11].Month != 3 {
		t.Fatalf("trend window = %+v", trend)
	}
}
