package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"budgetwise/internal/analytics"
	"budgetwise/internal/cache"
	"budgetwise/internal/core"
	"budgetwise/internal/ports"
	"budgetwise/internal/savings"
)

const topCategoryLimit = 5

// Dashboard is the report behind the main screen. Monthly figures always
// refer to the calendar month containing GeneratedAt; Period figures follow
// the requested filter.
type Dashboard struct {
	Period      core.Period `json:"period"`
	GeneratedAt time.Time   `json:"generatedAt"`

	Balance         core.Money `json:"balance"`
	MonthlyIncome   core.Money `json:"monthlyIncome"`
	MonthlyExpenses core.Money `json:"monthlyExpenses"`
	MonthlyNet      core.Money `json:"monthlyNet"`

	PeriodIncome       core.Money            `json:"periodIncome"`
	PeriodExpenses     core.Money            `json:"periodExpenses"`
	TransactionCount   int                   `json:"transactionCount"`
	SpendingByCategory map[string]core.Money `json:"spendingByCategory"`
	TopCategories      []core.CategoryAmount `json:"topCategories"`

	Trend        []core.TrendBucket          `json:"trend"`
	Comparison   core.MonthComparison        `json:"comparison"`
	Prediction   core.Prediction             `json:"prediction"`
	AverageDaily core.Money                  `json:"averageDaily"`
	Budgets      map[string]core.Utilization `json:"budgets"`

	Recommendations  []core.Recommendation `json:"recommendations"`
	PotentialSavings core.Money            `json:"potentialSavings"`
	// SavingsProgress is nil while no savings goal is set.
	SavingsProgress *float64 `json:"savingsProgress"`
}

// InsightService composes the analytics over the stored profile. Reports are
// cached per period and calendar day until the next write.
type InsightService struct {
	store ports.Store
	cache *cache.LRUCache[Dashboard]
	now   func() time.Time
}

// NewInsightService wires the service. reports may be nil to disable caching.
func NewInsightService(store ports.Store, reports *cache.LRUCache[Dashboard], now func() time.Time) *InsightService {
	if now == nil {
		now = time.Now
	}
	return &InsightService{store: store, cache: reports, now: now}
}

// Dashboard builds the report for period.
func (s *InsightService) Dashboard(ctx context.Context, period core.Period) (Dashboard, error) {
	now := s.now()
	key := string(period) + "|" + core.DateOf(now).String()
	if s.cache != nil {
		if d, ok := s.cache.Get(key); ok {
			slog.DebugContext(ctx, "Dashboard served from cache", "period", period)
			return d, nil
		}
	}

	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list transactions: %w", err)
	}
	budgets, err := s.store.GetBudgets(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("get budgets: %w", err)
	}

	d := BuildDashboard(txs, budgets, period, now)
	if s.cache != nil {
		s.cache.Set(key, d)
	}
	return d, nil
}

// Recommendations returns this month's recommendations.
func (s *InsightService) Recommendations(ctx context.Context) ([]core.Recommendation, core.Money, error) {
	d, err := s.Dashboard(ctx, core.PeriodMonth)
	if err != nil {
		return nil, core.Money{}, err
	}
	return d.Recommendations, d.PotentialSavings, nil
}

// Trend returns months buckets ending with the current month.
func (s *InsightService) Trend(ctx context.Context, months int) ([]core.TrendBucket, error) {
	if months <= 0 {
		months = analytics.DefaultTrendMonths
	}
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return analytics.SpendingTrend(txs, s.now(), months), nil
}

// Invalidate drops every cached report.
func (s *InsightService) Invalidate() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

// BuildDashboard computes the report without touching any store.
func BuildDashboard(txs []core.Transaction, budgets core.BudgetConfig, period core.Period, now time.Time) Dashboard {
	month := analytics.FilterByPeriod(txs, core.PeriodMonth, now)
	inPeriod := analytics.FilterByPeriod(txs, period, now)

	monthIncome := analytics.TotalIncome(month)
	monthExpenses := analytics.TotalExpenses(month)
	balance := analytics.Balance(txs)
	recs := savings.Generate(txs, budgets, now)

	return Dashboard{
		Period:      period,
		GeneratedAt: now,

		Balance:         balance,
		MonthlyIncome:   monthIncome,
		MonthlyExpenses: monthExpenses,
		MonthlyNet:      monthIncome.Sub(monthExpenses),

		PeriodIncome:       analytics.TotalIncome(inPeriod),
		PeriodExpenses:     analytics.TotalExpenses(inPeriod),
		TransactionCount:   len(inPeriod),
		SpendingByCategory: analytics.SpendingByCategory(inPeriod),
		TopCategories:      analytics.TopCategories(inPeriod, topCategoryLimit),

		Trend:        analytics.SpendingTrend(txs, now, analytics.DefaultTrendMonths),
		Comparison:   analytics.CompareWithPreviousMonth(txs, now),
		Prediction:   analytics.PredictMonthEnd(txs, now),
		AverageDaily: analytics.AverageDailySpending(inPeriod),
		Budgets:      analytics.BudgetUtilization(month, budgets),

		Recommendations:  recs,
		PotentialSavings: savings.TotalPotentialSavings(recs),
		SavingsProgress:  savingsProgress(balance, budgets.SavingsGoal()),
	}
}

// savingsProgress is balance over goal in percent, kept within [0, 100].
func savingsProgress(balance, goal core.Money) *float64 {
	if goal.Cents <= 0 {
		return nil
	}
	p := balance.Ratio(goal)
	p = math.Max(0, math.Min(p, 100))
	p = math.Round(p*10) / 10
	return &p
}
