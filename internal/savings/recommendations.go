// Package savings turns a transaction log and a budget configuration into a
// short, ordered list of advisory recommendations.
//
// Generation order is fixed and is also the truncation boundary: category
// overspend and near-limit checks, the month-over-month alert, the top
// category tip, the projected total overrun, the savings goal, and finally a
// success message when nothing else fired.
package savings

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"budgetwise/internal/analytics"
	"budgetwise/internal/core"
)

const (
	// MaxRecommendations caps the generated list.
	MaxRecommendations = 5

	cautionThreshold   = 80.0
	overspendThreshold = 100.0
	alertThreshold     = 20.0
	goalThreshold      = 50.0
	tipPercent         = 10.0
)

// tipMinimum is the spend a top category needs before a tip is offered.
var tipMinimum = core.Cents(50000)

// Generate builds recommendations for the month containing now.
func Generate(txs []core.Transaction, budgets core.BudgetConfig, now time.Time) []core.Recommendation {
	month := analytics.FilterByPeriod(txs, core.PeriodMonth, now)
	util := analytics.BudgetUtilization(month, budgets)

	var recs []core.Recommendation

	for _, category := range budgets.Categories() {
		u, ok := util[category]
		if !ok {
			continue
		}
		name := CategoryName(category)
		switch {
		case u.Percentage > overspendThreshold:
			overspent := u.Spent.Sub(u.Budget)
			recs = append(recs, core.Recommendation{
				Type:     core.RecWarning,
				Category: category,
				Title:    "Over Budget on " + name,
				Message: fmt.Sprintf("You've exceeded your %s budget by %s (%s%% over).",
					name, overspent, formatPercent(u.Percentage-100)),
				EstimatedSavings: overspent,
			})
		case u.Percentage > cautionThreshold:
			recs = append(recs, core.Recommendation{
				Type:     core.RecCaution,
				Category: category,
				Title:    "Approaching Limit: " + name,
				Message: fmt.Sprintf("You have %s left in your %s budget this month.",
					u.Remaining, name),
			})
		}
	}

	cmp := analytics.CompareWithPreviousMonth(txs, now)
	if cmp.PercentageChange > alertThreshold {
		recs = append(recs, core.Recommendation{
			Type:     core.RecAlert,
			Category: core.CategoryOverall,
			Title:    "Spending Increased Significantly",
			Message: fmt.Sprintf("Your spending is %s%% higher than last month (%s more).",
				formatPercent(cmp.PercentageChange), cmp.Difference),
			EstimatedSavings: cmp.Difference,
		})
	}

	if top := analytics.TopCategories(month, 1); len(top) > 0 && top[0].Amount.Cents > tipMinimum.Cents {
		name := CategoryName(top[0].Category)
		recs = append(recs, core.Recommendation{
			Type:     core.RecTip,
			Category: top[0].Category,
			Title:    "Top Spending: " + name,
			Message: fmt.Sprintf("%s is your biggest expense at %s. %s",
				name, top[0].Amount, CategoryTip(top[0].Category)),
			EstimatedSavings: top[0].Amount.Percent(tipPercent),
		})
	}

	prediction := analytics.PredictMonthEnd(month, now)
	if total := budgets.Total(); total.Cents > 0 && prediction.Predicted.Cents > total.Cents {
		overrun := prediction.Predicted.Sub(total)
		recs = append(recs, core.Recommendation{
			Type:     core.RecWarning,
			Category: core.CategoryOverall,
			Title:    "Projected to Exceed Total Budget",
			Message: fmt.Sprintf("Based on current spending, you may exceed your total budget by %s by month end.",
				overrun),
			EstimatedSavings: overrun,
		})
	}

	if goal := budgets.SavingsGoal(); goal.Cents > 0 {
		saved := analytics.Balance(month)
		if progress := saved.Ratio(goal); progress < goalThreshold {
			recs = append(recs, core.Recommendation{
				Type:     core.RecGoal,
				Category: core.CategorySavings,
				Title:    "Savings Goal Progress",
				Message: fmt.Sprintf("You're at %s%% of your %s savings goal. Consider reducing discretionary spending.",
					formatPercent(progress), goal),
				EstimatedSavings: goal.Sub(saved),
			})
		}
	}

	if len(recs) == 0 {
		recs = append(recs, core.Recommendation{
			Type:     core.RecSuccess,
			Category: core.CategoryOverall,
			Title:    "Great Job! 🎉",
			Message:  "You're staying within your budgets and managing your finances well. Keep it up!",
		})
	}

	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}
	return recs
}

// TotalPotentialSavings sums the estimated savings of recs.
func TotalPotentialSavings(recs []core.Recommendation) core.Money {
	var total core.Money
	for _, r := range recs {
		total = total.Add(r.EstimatedSavings)
	}
	return total
}

// formatPercent renders p with at most one decimal: 12.5 -> "12.5", 25 -> "25".
func formatPercent(p float64) string {
	return decimal.NewFromFloat(p).Round(1).String()
}
