package analytics

import (
	"time"

	"budgetwise/internal/core"
)

// AverageDailySpending divides total expenses by the number of distinct
// days that had at least one expense. It is zero without expenses.
func AverageDailySpending(txs []core.Transaction) core.Money {
	total, days := expenseDays(txs)
	return total.MulDiv(1, int64(days))
}

func expenseDays(txs []core.Transaction) (core.Money, int) {
	var total core.Money
	days := make(map[string]struct{})
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		total = total.Add(t.Amount)
		days[t.Date.String()] = struct{}{}
	}
	return total, len(days)
}

// PredictMonthEnd extrapolates this month's expenses to the last day of the
// month at the current average daily rate.
func PredictMonthEnd(txs []core.Transaction, now time.Time) core.Prediction {
	month := FilterByPeriod(txs, core.PeriodMonth, now)
	current, days := expenseDays(month)

	y, m, d := now.Date()
	daysInMonth := time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
	remaining := daysInMonth - d

	// current/days*remaining in one rounding step
	predicted := current.Add(current.MulDiv(int64(remaining), int64(days)))

	return core.Prediction{
		Current:       current,
		Predicted:     predicted,
		DaysRemaining: remaining,
	}
}
