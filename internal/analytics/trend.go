package analytics

import (
	"time"

	"budgetwise/internal/core"
)

// DefaultTrendMonths is the window SpendingTrend uses when given none.
const DefaultTrendMonths = 6

// SpendingTrend returns one bucket per calendar month for the months ending
// at now's month, oldest first. The result always has exactly months
// entries, zero-valued where nothing happened.
func SpendingTrend(txs []core.Transaction, now time.Time, months int) []core.TrendBucket {
	if months <= 0 {
		months = DefaultTrendMonths
	}

	y, m, _ := now.Date()
	buckets := make([]core.TrendBucket, months)
	index := make(map[[2]int]int, months)
	for i := 0; i < months; i++ {
		first := time.Date(y, m-time.Month(months-1-i), 1, 0, 0, 0, 0, time.UTC)
		buckets[i] = core.TrendBucket{
			Label: first.Format("Jan 2006"),
			Year:  first.Year(),
			Month: int(first.Month()),
		}
		index[[2]int{first.Year(), int(first.Month())}] = i
	}

	for _, t := range txs {
		i, ok := index[[2]int{t.Date.Year(), t.Date.Month()}]
		if !ok {
			continue
		}
		switch t.Type {
		case core.Income:
			buckets[i].Income = buckets[i].Income.Add(t.Amount)
		case core.Expense:
			buckets[i].Expenses = buckets[i].Expenses.Add(t.Amount)
		}
	}
	return buckets
}

// CompareWithPreviousMonth compares the expenses of the month period with
// those of the previous calendar month.
//
// PercentageChange is 0 when last month had no expenses. Trend is "up" only
// for a strictly positive difference; no change reports "down".
func CompareWithPreviousMonth(txs []core.Transaction, now time.Time) core.MonthComparison {
	y, m, _ := now.Date()
	prev := time.Date(y, m-1, 1, 0, 0, 0, 0, time.UTC)

	this := TotalExpenses(FilterByPeriod(txs, core.PeriodMonth, now))
	last := TotalExpenses(FilterByMonth(txs, prev.Year(), prev.Month()))
	diff := this.Sub(last)

	cmp := core.MonthComparison{
		ThisMonth:  this,
		LastMonth:  last,
		Difference: diff,
		Trend:      core.TrendDown,
	}
	if last.Cents > 0 {
		cmp.PercentageChange = diff.Ratio(last)
	}
	if diff.Cents > 0 {
		cmp.Trend = core.TrendUp
	}
	return cmp
}
