// Package analytics turns a transaction log and a budget configuration into
// derived metrics: totals, category aggregates, monthly trends, month-end
// predictions and budget utilization.
//
// Every function is pure. Inputs are never mutated and time-relative
// functions take the current moment as an explicit argument. Period
// boundaries are calendar days computed in now's location; transaction dates
// are calendar days and compare against them directly.
package analytics

import (
	"time"

	"budgetwise/internal/core"
)

// FilterByPeriod returns the transactions dated inside period, keeping their
// original order. Unknown periods return the input unfiltered.
func FilterByPeriod(txs []core.Transaction, period core.Period, now time.Time) []core.Transaction {
	start, ok := PeriodStart(period, now)
	if !ok {
		return filter(txs, func(core.Transaction) bool { return true })
	}
	return filter(txs, func(t core.Transaction) bool {
		return !t.Date.Before(start.Time)
	})
}

// PeriodStart returns the first calendar day of period relative to now.
// The week starts on Sunday. It reports false for all and unknown periods.
func PeriodStart(period core.Period, now time.Time) (core.Date, bool) {
	y, m, d := now.Date()
	switch period {
	case core.PeriodToday:
		return core.NewDate(y, int(m), d), true
	case core.PeriodWeek:
		return core.NewDate(y, int(m), d-int(now.Weekday())), true
	case core.PeriodMonth:
		return core.NewDate(y, int(m), 1), true
	case core.PeriodYear:
		return core.NewDate(y, 1, 1), true
	default:
		return core.Date{}, false
	}
}

// FilterByRange keeps transactions dated between from and to, both inclusive.
func FilterByRange(txs []core.Transaction, from, to core.Date) []core.Transaction {
	return filter(txs, func(t core.Transaction) bool {
		return !t.Date.Before(from.Time) && !t.Date.After(to.Time)
	})
}

// FilterByMonth keeps transactions whose month and year both match.
func FilterByMonth(txs []core.Transaction, year int, month time.Month) []core.Transaction {
	return filter(txs, func(t core.Transaction) bool {
		return t.Date.Year() == year && t.Date.Month() == int(month)
	})
}

// FilterByCategory keeps transactions in category; "all" and "" keep everything.
func FilterByCategory(txs []core.Transaction, category string) []core.Transaction {
	if category == "" || category == "all" {
		return filter(txs, func(core.Transaction) bool { return true })
	}
	return filter(txs, func(t core.Transaction) bool { return t.Category == category })
}

func filter(txs []core.Transaction, keep func(core.Transaction) bool) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
