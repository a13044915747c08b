package analytics

import (
	"sort"

	"budgetwise/internal/core"
)

// DefaultTopCategories is the limit TopCategories applies when given none.
const DefaultTopCategories = 5

func TotalIncome(txs []core.Transaction) core.Money {
	return sumOf(txs, core.Income)
}

func TotalExpenses(txs []core.Transaction) core.Money {
	return sumOf(txs, core.Expense)
}

// Balance is total income minus total expenses.
func Balance(txs []core.Transaction) core.Money {
	return TotalIncome(txs).Sub(TotalExpenses(txs))
}

func sumOf(txs []core.Transaction, typ core.TransactionType) core.Money {
	var total core.Money
	for _, t := range txs {
		if t.Type == typ {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// SpendingByCategory sums expenses per category. Categories without
// expenses are absent from the result.
func SpendingByCategory(txs []core.Transaction) map[string]core.Money {
	out := make(map[string]core.Money)
	for _, t := range txs {
		if t.Type == core.Expense {
			out[t.Category] = out[t.Category].Add(t.Amount)
		}
	}
	return out
}

// TopCategories returns the limit biggest expense categories, largest first.
// Equal amounts keep the order in which their category first appeared.
func TopCategories(txs []core.Transaction, limit int) []core.CategoryAmount {
	if limit <= 0 {
		limit = DefaultTopCategories
	}

	totals := make(map[string]int)
	var out []core.CategoryAmount
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		i, seen := totals[t.Category]
		if !seen {
			i = len(out)
			totals[t.Category] = i
			out = append(out, core.CategoryAmount{Category: t.Category})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
