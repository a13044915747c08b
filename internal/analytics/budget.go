package analytics

import "budgetwise/internal/core"

// BudgetUtilization reports spending against every category with a limit
// above zero. Unset and zero limits produce no entry. Remaining goes
// negative once a category is overspent.
func BudgetUtilization(txs []core.Transaction, budgets core.BudgetConfig) map[string]core.Utilization {
	spending := SpendingByCategory(txs)
	out := make(map[string]core.Utilization)
	for category := range budgets {
		limit, ok := budgets.Limit(category)
		if !ok {
			continue
		}
		spent := spending[category]
		out[category] = core.Utilization{
			Budget:     limit,
			Spent:      spent,
			Remaining:  limit.Sub(spent),
			Percentage: spent.Ratio(limit),
		}
	}
	return out
}
