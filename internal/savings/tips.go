package savings

import "budgetwise/internal/core"

const genericTip = "Review this category for potential savings opportunities."

var tips = map[string]string{
	core.CategoryFood:          "Try meal planning and cooking at home more often to save 20-30%.",
	core.CategoryTransport:     "Consider carpooling, public transit, or biking to reduce costs.",
	core.CategoryShopping:      "Use the 24-hour rule: wait a day before making non-essential purchases.",
	core.CategoryBills:         "Review subscriptions and negotiate better rates with providers.",
	core.CategoryEntertainment: "Look for free or low-cost activities and use streaming services wisely.",
	core.CategoryHealth:        "Use generic medications and preventive care to reduce long-term costs.",
	core.CategoryEducation:     "Explore free online courses and library resources.",
	core.CategoryOther:         "Track and categorize these expenses to identify patterns.",
}

var names = map[string]string{
	core.CategoryFood:          "Food & Dining",
	core.CategoryTransport:     "Transportation",
	core.CategoryShopping:      "Shopping",
	core.CategoryBills:         "Bills & Utilities",
	core.CategoryEntertainment: "Entertainment",
	core.CategoryHealth:        "Healthcare",
	core.CategoryEducation:     "Education",
	core.CategoryOther:         "Other",
	core.CategoryOverall:       "Overall Spending",
	core.CategorySavings:       "Savings",
}

// CategoryTip returns the savings suggestion for category, or a generic one.
func CategoryTip(category string) string {
	if tip, ok := tips[category]; ok {
		return tip
	}
	return genericTip
}

// CategoryName returns the display name for category; unknown categories
// are shown as-is.
func CategoryName(category string) string {
	if name, ok := names[category]; ok {
		return name
	}
	return category
}
