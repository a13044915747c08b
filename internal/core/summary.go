package core

import "strings"

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

const (
	RecWarning RecommendationType = "warning"
	RecCaution RecommendationType = "caution"
	RecAlert   RecommendationType = "alert"
	RecTip     RecommendationType = "tip"
	RecGoal    RecommendationType = "goal"
	RecSuccess RecommendationType = "success"
)

const (
	TrendUp   = "up"
	TrendDown = "down"
)

type (
	// Period is a calendar window relative to the current moment.
	Period string

	RecommendationType string

	// CategoryAmount represents an amount aggregated by category name.
	CategoryAmount struct {
		Category string `json:"category"`
		Amount   Money  `json:"amount"`
	}

	// TrendBucket holds one calendar month's totals.
	TrendBucket struct {
		Label    string `json:"month"`
		Year     int    `json:"year"`
		Month    int    `json:"monthNumber"` // 1-12
		Income   Money  `json:"income"`
		Expenses Money  `json:"expenses"`
	}

	MonthComparison struct {
		ThisMonth        Money   `json:"thisMonth"`
		LastMonth        Money   `json:"lastMonth"`
		Difference       Money   `json:"difference"`
		PercentageChange float64 `json:"percentageChange"`
		Trend            string  `json:"trend"`
	}

	Prediction struct {
		Current       Money `json:"current"`
		Predicted     Money `json:"predicted"`
		DaysRemaining int   `json:"daysRemaining"`
	}

	Utilization struct {
		Budget     Money   `json:"budget"`
		Spent      Money   `json:"spent"`
		Remaining  Money   `json:"remaining"`
		Percentage float64 `json:"percentage"`
	}

	Recommendation struct {
		Type             RecommendationType `json:"type"`
		Category         string             `json:"category"`
		Title            string             `json:"title"`
		Message          string             `json:"message"`
		EstimatedSavings Money              `json:"savings"`
	}
)

// ParsePeriod maps s to a Period; anything unrecognised means all.
func ParsePeriod(s string) Period {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodYear:
		return p
	default:
		return PeriodAll
	}
}
