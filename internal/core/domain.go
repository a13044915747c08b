package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Category keys of the built-in taxonomy. Any other string is accepted as an
// opaque label.
const (
	CategoryFood          = "food"
	CategoryTransport     = "transport"
	CategoryShopping      = "shopping"
	CategoryBills         = "bills"
	CategoryEntertainment = "entertainment"
	CategoryHealth        = "health"
	CategoryEducation     = "education"
	CategoryOther         = "other"
	CategorySalary        = "salary"
	CategoryFreelance     = "freelance"
	CategoryInvestment    = "investment"
	CategoryGift          = "gift"

	// Pseudo-categories used by budgets and recommendations.
	CategoryOverall = "overall"
	CategorySavings = "savings"
)

// Taxonomy lists the built-in categories in display order.
var Taxonomy = []string{
	CategoryFood, CategoryTransport, CategoryShopping, CategoryBills,
	CategoryEntertainment, CategoryHealth, CategoryEducation, CategoryOther,
	CategorySalary, CategoryFreelance, CategoryInvestment, CategoryGift,
	CategorySavings,
}

const maxDescriptionLen = 200

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      Money           `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description,omitempty"`
		Date        Date            `json:"date"`
		CreatedAt   time.Time       `json:"createdAt"`
	}

	// BudgetConfig maps a category to its monthly limit. A missing or zero
	// limit means no budget is set for that category. The savings key holds
	// the monthly savings goal.
	BudgetConfig map[string]Money

	Settings struct {
		DarkMode bool   `json:"darkMode"`
		Currency string `json:"currency"`
	}

	// Snapshot is the full exported state of a profile.
	Snapshot struct {
		Transactions []Transaction `json:"transactions"`
		Budgets      BudgetConfig  `json:"budgets"`
		Settings     *Settings     `json:"settings,omitempty"`
		ExportedAt   time.Time     `json:"exportedAt"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrInvalidBudget      = errors.New("invalid budget limit")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrEmptyID            = errors.New("transaction id is empty")
)

// NewDate creates a new Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDate(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseTransactionType accepts "income" or "expense" in any case.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.ToLower(strings.TrimSpace(s))); t {
	case Income, Expense:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

func (t Transaction) IsIncome() bool  { return t.Type == Income }
func (t Transaction) IsExpense() bool { return t.Type == Expense }

func (t Transaction) Validate() error {
	if t.Type != Income && t.Type != Expense {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if t.Amount.Cents < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidAmount)
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(t.Description) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

// Normalize trims free-text fields and defaults an empty category to other.
func (t Transaction) Normalize() Transaction {
	t.Description = strings.TrimSpace(t.Description)
	t.Category = strings.TrimSpace(t.Category)
	if t.Category == "" {
		t.Category = CategoryOther
	}
	return t
}

// DefaultBudgets returns the budget categories a fresh profile starts with,
// all unset.
func DefaultBudgets() BudgetConfig {
	return BudgetConfig{
		CategoryFood:          {},
		CategoryTransport:     {},
		CategoryShopping:      {},
		CategoryBills:         {},
		CategoryEntertainment: {},
		CategoryHealth:        {},
		CategorySavings:       {},
	}
}

// Limit returns the limit for category and whether one is set.
func (b BudgetConfig) Limit(category string) (Money, bool) {
	m, ok := b[category]
	return m, ok && m.Cents > 0
}

// SavingsGoal returns the monthly savings goal, zero when unset.
func (b BudgetConfig) SavingsGoal() Money {
	return b[CategorySavings]
}

// Total sums every entry, the savings goal included.
func (b BudgetConfig) Total() Money {
	var total Money
	for _, m := range b {
		total = total.Add(m)
	}
	return total
}

// Categories returns the keys with taxonomy categories first, in taxonomy
// order, followed by any other keys sorted by name.
func (b BudgetConfig) Categories() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := taxonomyRank(keys[i]), taxonomyRank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func taxonomyRank(category string) int {
	for i, c := range Taxonomy {
		if c == category {
			return i
		}
	}
	return len(Taxonomy)
}

func (b BudgetConfig) Clone() BudgetConfig {
	out := make(BudgetConfig, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

func (b BudgetConfig) Validate() error {
	for k, v := range b {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("%w: empty category", ErrInvalidBudget)
		}
		if v.Cents < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidBudget, k)
		}
	}
	return nil
}

func DefaultSettings() Settings {
	return Settings{DarkMode: false, Currency: "USD"}
}
