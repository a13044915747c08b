package google

import (
	"testing"

	"budgetwise/internal/core"
)

func TestRowRoundTrip(t *testing.T) {
	tx := core.Transaction{
		ID:          "abc",
		Type:        core.Expense,
		Amount:      core.Cents(123456),
		Category:    core.CategoryFood,
		Description: "Groceries",
		Date:        core.NewDate(2024, 3, 9),
	}
	row := toRow(tx)
	if row[1] != "2024-03-09" || row[5] != "1234.56" {
		t.Fatalf("row = %v", row)
	}

	got, err := fromRow(row)
	if err != nil {
		t.Fatalf("fromRow: %v", err)
	}
	if got.ID != tx.ID || got.Amount != tx.Amount || got.Date != tx.Date || got.Type != tx.Type || got.Category != tx.Category {
		t.Fatalf("round trip = %+v", got)
	}
}

func TestFromRowRejects(t *testing.T) {
	tests := []struct {
		name string
		row  []any
	}{
		{"short", []any{"a", "2024-01-01"}},
		{"bad date", []any{"a", "01/02/2024", "expense", "food", "", "1.00"}},
		{"bad type", []any{"a", "2024-01-02", "refund", "food", "", "1.00"}},
		{"negative amount", []any{"a", "2024-01-02", "expense", "food", "", "-1.00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := fromRow(tt.row); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestFindRow(t *testing.T) {
	values := [][]any{{"ID"}, {"a"}, {}, {" b "}}
	if got := findRow(values, "b"); got != 4 {
		t.Fatalf("findRow(b) = %d, want 4", got)
	}
	if got := findRow(values, "zzz"); got != 0 {
		t.Fatalf("findRow(zzz) = %d, want 0", got)
	}
}
