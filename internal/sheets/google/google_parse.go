package google

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"budgetwise/internal/core"
)

// Mirror sheet columns, A to F.
var header = []any{"ID", "Date", "Type", "Category", "Description", "Amount"}

const lastColumn = "F"

func toRow(t core.Transaction) []any {
	return []any{
		t.ID,
		t.Date.String(),
		string(t.Type),
		t.Category,
		t.Description,
		decimal.New(t.Amount.Cents, -2).StringFixed(2),
	}
}

// fromRow parses a mirror row back into a transaction. CreatedAt is not
// mirrored and stays zero.
func fromRow(row []any) (core.Transaction, error) {
	cols := toStrings(row)
	if len(cols) < 6 {
		return core.Transaction{}, fmt.Errorf("short row: %d columns", len(cols))
	}
	date, err := core.ParseDate(cols[1])
	if err != nil {
		return core.Transaction{}, err
	}
	typ, err := core.ParseTransactionType(cols[2])
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(cols[5])
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{
		ID:          cols[0],
		Type:        typ,
		Amount:      amount,
		Category:    cols[3],
		Description: cols[4],
		Date:        date,
	}
	return t.Normalize(), nil
}

// findRow returns the 1-based sheet row holding id in column A, or 0.
func findRow(values [][]any, id string) int {
	for i, row := range values {
		if len(row) > 0 && strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1
		}
	}
	return 0
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
