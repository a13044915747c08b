package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"budgetwise/internal/core"
	"budgetwise/internal/sheets"
)

var _ sheets.Mirror = (*Mirror)(nil)

// Mirror is an in-process stand-in for the spreadsheet mirror, used when no
// spreadsheet is configured. It keeps rows in append order and logs writes.
type Mirror struct {
	mu   sync.Mutex
	rows []core.Transaction
}

func New() *Mirror {
	return &Mirror{}
}

// Append stores the transaction and returns a synthetic row reference.
func (m *Mirror) Append(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.ID == t.ID {
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	m.rows = append(m.rows, t)
	ref := fmt.Sprintf("mem:%d", len(m.rows))
	slog.InfoContext(ctx, "Transaction mirrored in memory", "id", t.ID, "ref", ref)
	return ref, nil
}

// Delete drops the row of id; unknown ids are ignored.
func (m *Mirror) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i:i], m.rows[i+1:]...)
			slog.InfoContext(ctx, "Transaction removed from memory mirror", "id", id)
			return nil
		}
	}
	return nil
}

// Rows returns a copy of the mirrored transactions in append order.
func (m *Mirror) Rows() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Transaction(nil), m.rows...)
}
