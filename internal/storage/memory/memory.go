package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"budgetwise/internal/core"
	"budgetwise/internal/ports"
)

var _ ports.Store = (*Store)(nil)

// Store keeps one profile in memory. Transactions are held newest first.
type Store struct {
	mu       sync.Mutex
	items    []core.Transaction
	budgets  core.BudgetConfig
	settings core.Settings
}

func New() *Store {
	return &Store{budgets: core.DefaultBudgets(), settings: core.DefaultSettings()}
}

// NewFromFile seeds the store from a JSON snapshot. A missing file yields an
// empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if err := s.Import(context.Background(), snap); err != nil {
		return nil, fmt.Errorf("seed store: %w", err)
	}
	return s, nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...), nil
}

func (s *Store) AddTransaction(ctx context.Context, t core.Transaction) error {
	return s.AddTransactions(ctx, []core.Transaction{t})
}

// AddTransactions validates the whole batch before storing any of it. Each
// transaction is put in front of the previous one.
func (s *Store) AddTransactions(_ context.Context, ts []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(ts))
	for _, t := range ts {
		if err := t.Validate(); err != nil {
			return err
		}
		if t.ID == "" {
			return core.ErrEmptyID
		}
		if _, dup := seen[t.ID]; dup || s.indexOf(t.ID) >= 0 {
			return fmt.Errorf("transaction %s: %w", t.ID, core.ErrConflict)
		}
		seen[t.ID] = struct{}{}
	}

	items := make([]core.Transaction, 0, len(ts)+len(s.items))
	for i := len(ts) - 1; i >= 0; i-- {
		items = append(items, ts[i])
	}
	s.items = append(items, s.items...)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return s.items[i], nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.items {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) GetBudgets(_ context.Context) (core.BudgetConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets.Clone(), nil
}

func (s *Store) SaveBudgets(_ context.Context, b core.BudgetConfig) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = b.Clone()
	return nil
}

func (s *Store) GetSettings(_ context.Context) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *Store) SaveSettings(_ context.Context, st core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = st
	return nil
}

func (s *Store) Export(_ context.Context) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings := s.settings
	return core.Snapshot{
		Transactions: append([]core.Transaction{}, s.items...),
		Budgets:      s.budgets.Clone(),
		Settings:     &settings,
	}, nil
}

// Import replaces the sections present in snap. Transactions must carry
// unique, non-empty IDs.
func (s *Store) Import(_ context.Context, snap core.Snapshot) error {
	seen := make(map[string]struct{}, len(snap.Transactions))
	for _, t := range snap.Transactions {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		if t.ID == "" {
			return core.ErrEmptyID
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("transaction %s: %w", t.ID, core.ErrConflict)
		}
		seen[t.ID] = struct{}{}
	}
	if err := snap.Budgets.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Transactions != nil {
		s.items = append([]core.Transaction(nil), snap.Transactions...)
	}
	if snap.Budgets != nil {
		s.budgets = snap.Budgets.Clone()
	}
	if snap.Settings != nil {
		s.settings = *snap.Settings
	}
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.budgets = core.DefaultBudgets()
	s.settings = core.DefaultSettings()
	return nil
}

func (s *Store) Close() error { return nil }
