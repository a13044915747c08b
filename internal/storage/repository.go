package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budgetwise/internal/core"
	"budgetwise/internal/ports"

	_ "modernc.org/sqlite"
)

var (
	_ ports.Store       = (*SQLiteRepository)(nil)
	_ ports.MirrorQueue = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time keeps read-then-write sequences serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListTransactions implements ports.TransactionStore
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := toCore(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// AddTransaction implements ports.TransactionStore
func (r *SQLiteRepository) AddTransaction(ctx context.Context, t core.Transaction) error {
	return r.AddTransactions(ctx, []core.Transaction{t})
}

// AddTransactions inserts the batch in one SQL transaction; a failing row
// rolls back the whole batch.
func (r *SQLiteRepository) AddTransactions(ctx context.Context, ts []core.Transaction) error {
	err := r.inTx(ctx, func(q *Queries) error {
		for _, t := range ts {
			if err := insert(ctx, q, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "Transactions saved to SQLite", "count", len(ts))
	return nil
}

func insert(ctx context.Context, q *Queries, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.ID == "" {
		return core.ErrEmptyID
	}
	if _, err := q.GetTransaction(ctx, t.ID); err == nil {
		return fmt.Errorf("transaction %s: %w", t.ID, core.ErrConflict)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check transaction %s: %w", t.ID, err)
	}
	err := q.CreateTransaction(ctx, CreateTransactionParams{
		ID:          t.ID,
		Type:        string(t.Type),
		AmountCents: t.Amount.Cents,
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date.String(),
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("create transaction %s: %w", t.ID, err)
	}
	return nil
}

// GetTransaction implements ports.TransactionStore
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	return toCore(row)
}

// DeleteTransaction implements ports.TransactionStore
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

func toCore(row Transaction) (core.Transaction, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", row.ID, err)
	}
	created, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: parse created_at: %w", row.ID, err)
	}
	return core.Transaction{
		ID:          row.ID,
		Type:        core.TransactionType(row.Type),
		Amount:      core.Cents(row.AmountCents),
		Category:    row.Category,
		Description: row.Description,
		Date:        date,
		CreatedAt:   created,
	}, nil
}

// GetBudgets implements ports.BudgetStore
func (r *SQLiteRepository) GetBudgets(ctx context.Context) (core.BudgetConfig, error) {
	rows, err := r.queries.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make(core.BudgetConfig, len(rows))
	for _, b := range rows {
		out[b.Category] = core.Cents(b.LimitCents)
	}
	return out, nil
}

// SaveBudgets implements ports.BudgetStore
func (r *SQLiteRepository) SaveBudgets(ctx context.Context, b core.BudgetConfig) error {
	if err := b.Validate(); err != nil {
		return err
	}
	return r.inTx(ctx, func(q *Queries) error {
		return replaceBudgets(ctx, q, b)
	})
}

func replaceBudgets(ctx context.Context, q *Queries, b core.BudgetConfig) error {
	if err := q.DeleteAllBudgets(ctx); err != nil {
		return fmt.Errorf("clear budgets: %w", err)
	}
	for _, category := range b.Categories() {
		if err := q.InsertBudget(ctx, Budget{Category: category, LimitCents: b[category].Cents}); err != nil {
			return fmt.Errorf("insert budget %s: %w", category, err)
		}
	}
	return nil
}

// GetSettings implements ports.SettingsStore
func (r *SQLiteRepository) GetSettings(ctx context.Context) (core.Settings, error) {
	s, err := r.queries.GetSettings(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultSettings(), nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return core.Settings{DarkMode: s.DarkMode, Currency: s.Currency}, nil
}

// SaveSettings implements ports.SettingsStore
func (r *SQLiteRepository) SaveSettings(ctx context.Context, s core.Settings) error {
	if err := r.queries.UpsertSettings(ctx, Setting{DarkMode: s.DarkMode, Currency: s.Currency}); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Export implements ports.Store
func (r *SQLiteRepository) Export(ctx context.Context) (core.Snapshot, error) {
	txs, err := r.ListTransactions(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	budgets, err := r.GetBudgets(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	settings, err := r.GetSettings(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	return core.Snapshot{Transactions: txs, Budgets: budgets, Settings: &settings}, nil
}

// Import implements ports.Store. Snapshot transactions are newest first, so
// they are inserted oldest first to keep that order.
func (r *SQLiteRepository) Import(ctx context.Context, snap core.Snapshot) error {
	if err := snap.Budgets.Validate(); err != nil {
		return err
	}
	err := r.inTx(ctx, func(q *Queries) error {
		if snap.Transactions != nil {
			if err := q.DeleteAllTransactions(ctx); err != nil {
				return fmt.Errorf("clear transactions: %w", err)
			}
			for i := len(snap.Transactions) - 1; i >= 0; i-- {
				if err := insert(ctx, q, snap.Transactions[i]); err != nil {
					return err
				}
			}
		}
		if snap.Budgets != nil {
			if err := replaceBudgets(ctx, q, snap.Budgets); err != nil {
				return err
			}
		}
		if snap.Settings != nil {
			if err := q.UpsertSettings(ctx, Setting{DarkMode: snap.Settings.DarkMode, Currency: snap.Settings.Currency}); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Snapshot imported into SQLite",
		"transactions", len(snap.Transactions),
		"budgets", len(snap.Budgets),
		"settings", snap.Settings != nil)
	return nil
}

// Clear implements ports.Store. Budgets and settings go back to defaults.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	defaults := core.DefaultSettings()
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.DeleteAllTransactions(ctx); err != nil {
			return fmt.Errorf("clear transactions: %w", err)
		}
		if err := replaceBudgets(ctx, q, core.DefaultBudgets()); err != nil {
			return err
		}
		return q.UpsertSettings(ctx, Setting{DarkMode: defaults.DarkMode, Currency: defaults.Currency})
	})
}

// PendingMirror implements ports.MirrorQueue
func (r *SQLiteRepository) PendingMirror(ctx context.Context, limit int) ([]string, error) {
	ids, err := r.queries.GetPendingMirror(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending mirror: %w", err)
	}
	return ids, nil
}

// MarkMirrored implements ports.MirrorQueue
func (r *SQLiteRepository) MarkMirrored(ctx context.Context, id string) error {
	return r.setMirrorStatus(ctx, id, MirrorMirrored)
}

// MarkMirrorError implements ports.MirrorQueue
func (r *SQLiteRepository) MarkMirrorError(ctx context.Context, id string) error {
	if err := r.setMirrorStatus(ctx, id, MirrorError); err != nil {
		return err
	}
	slog.WarnContext(ctx, "Transaction marked with mirror error", "id", id)
	return nil
}

func (r *SQLiteRepository) setMirrorStatus(ctx context.Context, id, status string) error {
	n, err := r.queries.SetMirrorStatus(ctx, SetMirrorStatusParams{MirrorStatus: status, ID: id})
	if err != nil {
		return fmt.Errorf("set mirror status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return nil
}
