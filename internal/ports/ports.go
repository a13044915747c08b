package ports

import (
	"context"

	"budgetwise/internal/core"
)

// Ports for the persistence adapters.
type (
	TransactionStore interface {
		// ListTransactions returns every transaction, newest first.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		AddTransaction(ctx context.Context, t core.Transaction) error
		// AddTransactions stores a batch atomically.
		AddTransactions(ctx context.Context, ts []core.Transaction) error
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		// DeleteTransaction returns core.ErrNotFound for an unknown id.
		DeleteTransaction(ctx context.Context, id string) error
	}

	BudgetStore interface {
		GetBudgets(ctx context.Context) (core.BudgetConfig, error)
		// SaveBudgets replaces the whole configuration.
		SaveBudgets(ctx context.Context, b core.BudgetConfig) error
	}

	SettingsStore interface {
		GetSettings(ctx context.Context) (core.Settings, error)
		SaveSettings(ctx context.Context, s core.Settings) error
	}

	// Store is a complete profile backend.
	Store interface {
		TransactionStore
		BudgetStore
		SettingsStore

		// Export returns the profile without ExportedAt set.
		Export(ctx context.Context) (core.Snapshot, error)
		// Import replaces the parts of the profile present in snap. Nil
		// transactions, budgets or settings leave the current values as-is.
		Import(ctx context.Context, snap core.Snapshot) error
		Clear(ctx context.Context) error
		Close() error
	}

	// MirrorQueue tracks which transactions still need to be copied to an
	// external mirror.
	MirrorQueue interface {
		PendingMirror(ctx context.Context, limit int) ([]string, error)
		MarkMirrored(ctx context.Context, id string) error
		MarkMirrorError(ctx context.Context, id string) error
	}
)
