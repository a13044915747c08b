package sheets

import (
	"context"

	"budgetwise/internal/core"
)

// Ports for the spreadsheet mirror.
type (
	// TransactionWriter appends a transaction row. Appending an id that is
	// already present returns the existing row reference.
	TransactionWriter interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// TransactionDeleter removes the row of a transaction. A missing row is
	// not an error.
	TransactionDeleter interface {
		Delete(ctx context.Context, id string) error
	}

	Mirror interface {
		TransactionWriter
		TransactionDeleter
	}
)
