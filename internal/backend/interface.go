package backend

import (
	"context"

	"budgetwise/internal/amqp"
	"budgetwise/internal/ports"
	"budgetwise/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the profile store and the optional collaborators
// built alongside it.
type BackendResult struct {
	Store ports.Store
	// Queue is set when the store tracks mirror status.
	Queue ports.MirrorQueue
	// Events is nil when AMQP is disabled or unreachable.
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a store and its event client.
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreateMirror returns the Google Sheets mirror when a spreadsheet is
	// configured and an in-memory mirror otherwise.
	CreateMirror(ctx context.Context, config Config) (sheets.Mirror, error)
}

// BackendType names a store implementation.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (t BackendType) IsValid() bool {
	return t == SQLiteBackend || t == MemoryBackend
}

func (t BackendType) String() string {
	return string(t)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath   string
	MemorySeedFile string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
}
