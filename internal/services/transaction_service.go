package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"budgetwise/internal/amqp"
	"budgetwise/internal/analytics"
	"budgetwise/internal/categorize"
	"budgetwise/internal/core"
	"budgetwise/internal/importer"
	"budgetwise/internal/ports"
)

// EventPublisher announces stored or removed transactions.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, kind amqp.EventKind, id string) error
}

// TransactionService orchestrates transaction writes across the store and
// the event broker. Writes are serialized so a batch import and a single add
// never interleave.
type TransactionService struct {
	store    ports.Store
	events   EventPublisher
	rules    *categorize.Rules
	now      func() time.Time
	newID    func() string
	onChange func()

	mu sync.Mutex
}

type Option func(*TransactionService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *TransactionService) { s.now = now }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *TransactionService) { s.newID = gen }
}

// WithRules sets the categorizer used for empty categories and CSV import.
func WithRules(r *categorize.Rules) Option {
	return func(s *TransactionService) { s.rules = r }
}

// WithChangeHook registers fn to run after every successful write.
func WithChangeHook(fn func()) Option {
	return func(s *TransactionService) { s.onChange = fn }
}

// NewTransactionService wires the service. events may be nil.
func NewTransactionService(store ports.Store, events EventPublisher, opts ...Option) *TransactionService {
	s := &TransactionService{
		store:  store,
		events: events,
		rules:  categorize.Default(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// prepare fills in id, creation time and category, then validates. New
// transactions must carry a non-zero amount.
func (s *TransactionService) prepare(t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = s.newID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC()
	}
	if t.Category == "" && t.Description != "" {
		t.Category = s.rules.Categorize(t.Description)
	}
	t = t.Normalize()
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.Amount.IsZero() {
		return core.Transaction{}, fmt.Errorf("%w: amount must be greater than zero", core.ErrInvalidAmount)
	}
	return t, nil
}

// Create stores a new transaction and returns it with id and timestamps set.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t, err := s.prepare(t)
	if err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	err = s.store.AddTransaction(ctx, t)
	s.mu.Unlock()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"transaction_id", t.ID,
		"type", t.Type,
		"category", t.Category,
		"amount_cents", t.Amount.Cents)

	s.publish(ctx, amqp.TransactionCreated, t.ID)
	s.changed()
	return t, nil
}

// Import stores a batch atomically: either every transaction is stored or
// none is.
func (s *TransactionService) Import(ctx context.Context, ts []core.Transaction) ([]core.Transaction, error) {
	prepared := make([]core.Transaction, 0, len(ts))
	for i, t := range ts {
		p, err := s.prepare(t)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		prepared = append(prepared, p)
	}
	if len(prepared) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	err := s.store.AddTransactions(ctx, prepared)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("save batch: %w", err)
	}

	slog.InfoContext(ctx, "Transactions imported", "count", len(prepared))
	for _, t := range prepared {
		s.publish(ctx, amqp.TransactionCreated, t.ID)
	}
	s.changed()
	return prepared, nil
}

// ImportCSV parses a bank statement and stores the rows that converted.
// Row errors are returned in the result; the batch is stored even when some
// rows were rejected. When no row converts, the result still carries the row
// errors alongside the error.
func (s *TransactionService) ImportCSV(ctx context.Context, r io.Reader) (importer.Result, error) {
	res, err := importer.New(s.rules).Import(r)
	if err != nil {
		return importer.Result{Errors: res.Errors}, err
	}
	for _, rowErr := range res.Errors {
		slog.WarnContext(ctx, "CSV row rejected", "line", rowErr.Line, "error", rowErr.Err)
	}
	stored, err := s.Import(ctx, res.Transactions)
	if err != nil {
		return importer.Result{}, err
	}
	res.Transactions = stored
	return res, nil
}

// List returns the transactions in period, newest first, optionally limited
// to one category ("" or "all" means every category).
func (s *TransactionService) List(ctx context.Context, period core.Period, category string) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	txs = analytics.FilterByPeriod(txs, period, s.now())
	if category != "" {
		txs = analytics.FilterByCategory(txs, category)
	}
	return txs, nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// Delete removes a transaction; unknown ids yield core.ErrNotFound.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	err := s.store.DeleteTransaction(ctx, id)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, amqp.TransactionDeleted, id)
	s.changed()
	return nil
}

// publish is best effort: the transaction is already stored and the mirror
// queue picks it up later.
func (s *TransactionService) publish(ctx context.Context, kind amqp.EventKind, id string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, kind, id); err != nil {
		slog.WarnContext(ctx, "Failed to publish transaction event", "kind", kind, "id", id, "error", err)
	}
}

func (s *TransactionService) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// IsValidationError reports whether err comes from rejected input.
func IsValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidType) ||
		errors.Is(err, core.ErrDescriptionTooLong) ||
		errors.Is(err, core.ErrInvalidBudget) ||
		errors.Is(err, core.ErrEmptyID) ||
		errors.Is(err, importer.ErrNoRows) ||
		errors.Is(err, importer.ErrMissingField)
}
