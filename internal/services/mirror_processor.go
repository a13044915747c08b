package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"budgetwise/internal/ports"
	"budgetwise/internal/sheets"
)

// MirrorSource is a store that tracks which transactions are not yet mirrored.
type MirrorSource interface {
	ports.TransactionStore
	ports.MirrorQueue
}

// MirrorProcessorConfig holds configuration for the mirror processor
type MirrorProcessorConfig struct {
	// PollInterval is how often to check for pending transactions (default: 30s)
	PollInterval time.Duration

	// BatchSize is the max number of transactions per poll cycle (default: 10)
	BatchSize int

	// MaxRetries is the number of failed appends before a transaction is
	// marked with a mirror error (default: 3)
	MaxRetries int
}

func DefaultMirrorProcessorConfig() MirrorProcessorConfig {
	return MirrorProcessorConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    10,
		MaxRetries:   3,
	}
}

// MirrorProcessor copies pending transactions to the spreadsheet mirror on a
// timer. It backs up the event-driven worker when the broker is down.
type MirrorProcessor struct {
	source MirrorSource
	mirror sheets.TransactionWriter
	config MirrorProcessorConfig

	attemptsMu sync.Mutex
	attempts   map[string]int

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewMirrorProcessor(source MirrorSource, mirror sheets.TransactionWriter, config MirrorProcessorConfig) *MirrorProcessor {
	return &MirrorProcessor{
		source:   source,
		mirror:   mirror,
		config:   config,
		attempts: make(map[string]int),
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *MirrorProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("mirror processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Mirror processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)
	return nil
}

// Stop signals the loop and waits for the current batch to finish.
func (p *MirrorProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Mirror processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Mirror processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *MirrorProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *MirrorProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	// Process immediately on startup
	p.ProcessBatch(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch mirrors up to BatchSize pending transactions and returns how
// many were appended.
func (p *MirrorProcessor) ProcessBatch(ctx context.Context) int {
	ids, err := p.source.PendingMirror(ctx, p.config.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch pending mirror batch", "error", err)
		return 0
	}
	if len(ids) == 0 {
		return 0
	}

	slog.DebugContext(ctx, "Processing mirror batch", "count", len(ids))

	mirrored := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return mirrored
		}
		if err := p.mirrorOne(ctx, id); err != nil {
			p.handleFailure(ctx, id, err)
			continue
		}
		p.resetAttempts(id)
		mirrored++
	}
	return mirrored
}

func (p *MirrorProcessor) mirrorOne(ctx context.Context, id string) error {
	t, err := p.source.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction %s: %w", id, err)
	}
	ref, err := p.mirror.Append(ctx, t)
	if err != nil {
		return fmt.Errorf("append to mirror: %w", err)
	}
	if err := p.source.MarkMirrored(ctx, id); err != nil {
		// The row exists; the next append is a no-op returning the same ref.
		slog.WarnContext(ctx, "Failed to mark transaction as mirrored", "transaction_id", id, "error", err)
	}
	slog.InfoContext(ctx, "Transaction mirrored", "transaction_id", id, "sheets_ref", ref)
	return nil
}

func (p *MirrorProcessor) handleFailure(ctx context.Context, id string, processErr error) {
	p.attemptsMu.Lock()
	p.attempts[id]++
	attempt := p.attempts[id]
	if attempt >= p.config.MaxRetries {
		delete(p.attempts, id)
	}
	p.attemptsMu.Unlock()

	slog.WarnContext(ctx, "Mirror processing failed",
		"transaction_id", id,
		"attempt", attempt,
		"error", processErr)

	if attempt < p.config.MaxRetries {
		return
	}
	if err := p.source.MarkMirrorError(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark mirror error", "transaction_id", id, "error", err)
		return
	}
	slog.ErrorContext(ctx, "Transaction failed to mirror after max retries",
		"transaction_id", id,
		"attempts", attempt)
}

func (p *MirrorProcessor) resetAttempts(id string) {
	p.attemptsMu.Lock()
	delete(p.attempts, id)
	p.attemptsMu.Unlock()
}
