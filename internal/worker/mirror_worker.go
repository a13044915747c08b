package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgetwise/internal/amqp"
	"budgetwise/internal/core"
	"budgetwise/internal/ports"
	"budgetwise/internal/services"
	"budgetwise/internal/sheets"
)

// startupRounds bounds how many pending batches StartupMirrorCheck drains.
const startupRounds = 5

// MirrorWorker copies transactions to the spreadsheet mirror as their events
// arrive.
type MirrorWorker struct {
	store     ports.TransactionStore
	mirror    sheets.Mirror
	processor *services.MirrorProcessor
}

// NewMirrorWorker wires the worker. mirror may be nil, in which case events
// are only logged. processor may be nil when the store keeps no mirror queue.
func NewMirrorWorker(store ports.TransactionStore, mirror sheets.Mirror, processor *services.MirrorProcessor) *MirrorWorker {
	return &MirrorWorker{store: store, mirror: mirror, processor: processor}
}

// HandleEvent processes one transaction event from AMQP. A returned error
// makes the consumer requeue the message.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"kind", ev.Kind,
		"transaction_id", ev.ID)

	if w.mirror == nil {
		slog.InfoContext(ctx, "No sheet mirror configured, event logged only", "transaction_id", ev.ID)
		return nil
	}

	switch ev.Kind {
	case amqp.TransactionCreated:
		return w.handleCreated(ctx, ev.ID)
	case amqp.TransactionDeleted:
		if err := w.mirror.Delete(ctx, ev.ID); err != nil {
			return fmt.Errorf("delete from mirror: %w", err)
		}
		slog.InfoContext(ctx, "Transaction removed from mirror", "transaction_id", ev.ID)
		return nil
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}

func (w *MirrorWorker) handleCreated(ctx context.Context, id string) error {
	t, err := w.store.GetTransaction(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted before the event was consumed.
		slog.WarnContext(ctx, "Transaction gone before mirroring, skipping", "transaction_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	ref, err := w.mirror.Append(ctx, t)
	if err != nil {
		return fmt.Errorf("append to mirror: %w", err)
	}

	if q, ok := w.store.(ports.MirrorQueue); ok {
		if err := q.MarkMirrored(ctx, id); err != nil {
			slog.WarnContext(ctx, "Failed to mark transaction as mirrored", "transaction_id", id, "error", err)
		}
	}

	slog.InfoContext(ctx, "Transaction mirrored",
		"transaction_id", id,
		"sheets_ref", ref)
	return nil
}

// StartupMirrorCheck mirrors transactions left pending while the worker was
// down or events were lost.
func (w *MirrorWorker) StartupMirrorCheck(ctx context.Context) error {
	if w.processor == nil || w.mirror == nil {
		slog.InfoContext(ctx, "Mirror queue not available, skipping startup check")
		return nil
	}

	total := 0
	for i := 0; i < startupRounds; i++ {
		n := w.processor.ProcessBatch(ctx)
		total += n
		if n == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	slog.InfoContext(ctx, "Startup mirror check completed", "mirrored", total)
	return nil
}
