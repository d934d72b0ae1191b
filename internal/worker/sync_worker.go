// Package worker mirrors saved transactions into the external ledger, driven
// by AMQP messages with a periodic database sweep as backup.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"finca/internal/amqp"
	"finca/internal/ledger"
	"finca/internal/storage"
)

type SyncWorker struct {
	store     storage.TransactionStore
	ledger    ledger.Appender
	batchSize int
}

func NewSyncWorker(store storage.TransactionStore, appender ledger.Appender, batchSize int) *SyncWorker {
	return &SyncWorker{
		store:     store,
		ledger:    appender,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single transaction sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)
	return w.syncToLedger(ctx, msg.ID)
}

// ProcessPending pushes transactions that never got a sync message. This is a
// backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	ids, err := w.store.PendingLedgerSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(ids) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(ids))

	for _, id := range ids {
		if err := w.syncToLedger(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction", "id", id, "error", err)
		}
	}
	return nil
}

// StartupSyncCheck drains a larger pending batch once at worker startup, to
// recover from missed messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	ids, err := w.store.PendingLedgerSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(ids) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(ids))

	synced := 0
	failed := 0
	for _, id := range ids {
		if err := w.syncToLedger(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction during startup",
				"id", id, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(ids),
		"synced", synced,
		"errors", failed)

	return nil
}

func (w *SyncWorker) syncToLedger(ctx context.Context, id uuid.UUID) error {
	tx, err := w.store.GetTransaction(ctx, id)
	if err != nil {
		if markErr := w.store.MarkLedgerSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	ref, err := w.ledger.Append(ctx, tx)
	if err != nil {
		if markErr := w.store.MarkLedgerSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.store.MarkLedgerSynced(ctx, id); err != nil {
		// The append itself worked, so the row is in the ledger.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced transaction",
		"id", id,
		"ledger_ref", ref,
		"farm_id", tx.FarmID,
		"date", tx.Date.ISO())

	return nil
}
