// Package storage persists transactions and answers the grouped-sum queries
// reporting needs. Two backends exist: SQLite (default, embedded migrations)
// and Postgres. Both keep dates as ISO strings so inclusive range queries are
// plain comparisons.
package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"finca/internal/core"
)

// TransactionStore is the persistence collaborator. Saves are all-or-nothing:
// a transaction is fully validated and written, or not written at all. There
// is no update or delete path.
type TransactionStore interface {
	// Save persists a transaction, assigning its id and creation timestamp,
	// and returns the generated id.
	Save(ctx context.Context, tx core.Transaction) (uuid.UUID, error)

	// GetTransaction loads a single transaction by id.
	GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error)

	// SumByType sums total_value over [start, end] inclusive for one farm
	// and type. No matching rows and NULL totals both count as 0.
	SumByType(ctx context.Context, farmID uuid.UUID, txType core.TxnType, start, end core.Date) (int64, error)

	// PendingLedgerSync lists transactions not yet exported to the ledger,
	// oldest first.
	PendingLedgerSync(ctx context.Context, limit int) ([]uuid.UUID, error)

	// MarkLedgerSynced records a successful ledger export.
	MarkLedgerSynced(ctx context.Context, id uuid.UUID) error

	// MarkLedgerSyncError flags a transaction whose export failed so the
	// periodic sweep stops retrying it blindly.
	MarkLedgerSyncError(ctx context.Context, id uuid.UUID) error

	Close() error
}

// StoreError wraps a persistence or query failure. The core never retries;
// the error propagates to the caller as-is.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
