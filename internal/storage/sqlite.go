package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"finca/internal/core"
)

// SQLiteStore is the default TransactionStore, backed by a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, tx core.Transaction) (uuid.UUID, error) {
	if err := tx.Validate(); err != nil {
		return uuid.Nil, err
	}

	id := tx.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	createdAt := time.Now().UTC()

	const q = `INSERT INTO transactions
		(id, farm_id, date, activitycategory, type, description,
		 quantity, unit, unit_price, total_value, currency,
		 source_message_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, q,
		id.String(),
		tx.FarmID.String(),
		tx.Date.ISO(),
		string(tx.Category),
		string(tx.Type),
		tx.Description,
		ptrArg(tx.Quantity),
		ptrArg(tx.Unit),
		ptrArg(tx.UnitPrice),
		ptrArg(tx.TotalValue),
		tx.Currency,
		uuidArg(tx.SourceMessageID),
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return uuid.Nil, storeErr("save transaction", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"farm_id", tx.FarmID,
		"type", tx.Type,
		"date", tx.Date.ISO())

	return id, nil
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error) {
	const q = `SELECT id, farm_id, date, activitycategory, type, description,
		quantity, unit, unit_price, total_value, currency,
		source_message_id, created_at
		FROM transactions WHERE id = ?`

	row := s.db.QueryRowContext(ctx, q, id.String())
	tx, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, storeErr("get transaction", err)
	}
	return tx, nil
}

func (s *SQLiteStore) SumByType(ctx context.Context, farmID uuid.UUID, txType core.TxnType, start, end core.Date) (int64, error) {
	const q = `SELECT COALESCE(SUM(total_value), 0)
		FROM transactions
		WHERE farm_id = ? AND type = ? AND date >= ? AND date <= ?`

	var sum int64
	err := s.db.QueryRowContext(ctx, q, farmID.String(), string(txType), start.ISO(), end.ISO()).Scan(&sum)
	if err != nil {
		return 0, storeErr("sum by type", err)
	}
	return sum, nil
}

func (s *SQLiteStore) PendingLedgerSync(ctx context.Context, limit int) ([]uuid.UUID, error) {
	const q = `SELECT id FROM transactions
		WHERE ledger_synced = 0 AND ledger_sync_error = 0
		ORDER BY created_at
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, storeErr("pending ledger sync", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, storeErr("pending ledger sync", err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, storeErr("pending ledger sync", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("pending ledger sync", err)
	}
	return ids, nil
}

func (s *SQLiteStore) MarkLedgerSynced(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE transactions SET ledger_synced = 1, ledger_sync_error = 0 WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, q, id.String()); err != nil {
		return storeErr("mark ledger synced", err)
	}
	return nil
}

func (s *SQLiteStore) MarkLedgerSyncError(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE transactions SET ledger_sync_error = 1 WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, q, id.String()); err != nil {
		return storeErr("mark ledger sync error", err)
	}
	return nil
}

var _ TransactionStore = (*SQLiteStore)(nil)
