package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"finca/internal/core"
)

// PostgresStore is the shared-database TransactionStore, for deployments
// where several ingest processes write to one set of books.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) ensureSchema() error {
	const schema = `CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		farm_id TEXT NOT NULL,
		date TEXT NOT NULL,
		activitycategory TEXT NOT NULL,
		type TEXT NOT NULL CHECK (type IN ('ingreso', 'gasto')),
		description TEXT NOT NULL DEFAULT '',
		quantity DOUBLE PRECISION,
		unit TEXT,
		unit_price BIGINT,
		total_value BIGINT,
		currency TEXT NOT NULL DEFAULT 'COP',
		source_message_id TEXT,
		created_at TEXT NOT NULL,
		ledger_synced BOOLEAN NOT NULL DEFAULT FALSE,
		ledger_sync_error BOOLEAN NOT NULL DEFAULT FALSE
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_farm_date
		ON transactions (farm_id, date);`

	_, err := s.db.Exec(schema)
	return err
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, tx core.Transaction) (uuid.UUID, error) {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

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

func (s *PostgresStore) GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error) {
	const q = `SELECT id, farm_id, date, activitycategory, type, description,
		quantity, unit, unit_price, total_value, currency,
		source_message_id, created_at
		FROM transactions WHERE id = $1`

	row := s.db.QueryRowContext(ctx, q, id.String())
	tx, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, storeErr("get transaction", err)
	}
	return tx, nil
}

func (s *PostgresStore) SumByType(ctx context.Context, farmID uuid.UUID, txType core.TxnType, start, end core.Date) (int64, error) {
	const q = `SELECT COALESCE(SUM(total_value), 0)
		FROM transactions
		WHERE farm_id = $1 AND type = $2 AND date >= $3 AND date <= $4`

	var sum int64
	err := s.db.QueryRowContext(ctx, q, farmID.String(), string(txType), start.ISO(), end.ISO()).Scan(&sum)
	if err != nil {
		return 0, storeErr("sum by type", err)
	}
	return sum, nil
}

func (s *PostgresStore) PendingLedgerSync(ctx context.Context, limit int) ([]uuid.UUID, error) {
	const q = `SELECT id FROM transactions
		WHERE ledger_synced = FALSE AND ledger_sync_error = FALSE
		ORDER BY created_at
		LIMIT $1`

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

func (s *PostgresStore) MarkLedgerSynced(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE transactions SET ledger_synced = TRUE, ledger_sync_error = FALSE WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, q, id.String()); err != nil {
		return storeErr("mark ledger synced", err)
	}
	return nil
}

func (s *PostgresStore) MarkLedgerSyncError(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE transactions SET ledger_sync_error = TRUE WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, q, id.String()); err != nil {
		return storeErr("mark ledger sync error", err)
	}
	return nil
}

var _ TransactionStore = (*PostgresStore)(nil)
