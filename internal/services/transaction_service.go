// Package services wires extraction, normalization, storage, and reporting
// into the operations the API exposes.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"finca/internal/amqp"
	"finca/internal/core"
	"finca/internal/extract"
	"finca/internal/normalize"
	"finca/internal/storage"
)

// Extractor turns a free-form message into a raw field map.
type Extractor interface {
	Extract(ctx context.Context, message string) (map[string]any, error)
}

// SyncPublisher enqueues ledger sync requests for saved transactions.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, msg *amqp.TransactionSyncMessage) error
}

// TransactionService handles the message-to-transaction pipeline.
type TransactionService struct {
	extractor  Extractor
	normalizer *normalize.Service
	store      storage.TransactionStore
	publisher  SyncPublisher
}

// NewTransactionService creates the ingest service. publisher may be nil when
// no broker is configured; saves still succeed and the worker's periodic
// sweep picks the rows up later.
func NewTransactionService(extractor Extractor, normalizer *normalize.Service, store storage.TransactionStore, publisher SyncPublisher) *TransactionService {
	return &TransactionService{
		extractor:  extractor,
		normalizer: normalizer,
		store:      store,
		publisher:  publisher,
	}
}

// ProcessMessage runs one farmer message through extraction, normalization,
// and persistence, then requests a ledger sync. farmID and msgID come from
// the caller and win over whatever extraction put in the record; ref anchors
// date cues like "hoy" and "ayer" and is the last-resort date. A publish
// failure does not fail the operation; the transaction is already durable.
func (s *TransactionService) ProcessMessage(ctx context.Context, farmID uuid.UUID, msgID *uuid.UUID, message string, ref core.Date) (core.Transaction, error) {
	raw, err := s.extractor.Extract(ctx, message)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("extract message: %w", err)
	}

	if farmID != uuid.Nil {
		raw["farm_id"] = farmID.String()
	}
	if msgID != nil {
		raw["source_message_id"] = msgID.String()
	}

	cue := extract.InferDateCue(message, ref)

	tx, err := s.normalizer.Normalize(raw, cue, ref)
	if err != nil {
		return core.Transaction{}, err
	}

	id, err := s.store.Save(ctx, tx)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.ID = id

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionSync(ctx, amqp.NewTransactionSyncMessage(id)); err != nil {
			slog.WarnContext(ctx, "Failed to publish sync message, relying on periodic sweep",
				"id", id, "error", err)
		}
	}

	slog.InfoContext(ctx, "Message processed",
		"id", id,
		"farm_id", tx.FarmID,
		"type", tx.Type,
		"date", tx.Date.ISO())

	return tx, nil
}

// GetTransaction fetches one stored transaction by ID.
func (s *TransactionService) GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}
