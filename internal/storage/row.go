package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finca/internal/core"
)

// Both backends keep the same column layout: uuids and dates as text,
// created_at as RFC 3339 text, optional fields as NULLs.

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		idRaw, farmRaw, dateRaw   string
		catRaw, typeRaw           string
		description, currency     string
		quantity                  sql.NullFloat64
		unit, sourceRaw           sql.NullString
		unitPrice, totalValue     sql.NullInt64
		createdRaw                string
	)

	err := row.Scan(&idRaw, &farmRaw, &dateRaw, &catRaw, &typeRaw, &description,
		&quantity, &unit, &unitPrice, &totalValue, &currency, &sourceRaw, &createdRaw)
	if err != nil {
		return core.Transaction{}, err
	}

	id, err := uuid.Parse(idRaw)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse id: %w", err)
	}
	farmID, err := uuid.Parse(farmRaw)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse farm_id: %w", err)
	}
	date, err := core.ParseDate(dateRaw)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdRaw)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at: %w", err)
	}

	tx := core.Transaction{
		ID:          id,
		FarmID:      farmID,
		Date:        date,
		Category:    core.ActivityCategory(catRaw),
		Type:        core.TxnType(typeRaw),
		Description: description,
		Currency:    currency,
		CreatedAt:   createdAt,
	}
	if quantity.Valid {
		tx.Quantity = &quantity.Float64
	}
	if unit.Valid {
		tx.Unit = &unit.String
	}
	if unitPrice.Valid {
		tx.UnitPrice = &unitPrice.Int64
	}
	if totalValue.Valid {
		tx.TotalValue = &totalValue.Int64
	}
	if sourceRaw.Valid {
		src, err := uuid.Parse(sourceRaw.String)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse source_message_id: %w", err)
		}
		tx.SourceMessageID = &src
	}

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("stored row fails domain validation: %w", err)
	}
	return tx, nil
}

// ptrArg converts an optional field to a driver argument, mapping absent to
// SQL NULL.
func ptrArg[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func uuidArg(p *uuid.UUID) any {
	if p == nil {
		return nil
	}
	return p.String()
}
