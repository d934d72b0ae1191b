// Package normalize turns untrusted extracted records into valid transactions.
//
// The service is pure: no I/O, no clock access. The reference date and any
// caller-resolved date cue arrive as parameters, so the same input always
// produces the same output. Persistence is the caller's job.
package normalize

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finca/internal/core"
)

// Service validates and repairs raw extracted records. Enum fields are
// strict (unknown values fail), numeric fields are lenient (unreadable
// values degrade to absent): upstream extraction is far more often wrong
// about numbers than about the fixed vocabulary it was instructed to use.
type Service struct {
	defaultFarmID uuid.UUID
}

// NewService creates a normalization service. defaultFarmID is the fallback
// for records whose farm identifier is missing or malformed.
func NewService(defaultFarmID uuid.UUID) *Service {
	return &Service{defaultFarmID: defaultFarmID}
}

// Normalize converts one raw record into a persistable Transaction or a
// ValidationError. It never returns a partially valid transaction.
//
// inferred carries a date the caller resolved from a message cue ("hoy",
// "ayer"); it is used only when the record has no explicit date. ref is the
// reference date used as the last fallback.
func (s *Service) Normalize(raw map[string]any, inferred *core.Date, ref core.Date) (core.Transaction, error) {
	var tx core.Transaction

	date, err := s.resolveDate(raw, inferred, ref)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Date = date

	category, err := core.ParseActivityCategory(stringField(raw, "activitycategory"))
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Category = category

	txType, err := core.ParseTxnType(stringField(raw, "type"))
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Type = txType

	tx.Description = stringField(raw, "description")
	tx.Unit = optionalString(raw, "unit")
	tx.Quantity = optionalFloat(raw, "quantity")
	tx.UnitPrice = optionalAmount(raw, "unit_price")
	tx.TotalValue = optionalAmount(raw, "total_value")

	if tx.UnitPrice == nil {
		tx.UnitPrice = deriveUnitPrice(tx.Quantity, tx.TotalValue)
	}

	// Single-currency policy: whatever the record claims, we store COP.
	tx.Currency = core.CurrencyCOP

	tx.FarmID = s.resolveFarmID(raw)
	tx.SourceMessageID = resolveSourceMessageID(raw)

	return tx, nil
}

// resolveDate picks the transaction date. Missing or empty dates fall back
// to the caller-inferred cue date, then to the reference date; an explicit
// date string must parse as an ISO calendar date.
func (s *Service) resolveDate(raw map[string]any, inferred *core.Date, ref core.Date) (core.Date, error) {
	ds := stringField(raw, "date")
	if ds == "" {
		if inferred != nil {
			return *inferred, nil
		}
		return ref, nil
	}
	return core.ParseDate(ds)
}

// deriveUnitPrice computes total/quantity when both are present and nonzero.
// The quotient is rounded to two decimal places first, then to whole pesos,
// mirroring how the books were kept before this system.
func deriveUnitPrice(quantity *float64, total *int64) *int64 {
	if quantity == nil || *quantity == 0 || total == nil || *total == 0 {
		return nil
	}
	q := decimal.NewFromFloat(*quantity)
	per := decimal.NewFromInt(*total).DivRound(q, 2)
	n := per.Round(0).IntPart()
	return &n
}

func (s *Service) resolveFarmID(raw map[string]any) uuid.UUID {
	id, err := uuid.Parse(stringField(raw, "farm_id"))
	if err != nil {
		return s.defaultFarmID
	}
	return id
}

// resolveSourceMessageID has no fallback: a malformed reference is worse
// than none at all.
func resolveSourceMessageID(raw map[string]any) *uuid.UUID {
	id, err := uuid.Parse(stringField(raw, "source_message_id"))
	if err != nil {
		return nil
	}
	return &id
}
