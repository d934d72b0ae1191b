package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CurrencyCOP is the only currency this system records. Raw records may claim
// anything; normalization overrides the field unconditionally.
const CurrencyCOP = "COP"

type (
	// ActivityCategory classifies a transaction into one of seven fixed
	// farm activities. The values double as the storage encoding and the
	// vocabulary the extractor is instructed to use.
	ActivityCategory string

	// TxnType is the transaction direction.
	TxnType string

	// Date is a calendar day with no time-of-day component.
	Date struct {
		time.Time
	}

	// Money is a COP amount in minor units (whole pesos; COP carries no
	// fractional component in this system).
	Money struct {
		Amount int64
	}
)

const (
	CategoryEquipment     ActivityCategory = "compras de equipos y maquinaria"
	CategoryPreSowing     ActivityCategory = "pre-siembra"
	CategorySowing        ActivityCategory = "siembra"
	CategoryFertilization ActivityCategory = "fertilización"
	CategoryCropCare      ActivityCategory = "manejo del cultivo"
	CategoryHarvest       ActivityCategory = "cosecha"
	CategorySale          ActivityCategory = "venta"
)

const (
	TxnIncome  TxnType = "ingreso"
	TxnExpense TxnType = "gasto"
)

var (
	ErrUnknownEnumValue = errors.New("value not in closed vocabulary")
	ErrBadDate          = errors.New("unparseable date")
)

// ValidationError reports a raw record field that could not be normalized.
// It wraps a sentinel (ErrBadDate, ErrUnknownEnumValue) so callers can branch
// with errors.Is.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Categories returns the closed activity vocabulary in its canonical order.
func Categories() []ActivityCategory {
	return []ActivityCategory{
		CategoryEquipment,
		CategoryPreSowing,
		CategorySowing,
		CategoryFertilization,
		CategoryCropCare,
		CategoryHarvest,
		CategorySale,
	}
}

// ParseActivityCategory maps a raw string onto the activity vocabulary by
// exact match. No fuzzy matching and no default: an unknown value is an error.
func ParseActivityCategory(s string) (ActivityCategory, error) {
	for _, c := range Categories() {
		if s == string(c) {
			return c, nil
		}
	}
	return "", &ValidationError{Field: "activitycategory", Value: s, Err: ErrUnknownEnumValue}
}

// ParseTxnType maps a raw string onto the transaction-type vocabulary by
// exact match.
func ParseTxnType(s string) (TxnType, error) {
	switch TxnType(s) {
	case TxnIncome:
		return TxnIncome, nil
	case TxnExpense:
		return TxnExpense, nil
	}
	return "", &ValidationError{Field: "type", Value: s, Err: ErrUnknownEnumValue}
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO calendar date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, &ValidationError{Field: "date", Value: s, Err: ErrBadDate}
	}
	return DateOf(t), nil
}

// ISO renders the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.AddDate(0, 0, n))
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d falls strictly after other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Transaction is one validated farm financial record. Instances are created
// exactly once by normalization and never mutated; reporting only reads them.
type Transaction struct {
	ID       uuid.UUID
	FarmID   uuid.UUID
	Date     Date
	Category ActivityCategory
	Type     TxnType

	Description string
	Quantity    *float64
	Unit        *string
	UnitPrice   *int64 // COP minor units
	TotalValue  *int64 // COP minor units
	Currency    string

	SourceMessageID *uuid.UUID

	// CreatedAt is assigned by the store on save, never by callers.
	CreatedAt time.Time
}

// Validate checks the closed-vocabulary invariants. Normalization output
// always passes; the check guards transactions rebuilt from storage rows.
func (t Transaction) Validate() error {
	if _, err := ParseActivityCategory(string(t.Category)); err != nil {
		return err
	}
	if _, err := ParseTxnType(string(t.Type)); err != nil {
		return err
	}
	if t.Currency != CurrencyCOP {
		return &ValidationError{Field: "currency", Value: t.Currency, Err: ErrUnknownEnumValue}
	}
	if t.Date.IsZero() {
		return &ValidationError{Field: "date", Value: "", Err: ErrBadDate}
	}
	return nil
}
