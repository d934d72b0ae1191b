package report

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"finca/internal/core"
)

// SumReader is the slice of the transaction store the engine needs: one
// grouped sum per transaction type over an inclusive date range.
type SumReader interface {
	SumByType(ctx context.Context, farmID uuid.UUID, txType core.TxnType, start, end core.Date) (int64, error)
}

// Totals holds the aggregated COP amounts for one farm and range.
type Totals struct {
	Income  int64
	Expense int64
}

// Net is income minus expense. It may be negative; nothing clamps it.
func (t Totals) Net() int64 {
	return t.Income - t.Expense
}

// Engine aggregates persisted transactions by type. A type with no matching
// rows contributes 0, never null and never an error.
type Engine struct {
	store SumReader
}

func NewEngine(store SumReader) *Engine {
	return &Engine{store: store}
}

// SumByType returns the income and expense totals for farmID over dr,
// boundaries included.
func (e *Engine) SumByType(ctx context.Context, farmID uuid.UUID, dr DateRange) (Totals, error) {
	income, err := e.store.SumByType(ctx, farmID, core.TxnIncome, dr.Start, dr.End)
	if err != nil {
		return Totals{}, fmt.Errorf("sum income: %w", err)
	}
	expense, err := e.store.SumByType(ctx, farmID, core.TxnExpense, dr.Start, dr.End)
	if err != nil {
		return Totals{}, fmt.Errorf("sum expense: %w", err)
	}
	return Totals{Income: income, Expense: expense}, nil
}
