// Package ledger defines the outbound port for mirroring saved transactions
// into an external bookkeeping ledger.
package ledger

import (
	"context"

	"finca/internal/core"
)

// Appender writes one transaction as a ledger row and returns a reference to
// where it landed.
type Appender interface {
	Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
}
