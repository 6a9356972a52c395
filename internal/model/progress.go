package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProgressSnapshot is derived on every render from the ledger, the starting
// capital and the goal. It holds no state of its own.
type ProgressSnapshot struct {
	Accumulated     decimal.Decimal
	Remaining       decimal.Decimal
	EstimatedMonths int64
	EstimatedFinish time.Time
	PercentComplete decimal.Decimal
}

// Done reports whether the goal has been reached.
func (p ProgressSnapshot) Done() bool {
	return p.Remaining.IsZero()
}
