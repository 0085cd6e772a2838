package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrNotFound              = errors.New("resource not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidLoanParameters = errors.New("invalid loan parameters")
	ErrLedgerReadFailure     = errors.New("failed to read payment ledger")
	ErrLoanStoreReadFailure  = errors.New("failed to read loan store")
	ErrLoanVersionConflict   = errors.New("loan was modified concurrently")
	ErrReconciliationRunning = errors.New("reconciliation run already in progress")
)

// MoneyTolerance is the fixed tolerance applied to every monetary comparison.
// Rounding drift below one currency unit never counts as a discrepancy or as
// an unpaid remainder.
var MoneyTolerance = decimal.NewFromInt(1)

// WithinTolerance reports whether two amounts differ by no more than MoneyTolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(MoneyTolerance)
}
