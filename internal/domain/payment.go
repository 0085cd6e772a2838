package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrPaymentAmountInvalid  = errors.New("payment amount must be positive")
	ErrPaymentPeriodInvalid  = errors.New("payment target period must be at least 1")
	ErrPaymentLoanIDRequired = errors.New("payment loan ID is required")
	ErrPaymentDateMissing    = errors.New("payment date is required")
)

// Payment is one recorded repayment event in the ledger. The ledger, not the
// calendar, decides which period a payment satisfies: PeriodIndex is the
// declared "month-for". Payments are never mutated after entry.
type Payment struct {
	ID          int64           `json:"id"`
	LoanID      uuid.UUID       `json:"loanId"`
	Amount      decimal.Decimal `json:"amount"`
	PaidDate    time.Time       `json:"paidDate"`
	PeriodIndex int32           `json:"periodIndex"`
	Reference   string          `json:"reference"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (p *Payment) Validate() error {
	if p.LoanID == uuid.Nil {
		return ErrPaymentLoanIDRequired
	}
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrPaymentAmountInvalid
	}
	if p.PeriodIndex < 1 {
		return ErrPaymentPeriodInvalid
	}
	if p.PaidDate.IsZero() {
		return ErrPaymentDateMissing
	}
	return nil
}

// SumPayments returns the ledger-verified total of a payment slice.
func SumPayments(payments []*Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) (*Payment, error)
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*Payment, error)
	// GetAll returns the full ledger ordered by paid date, oldest first.
	GetAll(ctx context.Context) ([]*Payment, error)
}
