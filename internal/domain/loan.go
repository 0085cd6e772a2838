package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrLoanNotFound            = errors.New("loan not found")
	ErrLoanBorrowerEmpty       = errors.New("borrower name is required")
	ErrLoanPrincipalInvalid    = errors.New("loan principal must be positive")
	ErrLoanTenorInvalid        = errors.New("loan tenor must be between 1 and 60 months")
	ErrLoanRateInvalid         = errors.New("interest rate must not be negative")
	ErrLoanMoratoriumInvalid   = errors.New("moratorium months must not be negative")
	ErrLoanDisbursementMissing = errors.New("disbursement date is required")
)

// MaxTenorMonths is a servicing policy bound, enforced at origination.
// The amortization engine itself accepts any positive tenor.
const MaxTenorMonths = 60

// LoanStatus represents the lifecycle state of a loan.
type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "pending"
	LoanStatusActive    LoanStatus = "active"
	LoanStatusCompleted LoanStatus = "completed"
	LoanStatusDefaulted LoanStatus = "defaulted"
)

// Loan represents one disbursed facility. TotalPaid and Outstanding are a
// denormalized cache of ledger-derivable figures; the reconciliation service
// is the only component allowed to correct them once drift is detected.
type Loan struct {
	ID                 uuid.UUID       `json:"id"`
	BorrowerName       string          `json:"borrowerName"`
	Principal          decimal.Decimal `json:"principal"`
	AnnualRate         decimal.Decimal `json:"annualRate"` // percent, e.g. 6 = 6%
	TenorMonths        int32           `json:"tenorMonths"`
	MoratoriumMonths   int32           `json:"moratoriumMonths"`
	DisbursementDate   time.Time       `json:"disbursementDate"`
	CommencementDate   time.Time       `json:"commencementDate"`
	TerminationDate    time.Time       `json:"terminationDate"`
	MonthlyInstallment decimal.Decimal `json:"monthlyInstallment"`
	TotalPaid          decimal.Decimal `json:"totalPaid"`
	Outstanding        decimal.Decimal `json:"outstanding"`
	Status             LoanStatus      `json:"status"`
	Version            int32           `json:"version"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func (l *Loan) Validate() error {
	if l.BorrowerName == "" {
		return ErrLoanBorrowerEmpty
	}
	if l.Principal.LessThanOrEqual(decimal.Zero) {
		return ErrLoanPrincipalInvalid
	}
	if l.TenorMonths < 1 || l.TenorMonths > MaxTenorMonths {
		return ErrLoanTenorInvalid
	}
	if l.AnnualRate.IsNegative() {
		return ErrLoanRateInvalid
	}
	if l.MoratoriumMonths < 0 {
		return ErrLoanMoratoriumInvalid
	}
	if l.DisbursementDate.IsZero() {
		return ErrLoanDisbursementMissing
	}
	return nil
}

// IsSettled reports whether the outstanding balance is cleared within tolerance.
func (l *Loan) IsSettled() bool {
	return l.Outstanding.LessThanOrEqual(MoneyTolerance)
}

// LoanCorrection is the write-back the reconciliation service applies to a
// discrepant loan. ExpectedVersion guards against a payment landing mid-run.
type LoanCorrection struct {
	LoanID          uuid.UUID
	TotalPaid       decimal.Decimal
	Outstanding     decimal.Decimal
	Status          LoanStatus
	ExpectedVersion int32
}

type LoanRepository interface {
	Create(ctx context.Context, loan *Loan) (*Loan, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Loan, error)
	GetAll(ctx context.Context) ([]*Loan, error)
	GetActive(ctx context.Context) ([]*Loan, error)
	// UpdateTotals refreshes the denormalized cache after an accepted payment.
	UpdateTotals(ctx context.Context, id uuid.UUID, totalPaid, outstanding decimal.Decimal, status LoanStatus) (*Loan, error)
	// ApplyCorrection performs a compare-and-set on the loan's version and
	// returns ErrLoanVersionConflict when the row moved underneath the run.
	ApplyCorrection(ctx context.Context, correction LoanCorrection) error
}
