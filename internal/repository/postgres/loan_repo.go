package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/spiricx/hrlrms-sub002/internal/domain"
)

// LoanRepository implements domain.LoanRepository using PostgreSQL.
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, borrower_name, principal, annual_rate, tenor_months, moratorium_months,
	disbursement_date, commencement_date, termination_date, monthly_installment,
	total_paid, outstanding, status, version, created_at, updated_at`

// Create inserts a new loan.
func (r *LoanRepository) Create(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	principal, err := decimalToPgNumeric(loan.Principal)
	if err != nil {
		return nil, err
	}
	annualRate, err := decimalToPgNumeric(loan.AnnualRate)
	if err != nil {
		return nil, err
	}
	installment, err := decimalToPgNumeric(loan.MonthlyInstallment)
	if err != nil {
		return nil, err
	}
	totalPaid, err := decimalToPgNumeric(loan.TotalPaid)
	if err != nil {
		return nil, err
	}
	outstanding, err := decimalToPgNumeric(loan.Outstanding)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO loans (id, borrower_name, principal, annual_rate, tenor_months, moratorium_months,
	disbursement_date, commencement_date, termination_date, monthly_installment,
	total_paid, outstanding, status, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 1)
RETURNING `+loanColumns,
		loan.ID, loan.BorrowerName, principal, annualRate, loan.TenorMonths, loan.MoratoriumMonths,
		loan.DisbursementDate, loan.CommencementDate, loan.TerminationDate, installment,
		totalPaid, outstanding, string(loan.Status))
	return scanLoan(row)
}

// GetByID retrieves a loan by ID.
func (r *LoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
	loan, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// GetAll retrieves every loan, oldest first.
func (r *LoanRepository) GetAll(ctx context.Context) ([]*domain.Loan, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+loanColumns+` FROM loans ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLoans(rows)
}

// GetActive retrieves loans that still carry a balance.
func (r *LoanRepository) GetActive(ctx context.Context) ([]*domain.Loan, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+loanColumns+`
FROM loans
WHERE status IN ('pending', 'active', 'defaulted') AND outstanding > 0
ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLoans(rows)
}

// UpdateTotals refreshes the denormalized cache after an accepted payment.
func (r *LoanRepository) UpdateTotals(ctx context.Context, id uuid.UUID, totalPaid, outstanding decimal.Decimal, status domain.LoanStatus) (*domain.Loan, error) {
	paid, err := decimalToPgNumeric(totalPaid)
	if err != nil {
		return nil, err
	}
	balance, err := decimalToPgNumeric(outstanding)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
UPDATE loans
SET total_paid = $2, outstanding = $3, status = $4, version = version + 1, updated_at = now()
WHERE id = $1
RETURNING `+loanColumns, id, paid, balance, string(status))
	loan, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// ApplyCorrection performs the reconciliation write-back under an optimistic
// version check: the update is a no-op when the row's version moved since the
// run read it, surfaced as ErrLoanVersionConflict.
func (r *LoanRepository) ApplyCorrection(ctx context.Context, correction domain.LoanCorrection) error {
	paid, err := decimalToPgNumeric(correction.TotalPaid)
	if err != nil {
		return err
	}
	balance, err := decimalToPgNumeric(correction.Outstanding)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE loans
SET total_paid = $2, outstanding = $3, status = $4, version = version + 1, updated_at = now()
WHERE id = $1 AND version = $5`,
		correction.LoanID, paid, balance, string(correction.Status), correction.ExpectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanVersionConflict
	}
	return nil
}

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var (
		loan        domain.Loan
		principal   pgtype.Numeric
		annualRate  pgtype.Numeric
		installment pgtype.Numeric
		totalPaid   pgtype.Numeric
		outstanding pgtype.Numeric
		status      string
	)
	err := row.Scan(
		&loan.ID, &loan.BorrowerName, &principal, &annualRate, &loan.TenorMonths, &loan.MoratoriumMonths,
		&loan.DisbursementDate, &loan.CommencementDate, &loan.TerminationDate, &installment,
		&totalPaid, &outstanding, &status, &loan.Version, &loan.CreatedAt, &loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	loan.Principal = pgNumericToDecimal(principal)
	loan.AnnualRate = pgNumericToDecimal(annualRate)
	loan.MonthlyInstallment = pgNumericToDecimal(installment)
	loan.TotalPaid = pgNumericToDecimal(totalPaid)
	loan.Outstanding = pgNumericToDecimal(outstanding)
	loan.Status = domain.LoanStatus(status)
	return &loan, nil
}

func scanLoans(rows pgx.Rows) ([]*domain.Loan, error) {
	var loans []*domain.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}
