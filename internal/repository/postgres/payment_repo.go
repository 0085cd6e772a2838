package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spiricx/hrlrms-sub002/internal/domain"
)

// PaymentRepository implements domain.PaymentRepository using PostgreSQL.
// Payments are append-only; there is no update path.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `id, loan_id, amount, paid_date, period_index, reference, created_at`

// Create appends one payment to the ledger.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	amount, err := decimalToPgNumeric(payment.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO payments (loan_id, amount, paid_date, period_index, reference)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+paymentColumns,
		payment.LoanID, amount, payment.PaidDate, payment.PeriodIndex, payment.Reference)
	return scanPayment(row)
}

// GetByLoanID retrieves the ledger for one loan, oldest paid date first.
func (r *PaymentRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+paymentColumns+` FROM payments WHERE loan_id = $1 ORDER BY paid_date, id`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

// GetAll retrieves the full ledger, oldest paid date first.
func (r *PaymentRepository) GetAll(ctx context.Context) ([]*domain.Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY paid_date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var (
		payment domain.Payment
		amount  pgtype.Numeric
	)
	err := row.Scan(&payment.ID, &payment.LoanID, &amount, &payment.PaidDate,
		&payment.PeriodIndex, &payment.Reference, &payment.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	payment.Amount = pgNumericToDecimal(amount)
	return &payment, nil
}

func scanPayments(rows pgx.Rows) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}
