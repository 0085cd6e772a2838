package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spiricx/hrlrms-sub002/internal/domain"
)

// LoanService handles origination and the ledger-facing loan operations.
type LoanService struct {
	loanRepo    domain.LoanRepository
	paymentRepo domain.PaymentRepository
	schedules   *ScheduleService
	clock       domain.Clock
}

// NewLoanService creates a new LoanService using the configured accrual policy.
func NewLoanService(loanRepo domain.LoanRepository, paymentRepo domain.PaymentRepository, schedules *ScheduleService, clock domain.Clock) *LoanService {
	return &LoanService{
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		schedules:   schedules,
		clock:       clock,
	}
}

// CreateLoanInput contains input for originating a loan.
type CreateLoanInput struct {
	BorrowerName     string
	Principal        decimal.Decimal
	AnnualRate       decimal.Decimal
	TenorMonths      int32
	MoratoriumMonths int32
	DisbursementDate time.Time
}

// CreateLoan originates a loan: derived dates, installment and opening
// balances come from the amortization engine, never from the caller.
func (s *LoanService) CreateLoan(ctx context.Context, input CreateLoanInput) (*domain.Loan, error) {
	loan := &domain.Loan{
		ID:               uuid.New(),
		BorrowerName:     strings.TrimSpace(input.BorrowerName),
		Principal:        input.Principal,
		AnnualRate:       input.AnnualRate,
		TenorMonths:      input.TenorMonths,
		MoratoriumMonths: input.MoratoriumMonths,
		DisbursementDate: input.DisbursementDate,
		TotalPaid:        decimal.Zero,
	}
	if err := loan.Validate(); err != nil {
		return nil, err
	}

	schedule, err := s.schedules.ComputeSchedule(LoanParameters{
		Principal:        loan.Principal,
		AnnualRate:       loan.AnnualRate,
		TenorMonths:      int(loan.TenorMonths),
		MoratoriumMonths: int(loan.MoratoriumMonths),
		DisbursementDate: loan.DisbursementDate,
	})
	if err != nil {
		return nil, err
	}

	loan.CommencementDate = schedule.CommencementDate
	loan.TerminationDate = schedule.TerminationDate
	loan.MonthlyInstallment = schedule.MonthlyInstallment
	loan.Outstanding = schedule.TotalPayment

	if s.clock.Now().Before(loan.CommencementDate) {
		loan.Status = domain.LoanStatusPending
	} else {
		loan.Status = domain.LoanStatusActive
	}

	return s.loanRepo.Create(ctx, loan)
}

// LoanWithEstimate pairs a loan with its calendar-elapsed arrears estimate
// for list views. The estimate is presentation-only.
type LoanWithEstimate struct {
	Loan     *domain.Loan           `json:"loan"`
	Estimate domain.ArrearsEstimate `json:"estimate"`
}

// GetLoans retrieves all loans with list-view estimates.
func (s *LoanService) GetLoans(ctx context.Context) ([]*LoanWithEstimate, error) {
	loans, err := s.loanRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	out := make([]*LoanWithEstimate, len(loans))
	for i, loan := range loans {
		out[i] = &LoanWithEstimate{Loan: loan, Estimate: EstimateArrears(loan, now)}
	}
	return out, nil
}

// GetLoanByID retrieves a single loan.
func (s *LoanService) GetLoanByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	return s.loanRepo.GetByID(ctx, id)
}

// GetSchedule recomputes the loan's schedule and classifies every period
// against the recorded ledger.
func (s *LoanService) GetSchedule(ctx context.Context, loanID uuid.UUID) (*domain.ScheduleResult, []ClassifiedPeriod, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}

	schedule, err := s.schedules.ComputeSchedule(LoanParameters{
		Principal:        loan.Principal,
		AnnualRate:       loan.AnnualRate,
		TenorMonths:      int(loan.TenorMonths),
		MoratoriumMonths: int(loan.MoratoriumMonths),
		DisbursementDate: loan.DisbursementDate,
	})
	if err != nil {
		return nil, nil, err
	}

	payments, err := s.paymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}

	return schedule, ClassifySchedule(schedule.Entries, payments, s.clock.Now()), nil
}

// RecordPaymentInput contains input for one ledger entry.
type RecordPaymentInput struct {
	Amount      decimal.Decimal
	PaidDate    time.Time
	PeriodIndex int32
	Reference   string
}

// RecordPayment appends a payment to the ledger and refreshes the loan's
// denormalized totals. The cache update is best-effort bookkeeping; the
// reconciliation service keeps it honest.
func (s *LoanService) RecordPayment(ctx context.Context, loanID uuid.UUID, input RecordPaymentInput) (*domain.Payment, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		reference = "PMT-" + uuid.NewString()
	}
	paidDate := input.PaidDate
	if paidDate.IsZero() {
		paidDate = s.clock.Now()
	}

	payment := &domain.Payment{
		LoanID:      loanID,
		Amount:      input.Amount,
		PaidDate:    paidDate,
		PeriodIndex: input.PeriodIndex,
		Reference:   reference,
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	created, err := s.paymentRepo.Create(ctx, payment)
	if err != nil {
		return nil, err
	}

	totalPaid := loan.TotalPaid.Add(payment.Amount)
	outstanding := loan.Outstanding.Sub(payment.Amount)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	status := loan.Status
	switch {
	case outstanding.LessThanOrEqual(domain.MoneyTolerance):
		status = domain.LoanStatusCompleted
	case status == domain.LoanStatusPending:
		status = domain.LoanStatusActive
	}

	if _, err := s.loanRepo.UpdateTotals(ctx, loanID, totalPaid, outstanding, status); err != nil {
		return nil, err
	}

	return created, nil
}

// GetPayments retrieves the ledger for one loan, oldest first.
func (s *LoanService) GetPayments(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	if _, err := s.loanRepo.GetByID(ctx, loanID); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetByLoanID(ctx, loanID)
}
