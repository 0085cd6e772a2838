package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spiricx/hrlrms-sub002/internal/domain"
)

// ReconciliationService is the portfolio-level audit job. It recomputes each
// loan's true expected obligation with the day-accurate schedule, compares
// the cached totals against the verified ledger sum, and heals drift with
// per-loan corrective writes. This is the only place the core mutates
// persistent loan state.
type ReconciliationService struct {
	loanRepo    domain.LoanRepository
	paymentRepo domain.PaymentRepository
	reportRepo  domain.IntegrityReportRepository
	schedules   *ScheduleService
	clock       domain.Clock
	logger      zerolog.Logger

	mu sync.Mutex // serializes runs; loan writes must not interleave
}

// NewReconciliationService creates a ReconciliationService. Schedules are
// always recomputed with the authoritative actual/365 policy.
func NewReconciliationService(
	loanRepo domain.LoanRepository,
	paymentRepo domain.PaymentRepository,
	reportRepo domain.IntegrityReportRepository,
	clock domain.Clock,
	logger zerolog.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		reportRepo:  reportRepo,
		schedules:   NewScheduleService(AccrualActual365),
		clock:       clock,
		logger:      logger.With().Str("component", "reconciliation").Logger(),
	}
}

// RunIntegrityCheck audits every loan against the verified ledger and applies
// corrective writes to discrepant loans. A failed bulk read aborts the run
// with zero writes; a failed per-loan write is logged and skipped. Concurrent
// runs are rejected with ErrReconciliationRunning.
func (s *ReconciliationService) RunIntegrityCheck(ctx context.Context) (*domain.IntegrityReport, error) {
	if !s.mu.TryLock() {
		return nil, domain.ErrReconciliationRunning
	}
	defer s.mu.Unlock()

	now := s.clock.Now()

	loans, err := s.loanRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLoanStoreReadFailure, err)
	}

	ledger, err := s.paymentRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerReadFailure, err)
	}

	byLoan := make(map[uuid.UUID][]*domain.Payment, len(loans))
	for _, p := range ledger {
		byLoan[p.LoanID] = append(byLoan[p.LoanID], p)
	}

	report := &domain.IntegrityReport{
		ID:                   uuid.New(),
		RunAt:                now,
		Status:               domain.ReportStatusClean,
		LoansChecked:         len(loans),
		TotalPaidVariance:    decimal.Zero,
		TotalBalanceVariance: decimal.Zero,
		NPLRatio:             decimal.Zero,
	}

	nplBalance := decimal.Zero
	activeBalance := decimal.Zero

	for _, loan := range loans {
		schedule, err := s.schedules.ComputeSchedule(LoanParameters{
			Principal:        loan.Principal,
			AnnualRate:       loan.AnnualRate,
			TenorMonths:      int(loan.TenorMonths),
			MoratoriumMonths: int(loan.MoratoriumMonths),
			DisbursementDate: loan.DisbursementDate,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("loan_id", loan.ID.String()).
				Msg("Skipping loan with invalid stored parameters")
			continue
		}

		payments := byLoan[loan.ID]
		verifiedPaid := domain.SumPayments(payments)
		trueExpected := schedule.TotalPayment
		trueOutstanding := trueExpected.Sub(verifiedPaid)
		if trueOutstanding.IsNegative() {
			trueOutstanding = decimal.Zero
		}

		snapshot := VerifiedSnapshot(loan, schedule, payments, now)
		if loan.Status != domain.LoanStatusCompleted && trueOutstanding.GreaterThan(decimal.Zero) {
			activeBalance = activeBalance.Add(trueOutstanding)
			if snapshot.NPL {
				report.NPLCount++
				nplBalance = nplBalance.Add(trueOutstanding)
			}
			if snapshot.DaysPastDue >= domain.PAR30Days {
				report.PAR30Count++
			}
			if snapshot.DaysPastDue >= domain.PAR90Days {
				report.PAR90Count++
			}
		}

		paidVariance := loan.TotalPaid.Sub(verifiedPaid)
		balanceVariance := loan.Outstanding.Sub(trueOutstanding)
		discrepant := paidVariance.Abs().GreaterThan(domain.MoneyTolerance) ||
			balanceVariance.Abs().GreaterThan(domain.MoneyTolerance)
		if !discrepant {
			continue
		}

		report.DiscrepancyCount++
		report.TotalPaidVariance = report.TotalPaidVariance.Add(paidVariance.Abs())
		report.TotalBalanceVariance = report.TotalBalanceVariance.Add(balanceVariance.Abs())

		corrected := s.correctLoan(ctx, loan, verifiedPaid, trueOutstanding)
		if corrected {
			report.CorrectedCount++
		} else {
			report.SkippedWriteCount++
		}

		if len(report.Discrepancies) < domain.MaxDiscrepancyDetails {
			report.Discrepancies = append(report.Discrepancies, domain.Discrepancy{
				LoanID:            loan.ID,
				BorrowerName:      loan.BorrowerName,
				SystemTotalPaid:   loan.TotalPaid,
				VerifiedTotalPaid: verifiedPaid,
				SystemOutstanding: loan.Outstanding,
				TrueOutstanding:   trueOutstanding,
				PaidVariance:      paidVariance,
				BalanceVariance:   balanceVariance,
				Corrected:         corrected,
			})
		}
	}

	if report.DiscrepancyCount > 0 {
		report.Status = domain.ReportStatusDiscrepancies
	}
	if activeBalance.GreaterThan(decimal.Zero) {
		report.NPLRatio = nplBalance.Div(activeBalance).Round(4)
	}

	if err := s.reportRepo.Create(ctx, report); err != nil {
		return report, fmt.Errorf("persist integrity report: %w", err)
	}

	s.logger.Info().
		Int("loans_checked", report.LoansChecked).
		Int("discrepancies", report.DiscrepancyCount).
		Int("corrected", report.CorrectedCount).
		Int("skipped_writes", report.SkippedWriteCount).
		Str("npl_ratio", report.NPLRatio.String()).
		Msg("Integrity check completed")

	return report, nil
}

// correctLoan overwrites the loan's cached totals with the ledger-verified
// figures under an optimistic version check. A write failure is logged and
// the run continues; best-effort partial success is reflected in the
// corrected count.
func (s *ReconciliationService) correctLoan(ctx context.Context, loan *domain.Loan, verifiedPaid, trueOutstanding decimal.Decimal) bool {
	if ctx.Err() != nil {
		s.logger.Warn().Str("loan_id", loan.ID.String()).
			Msg("Deadline reached, skipping remaining corrections")
		return false
	}

	status := loan.Status
	switch {
	case trueOutstanding.LessThanOrEqual(domain.MoneyTolerance):
		status = domain.LoanStatusCompleted
	case status != domain.LoanStatusDefaulted:
		status = domain.LoanStatusActive
	}

	err := s.loanRepo.ApplyCorrection(ctx, domain.LoanCorrection{
		LoanID:          loan.ID,
		TotalPaid:       verifiedPaid,
		Outstanding:     trueOutstanding,
		Status:          status,
		ExpectedVersion: loan.Version,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("loan_id", loan.ID.String()).
			Msg("Failed to apply correction, loan skipped")
		return false
	}
	return true
}
