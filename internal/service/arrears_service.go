package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spiricx/hrlrms-sub002/internal/domain"
	"github.com/spiricx/hrlrms-sub002/internal/util"
)

// ArrearsService derives loan-level delinquency state. Two strategies exist:
// a calendar-elapsed approximation for list views and the ledger-verified
// snapshot, which is the golden record for every displayed balance, default
// classification, and the reconciliation service.
type ArrearsService struct {
	loanRepo    domain.LoanRepository
	paymentRepo domain.PaymentRepository
	schedules   *ScheduleService
	clock       domain.Clock
}

// NewArrearsService creates an ArrearsService. The verified path always
// computes schedules with the day-accurate actual/365 policy, independent of
// the policy configured for display.
func NewArrearsService(loanRepo domain.LoanRepository, paymentRepo domain.PaymentRepository, clock domain.Clock) *ArrearsService {
	return &ArrearsService{
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		schedules:   NewScheduleService(AccrualActual365),
		clock:       clock,
	}
}

// EstimateArrears is the cheap calendar-elapsed approximation: whole months
// elapsed since commencement set the expectation, the deficit against the
// loan's cached total decides how far behind it is. Presentation only; it
// must never feed reconciliation or default counts.
func EstimateArrears(loan *domain.Loan, now time.Time) domain.ArrearsEstimate {
	monthsElapsed := util.WholeMonthsBetween(loan.CommencementDate, now)
	if int32(monthsElapsed) > loan.TenorMonths {
		monthsElapsed = int(loan.TenorMonths)
	}
	if monthsElapsed <= 0 {
		// Repayment has not started; distinct from "current".
		return domain.ArrearsEstimate{
			NotYetDue:     true,
			ExpectedPaid:  decimal.Zero,
			Deficit:       decimal.Zero,
			ArrearsAmount: decimal.Zero,
		}
	}

	expected := loan.MonthlyInstallment.Mul(decimal.NewFromInt(int64(monthsElapsed)))
	deficit := expected.Sub(loan.TotalPaid)

	est := domain.ArrearsEstimate{
		MonthsElapsed: monthsElapsed,
		ExpectedPaid:  expected,
		Deficit:       deficit,
		ArrearsAmount: decimal.Zero,
	}
	if deficit.GreaterThan(decimal.Zero) && loan.MonthlyInstallment.GreaterThan(decimal.Zero) {
		monthsBehind := int(deficit.Div(loan.MonthlyInstallment).Ceil().IntPart())
		est.MonthsBehind = monthsBehind
		est.DaysPastDue = monthsBehind * 30
		est.ArrearsAmount = loan.MonthlyInstallment.Mul(decimal.NewFromInt(int64(monthsBehind)))
	}
	return est
}

// VerifiedSnapshot computes the authoritative delinquency state from the full
// schedule and payment ledger. The verified ledger sum is allocated oldest
// period first, regardless of declared targets; a period counts as covered
// once the allocation reaches its installment minus tolerance.
func VerifiedSnapshot(loan *domain.Loan, schedule *domain.ScheduleResult, payments []*domain.Payment, now time.Time) domain.ArrearsSnapshot {
	today := util.TruncateToDay(now)
	currentMonthStart := util.MonthStart(today)
	verifiedPaid := domain.SumPayments(payments)

	snap := domain.ArrearsSnapshot{
		LoanID:            loan.ID,
		AsOf:              today,
		ArrearsAmount:     decimal.Zero,
		OverdueAmount:     decimal.Zero,
		VerifiedTotalPaid: verifiedPaid,
		HasDiscrepancy:    !domain.WithinTolerance(loan.TotalPaid, verifiedPaid),
	}

	remaining := verifiedPaid
	dueTotal := decimal.Zero
	arrearsTotal := decimal.Zero

	for _, entry := range schedule.Entries {
		dueDate := util.TruncateToDay(entry.DueDate)
		due := !dueDate.After(today)
		inArrearsWindow := dueDate.Before(currentMonthStart)

		covered := remaining.GreaterThanOrEqual(entry.Installment.Sub(domain.MoneyTolerance))
		if covered {
			remaining = remaining.Sub(entry.Installment)
			if remaining.IsNegative() {
				remaining = decimal.Zero
			}
			snap.MonthsPaid++
		} else if snap.FirstUnpaidDueDate == nil {
			d := dueDate
			snap.FirstUnpaidDueDate = &d
		}

		if due {
			snap.MonthsDue++
			dueTotal = dueTotal.Add(entry.Installment)
			if !covered {
				snap.OverdueMonths++
			}
		}
		if inArrearsWindow {
			arrearsTotal = arrearsTotal.Add(entry.Installment)
			if !covered {
				snap.ArrearsMonths++
			}
		}
	}

	if overdue := dueTotal.Sub(verifiedPaid); overdue.GreaterThan(decimal.Zero) {
		snap.OverdueAmount = overdue
	}
	if arrears := arrearsTotal.Sub(verifiedPaid); arrears.GreaterThan(decimal.Zero) {
		snap.ArrearsAmount = arrears
	}

	if snap.FirstUnpaidDueDate != nil && snap.FirstUnpaidDueDate.Before(today) {
		snap.DaysPastDue = util.DaysBetween(*snap.FirstUnpaidDueDate, today)
	}
	snap.NPL = snap.DaysPastDue >= domain.NPLThresholdDays
	snap.Bucket = domain.BucketForDPD(snap.DaysPastDue)

	return snap
}

// GetArrearsSnapshot loads the loan and its ledger and resolves delinquency
// via the verified path. A loan with no recorded payments yields a snapshot,
// never an error.
func (s *ArrearsService) GetArrearsSnapshot(ctx context.Context, loanID uuid.UUID) (*domain.ArrearsSnapshot, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
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

	snap := VerifiedSnapshot(loan, schedule, payments, s.clock.Now())
	return &snap, nil
}
