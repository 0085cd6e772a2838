package service

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spiricx/hrlrms-sub002/internal/domain"
	"github.com/spiricx/hrlrms-sub002/internal/util"
)

// AccrualPolicy names an interest-accrual strategy. The legacy system carried
// two divergent amortization code paths; here the choice is a single explicit
// configuration knob.
type AccrualPolicy string

const (
	// AccrualActual365 accrues moratorium interest on an actual/365 day count
	// and capitalizes it into the amortizing balance at commencement. This is
	// the authoritative policy: reconciliation always computes with it.
	AccrualActual365 AccrualPolicy = "actual365"
	// AccrualCalendar delays repayment start without capitalizing moratorium
	// interest; the annuity is computed off the original principal.
	AccrualCalendar AccrualPolicy = "calendar"
)

// ParseAccrualPolicy maps a config value onto a policy, defaulting to actual365.
func ParseAccrualPolicy(s string) (AccrualPolicy, error) {
	switch AccrualPolicy(s) {
	case AccrualActual365, "":
		return AccrualActual365, nil
	case AccrualCalendar:
		return AccrualCalendar, nil
	default:
		return "", fmt.Errorf("unknown accrual policy %q", s)
	}
}

// LoanParameters are the origination inputs to one schedule computation.
type LoanParameters struct {
	Principal        decimal.Decimal
	AnnualRate       decimal.Decimal // percent
	TenorMonths      int
	MoratoriumMonths int
	DisbursementDate time.Time
}

// AccrualStrategy determines the amortizing balance at commencement.
type AccrualStrategy interface {
	Name() AccrualPolicy
	OpeningBalance(params LoanParameters, commencement time.Time) decimal.Decimal
}

type actual365Strategy struct{}

func (actual365Strategy) Name() AccrualPolicy { return AccrualActual365 }

// OpeningBalance capitalizes interest accrued from disbursement to
// commencement: principal * rate * days/365, rounded like every stored figure.
func (actual365Strategy) OpeningBalance(params LoanParameters, commencement time.Time) decimal.Decimal {
	days := util.DaysBetween(params.DisbursementDate, commencement)
	if days <= 0 {
		return params.Principal
	}
	annualRate := params.AnnualRate.Div(decimal.NewFromInt(100))
	accrued := params.Principal.
		Mul(annualRate).
		Mul(decimal.NewFromInt(int64(days))).
		Div(decimal.NewFromInt(365)).
		Round(2)
	return params.Principal.Add(accrued)
}

type calendarStrategy struct{}

func (calendarStrategy) Name() AccrualPolicy { return AccrualCalendar }

func (calendarStrategy) OpeningBalance(params LoanParameters, _ time.Time) decimal.Decimal {
	return params.Principal
}

// StrategyFor returns the strategy implementing the given policy.
func StrategyFor(policy AccrualPolicy) AccrualStrategy {
	if policy == AccrualCalendar {
		return calendarStrategy{}
	}
	return actual365Strategy{}
}

// ScheduleService turns origination parameters into a canonical repayment
// schedule. It is pure and stateless; calls are safe to issue concurrently.
type ScheduleService struct {
	strategy AccrualStrategy
}

// NewScheduleService creates a ScheduleService using the given accrual policy.
func NewScheduleService(policy AccrualPolicy) *ScheduleService {
	return &ScheduleService{strategy: StrategyFor(policy)}
}

// Policy returns the accrual policy the service computes with.
func (s *ScheduleService) Policy() AccrualPolicy {
	return s.strategy.Name()
}

// CommencementDate derives the repayment start: disbursement shifted by the
// moratorium and normalized to day 1 of that month. A zero moratorium starts
// repayment on the disbursement date itself.
func CommencementDate(disbursement time.Time, moratoriumMonths int) time.Time {
	if moratoriumMonths <= 0 {
		return util.TruncateToDay(disbursement)
	}
	return util.MonthStart(disbursement.AddDate(0, moratoriumMonths, 0))
}

// TerminationDate is the last day of the final scheduled period.
func TerminationDate(commencement time.Time, tenorMonths int) time.Time {
	return commencement.AddDate(0, tenorMonths, 0).AddDate(0, 0, -1)
}

// MonthlyInstallment computes the standard annuity payment for an amortizing
// balance, degenerating to a straight-line split at zero rate. The power term
// uses float64; all monetary arithmetic stays in decimal.
func MonthlyInstallment(balance decimal.Decimal, monthlyRate decimal.Decimal, tenorMonths int) decimal.Decimal {
	if tenorMonths <= 0 {
		return decimal.Zero
	}
	if monthlyRate.IsZero() {
		return balance.Div(decimal.NewFromInt(int64(tenorMonths))).Round(2)
	}
	r := monthlyRate.InexactFloat64()
	factor := math.Pow(1+r, float64(tenorMonths))
	payment := balance.InexactFloat64() * r * factor / (factor - 1)
	return decimal.NewFromFloat(payment).Round(2)
}

// ComputeSchedule generates the full repayment schedule for the parameters.
// Every stored monetary figure is rounded to 2 decimal places at the step
// that produces it, so individual entries are reproducible. The final period
// is forced to clear the opening balance exactly.
func (s *ScheduleService) ComputeSchedule(params LoanParameters) (*domain.ScheduleResult, error) {
	if params.TenorMonths <= 0 {
		return nil, fmt.Errorf("%w: tenor must be positive, got %d", domain.ErrInvalidLoanParameters, params.TenorMonths)
	}
	if params.Principal.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: principal must be positive, got %s", domain.ErrInvalidLoanParameters, params.Principal)
	}
	if params.AnnualRate.IsNegative() {
		return nil, fmt.Errorf("%w: annual rate must not be negative, got %s", domain.ErrInvalidLoanParameters, params.AnnualRate)
	}
	if params.MoratoriumMonths < 0 {
		return nil, fmt.Errorf("%w: moratorium months must not be negative, got %d", domain.ErrInvalidLoanParameters, params.MoratoriumMonths)
	}
	if params.DisbursementDate.IsZero() {
		return nil, fmt.Errorf("%w: disbursement date is required", domain.ErrInvalidLoanParameters)
	}

	commencement := CommencementDate(params.DisbursementDate, params.MoratoriumMonths)
	termination := TerminationDate(commencement, params.TenorMonths)

	balance := s.strategy.OpeningBalance(params, commencement)
	monthlyRate := params.AnnualRate.
		Div(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(12))

	installment := MonthlyInstallment(balance, monthlyRate, params.TenorMonths)

	entries := make([]domain.ScheduleEntry, 0, params.TenorMonths)
	opening := balance
	totalInterest := decimal.Zero
	totalPayment := decimal.Zero

	for period := 1; period <= params.TenorMonths; period++ {
		dueDate := commencement.AddDate(0, period-1, 0)

		interest := opening.Mul(monthlyRate).Round(2)
		principalPart := installment.Sub(interest)
		periodInstallment := installment

		// Final period clears the opening balance exactly, absorbing the
		// rounding drift of every earlier period.
		if period == params.TenorMonths {
			principalPart = opening
			periodInstallment = principalPart.Add(interest)
		}

		closing := opening.Sub(principalPart)
		if closing.IsNegative() {
			closing = decimal.Zero
		}

		entries = append(entries, domain.ScheduleEntry{
			Period:         int32(period),
			DueDate:        dueDate,
			OpeningBalance: opening,
			Principal:      principalPart,
			Interest:       interest,
			Installment:    periodInstallment,
			ClosingBalance: closing,
		})

		totalInterest = totalInterest.Add(interest)
		totalPayment = totalPayment.Add(periodInstallment)
		opening = closing
	}

	return &domain.ScheduleResult{
		Entries:            entries,
		MonthlyInstallment: installment,
		TotalInterest:      totalInterest,
		TotalPayment:       totalPayment,
		CapitalizedBalance: balance,
		CommencementDate:   commencement,
		TerminationDate:    termination,
	}, nil
}
