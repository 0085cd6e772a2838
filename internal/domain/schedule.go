package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus is the delinquency classification of a single scheduled period.
type PeriodStatus string

const (
	PeriodStatusPaid        PeriodStatus = "paid"
	PeriodStatusPaidAdvance PeriodStatus = "paid-advance"
	PeriodStatusLatePaid    PeriodStatus = "late-paid"
	PeriodStatusPartial     PeriodStatus = "partial"
	PeriodStatusOverdue     PeriodStatus = "overdue"
	PeriodStatusUpcoming    PeriodStatus = "upcoming"
	PeriodStatusCurrent     PeriodStatus = "current"
)

// ScheduleEntry is one projected period of a loan's amortization. Entries are
// recomputed from loan parameters on demand and immutable once computed.
type ScheduleEntry struct {
	Period         int32           `json:"period"` // 1..tenor
	DueDate        time.Time       `json:"dueDate"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Principal      decimal.Decimal `json:"principal"`
	Interest       decimal.Decimal `json:"interest"`
	Installment    decimal.Decimal `json:"installment"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

// ScheduleResult is the full output of one amortization computation.
type ScheduleResult struct {
	Entries            []ScheduleEntry `json:"entries"`
	MonthlyInstallment decimal.Decimal `json:"monthlyInstallment"`
	TotalInterest      decimal.Decimal `json:"totalInterest"`
	TotalPayment       decimal.Decimal `json:"totalPayment"`
	// CapitalizedBalance is the amortizing balance the annuity was computed
	// against: the principal plus capitalized moratorium interest, or the
	// plain principal when the accrual policy does not capitalize.
	CapitalizedBalance decimal.Decimal `json:"capitalizedBalance"`
	CommencementDate   time.Time       `json:"commencementDate"`
	TerminationDate    time.Time       `json:"terminationDate"`
}
