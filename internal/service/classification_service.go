package service

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spiricx/hrlrms-sub002/internal/domain"
	"github.com/spiricx/hrlrms-sub002/internal/util"
)

// MatchPaymentsToPeriods groups a payment ledger by the payment's declared
// target period. The ledger, not the calendar, decides which period a payment
// satisfies; payments declaring a period outside the schedule are left out of
// the map but remain in the ledger for audit.
func MatchPaymentsToPeriods(payments []*domain.Payment, entries []domain.ScheduleEntry) map[int][]*domain.Payment {
	matched := make(map[int][]*domain.Payment, len(entries))
	for _, p := range payments {
		idx := int(p.PeriodIndex)
		if idx < 1 || idx > len(entries) {
			continue
		}
		matched[idx] = append(matched[idx], p)
	}
	return matched
}

// ClassifyPeriod derives the status of one scheduled period from its matched
// payments and the current date. It is a pure function: same inputs, same
// status. Missing payments classify the period, they never error.
//
// The rule order matters: a period that is both in the current calendar month
// and technically past its due date resolves to "current", not "overdue".
func ClassifyPeriod(entry domain.ScheduleEntry, payments []*domain.Payment, now time.Time) domain.PeriodStatus {
	today := util.TruncateToDay(now)
	dueDate := util.TruncateToDay(entry.DueDate)
	totalPaid := domain.SumPayments(payments)

	// Satisfied within tolerance: installment - ε counts as fully paid.
	if totalPaid.GreaterThanOrEqual(entry.Installment.Sub(domain.MoneyTolerance)) && totalPaid.GreaterThan(decimal.Zero) {
		switch {
		case dueDate.After(today):
			return domain.PeriodStatusPaidAdvance
		case anyPaidAfter(payments, dueDate):
			return domain.PeriodStatusLatePaid
		default:
			return domain.PeriodStatusPaid
		}
	}

	if totalPaid.GreaterThan(decimal.Zero) {
		return domain.PeriodStatusPartial
	}

	if util.SameMonth(dueDate, today) {
		return domain.PeriodStatusCurrent
	}

	if dueDate.Before(today) {
		return domain.PeriodStatusOverdue
	}

	return domain.PeriodStatusUpcoming
}

// anyPaidAfter reports whether any constituent payment landed strictly after
// the due date, at day granularity.
func anyPaidAfter(payments []*domain.Payment, dueDate time.Time) bool {
	for _, p := range payments {
		if util.TruncateToDay(p.PaidDate).After(dueDate) {
			return true
		}
	}
	return false
}

// ClassifiedPeriod pairs a schedule entry with its status and paid total for
// the repayment-schedule grid.
type ClassifiedPeriod struct {
	Entry     domain.ScheduleEntry `json:"entry"`
	Status    domain.PeriodStatus  `json:"status"`
	TotalPaid decimal.Decimal      `json:"totalPaid"`
	Payments  []*domain.Payment    `json:"payments,omitempty"`
}

// ClassifySchedule classifies every period of a schedule against the ledger.
func ClassifySchedule(entries []domain.ScheduleEntry, payments []*domain.Payment, now time.Time) []ClassifiedPeriod {
	matched := MatchPaymentsToPeriods(payments, entries)
	out := make([]ClassifiedPeriod, 0, len(entries))
	for _, entry := range entries {
		periodPayments := matched[int(entry.Period)]
		out = append(out, ClassifiedPeriod{
			Entry:     entry,
			Status:    ClassifyPeriod(entry, periodPayments, now),
			TotalPaid: domain.SumPayments(periodPayments),
			Payments:  periodPayments,
		})
	}
	return out
}
