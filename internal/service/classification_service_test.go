package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/spiricx/hrlrms-sub002/internal/domain"
)

func entry(period int32, dueDate time.Time, installment int64) domain.ScheduleEntry {
	return domain.ScheduleEntry{
		Period:      period,
		DueDate:     dueDate,
		Installment: decimal.NewFromInt(installment),
	}
}

func payment(amount int64, paidDate time.Time, periodIndex int32) *domain.Payment {
	return &domain.Payment{
		Amount:      decimal.NewFromInt(amount),
		PaidDate:    paidDate,
		PeriodIndex: periodIndex,
	}
}

func TestClassifyPeriod_AllStatuses(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	may := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	june := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	august := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		entry    domain.ScheduleEntry
		payments []*domain.Payment
		want     domain.PeriodStatus
	}{
		{
			name:     "paid on due date",
			entry:    entry(1, may, 100),
			payments: []*domain.Payment{payment(100, may, 1)},
			want:     domain.PeriodStatusPaid,
		},
		{
			name:     "paid before due date, already due",
			entry:    entry(1, may, 100),
			payments: []*domain.Payment{payment(100, may.AddDate(0, 0, -10), 1)},
			want:     domain.PeriodStatusPaid,
		},
		{
			name:     "paid in advance of future due date",
			entry:    entry(3, august, 100),
			payments: []*domain.Payment{payment(100, now, 3)},
			want:     domain.PeriodStatusPaidAdvance,
		},
		{
			name:     "settled late",
			entry:    entry(1, may, 100),
			payments: []*domain.Payment{payment(100, may.AddDate(0, 0, 9), 1)},
			want:     domain.PeriodStatusLatePaid,
		},
		{
			name:     "partial payment",
			entry:    entry(1, may, 100),
			payments: []*domain.Payment{payment(40, may, 1)},
			want:     domain.PeriodStatusPartial,
		},
		{
			name:  "unpaid past month",
			entry: entry(1, may, 100),
			want:  domain.PeriodStatusOverdue,
		},
		{
			name:  "unpaid in current month",
			entry: entry(2, june, 100),
			want:  domain.PeriodStatusCurrent,
		},
		{
			name:  "future period",
			entry: entry(3, august, 100),
			want:  domain.PeriodStatusUpcoming,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyPeriod(tt.entry, tt.payments, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyPeriod_CurrentMonthBeatsOverdue(t *testing.T) {
	// Due on the 1st, today the 15th: past the due date but still the same
	// calendar month, so the period is "current", not "overdue".
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	e := entry(1, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 250)

	assert.Equal(t, domain.PeriodStatusCurrent, ClassifyPeriod(e, nil, now))
}

func TestClassifyPeriod_ToleranceBoundary(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	e := entry(1, due, 100)

	// installment - 1 is within tolerance and counts as settled.
	atBoundary := []*domain.Payment{payment(99, due, 1)}
	assert.Equal(t, domain.PeriodStatusPaid, ClassifyPeriod(e, atBoundary, now))

	// One unit below the boundary is still a partial payment.
	below := []*domain.Payment{payment(98, due, 1)}
	assert.Equal(t, domain.PeriodStatusPartial, ClassifyPeriod(e, below, now))
}

func TestClassifyPeriod_SplitPaymentsLatestDecidesLateness(t *testing.T) {
	now := time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	e := entry(1, due, 100)

	split := []*domain.Payment{
		payment(60, due, 1),
		payment(40, due.AddDate(0, 0, 20), 1),
	}
	assert.Equal(t, domain.PeriodStatusLatePaid, ClassifyPeriod(e, split, now))
}

func TestClassifyPeriod_IsPure(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	e := entry(1, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), 100)
	payments := []*domain.Payment{payment(40, now, 1)}

	first := ClassifyPeriod(e, payments, now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ClassifyPeriod(e, payments, now))
	}
}

func TestMatchPaymentsToPeriods(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	entries := []domain.ScheduleEntry{
		entry(1, now, 100),
		entry(2, now.AddDate(0, 1, 0), 100),
		entry(3, now.AddDate(0, 2, 0), 100),
	}
	payments := []*domain.Payment{
		payment(100, now, 1),
		payment(50, now, 2),
		payment(50, now, 2),
		payment(100, now, 9),  // beyond the schedule, ignored
		payment(100, now, 0),  // invalid index, ignored
		payment(100, now, -1), // invalid index, ignored
	}

	matched := MatchPaymentsToPeriods(payments, entries)

	assert.Len(t, matched[1], 1)
	assert.Len(t, matched[2], 2)
	assert.Empty(t, matched[3])
	assert.NotContains(t, matched, 9)
	assert.NotContains(t, matched, 0)
}

func TestClassifySchedule(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	entries := []domain.ScheduleEntry{
		entry(1, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), 100),
		entry(2, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), 100),
		entry(3, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 100),
		entry(4, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), 100),
	}
	payments := []*domain.Payment{
		payment(100, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), 1),
		payment(30, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), 2),
	}

	classified := ClassifySchedule(entries, payments, now)

	assert.Len(t, classified, 4)
	assert.Equal(t, domain.PeriodStatusPaid, classified[0].Status)
	assert.Equal(t, domain.PeriodStatusPartial, classified[1].Status)
	assert.Equal(t, domain.PeriodStatusCurrent, classified[2].Status)
	assert.Equal(t, domain.PeriodStatusUpcoming, classified[3].Status)
	assert.True(t, classified[1].TotalPaid.Equal(decimal.NewFromInt(30)))
	assert.True(t, classified[2].TotalPaid.IsZero())
}
