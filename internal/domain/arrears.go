package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NPLThresholdDays marks a loan non-performing once it is this many days past due.
const NPLThresholdDays = 90

// PAR thresholds for portfolio-at-risk counts.
const (
	PAR30Days = 30
	PAR90Days = 90
)

// HealthBucket groups a loan by how far past due it is.
type HealthBucket string

const (
	HealthCurrent       HealthBucket = "current"        // 0 DPD
	HealthWatch         HealthBucket = "watch"          // 1-29 DPD
	HealthAtRisk        HealthBucket = "at_risk"        // 30-89 DPD
	HealthNonPerforming HealthBucket = "non_performing" // 90+ DPD
)

// BucketForDPD maps days past due onto a health bucket.
func BucketForDPD(daysPastDue int) HealthBucket {
	switch {
	case daysPastDue >= PAR90Days:
		return HealthNonPerforming
	case daysPastDue >= PAR30Days:
		return HealthAtRisk
	case daysPastDue > 0:
		return HealthWatch
	default:
		return HealthCurrent
	}
}

// ArrearsSnapshot describes a loan's delinquency at a point in time. It is
// derived state, recomputed on read; the ledger-verified figures are the
// golden record whenever they disagree with the loan's cached totals.
type ArrearsSnapshot struct {
	LoanID             uuid.UUID       `json:"loanId"`
	AsOf               time.Time       `json:"asOf"`
	ArrearsAmount      decimal.Decimal `json:"arrearsAmount"`
	ArrearsMonths      int             `json:"arrearsMonths"`
	OverdueAmount      decimal.Decimal `json:"overdueAmount"`
	OverdueMonths      int             `json:"overdueMonths"`
	DaysPastDue        int             `json:"daysPastDue"`
	MonthsPaid         int             `json:"monthsPaid"`
	MonthsDue          int             `json:"monthsDue"`
	NPL                bool            `json:"npl"`
	Bucket             HealthBucket    `json:"bucket"`
	HasDiscrepancy     bool            `json:"hasDiscrepancy"`
	VerifiedTotalPaid  decimal.Decimal `json:"verifiedTotalPaid"`
	FirstUnpaidDueDate *time.Time      `json:"firstUnpaidDueDate,omitempty"`
}

// ArrearsEstimate is the cheap calendar-elapsed approximation used on list
// views. It must never feed reconciliation or default classification.
type ArrearsEstimate struct {
	NotYetDue     bool            `json:"notYetDue"`
	MonthsElapsed int             `json:"monthsElapsed"`
	ExpectedPaid  decimal.Decimal `json:"expectedPaid"`
	Deficit       decimal.Decimal `json:"deficit"`
	MonthsBehind  int             `json:"monthsBehind"`
	DaysPastDue   int             `json:"daysPastDue"`
	ArrearsAmount decimal.Decimal `json:"arrearsAmount"`
}
