package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportStatus is the overall verdict of one integrity run.
type ReportStatus string

const (
	ReportStatusClean         ReportStatus = "clean"
	ReportStatusDiscrepancies ReportStatus = "discrepancies_found"
)

// MaxDiscrepancyDetails bounds the sample of per-loan detail rows kept on a
// report so a badly drifted portfolio cannot balloon the audit record.
const MaxDiscrepancyDetails = 50

// Discrepancy is one loan whose cached financial state disagrees with the
// verified ledger beyond tolerance.
type Discrepancy struct {
	LoanID            uuid.UUID       `json:"loanId"`
	BorrowerName      string          `json:"borrowerName"`
	SystemTotalPaid   decimal.Decimal `json:"systemTotalPaid"`
	VerifiedTotalPaid decimal.Decimal `json:"verifiedTotalPaid"`
	SystemOutstanding decimal.Decimal `json:"systemOutstanding"`
	TrueOutstanding   decimal.Decimal `json:"trueOutstanding"`
	PaidVariance      decimal.Decimal `json:"paidVariance"`
	BalanceVariance   decimal.Decimal `json:"balanceVariance"`
	Corrected         bool            `json:"corrected"`
}

// IntegrityReport is the append-only audit record of one reconciliation run.
type IntegrityReport struct {
	ID                 uuid.UUID       `json:"id"`
	RunAt              time.Time       `json:"runAt"`
	Status             ReportStatus    `json:"status"`
	LoansChecked       int             `json:"loansChecked"`
	DiscrepancyCount   int             `json:"discrepancyCount"`
	CorrectedCount     int             `json:"correctedCount"`
	SkippedWriteCount  int             `json:"skippedWriteCount"`
	TotalPaidVariance  decimal.Decimal `json:"totalPaidVariance"`
	TotalBalanceVariance decimal.Decimal `json:"totalBalanceVariance"`
	NPLCount           int             `json:"nplCount"`
	NPLRatio           decimal.Decimal `json:"nplRatio"` // NPL balance / active balance
	PAR30Count         int             `json:"par30Count"`
	PAR90Count         int             `json:"par90Count"`
	Discrepancies      []Discrepancy   `json:"discrepancies"`
}

type IntegrityReportRepository interface {
	// Create appends a report to the audit trail. Reports are never updated
	// or deleted.
	Create(ctx context.Context, report *IntegrityReport) error
	ListRecent(ctx context.Context, limit int) ([]*IntegrityReport, error)
}
