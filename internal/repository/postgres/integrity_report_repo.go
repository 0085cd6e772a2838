package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spiricx/hrlrms-sub002/internal/domain"
)

// IntegrityReportRepository implements domain.IntegrityReportRepository using
// PostgreSQL. Reports are an append-only audit trail; the discrepancy sample
// is stored as a JSONB document alongside the aggregate columns.
type IntegrityReportRepository struct {
	pool *pgxpool.Pool
}

// NewIntegrityReportRepository creates a new IntegrityReportRepository.
func NewIntegrityReportRepository(pool *pgxpool.Pool) *IntegrityReportRepository {
	return &IntegrityReportRepository{pool: pool}
}

// Create appends one report to the audit trail.
func (r *IntegrityReportRepository) Create(ctx context.Context, report *domain.IntegrityReport) error {
	paidVariance, err := decimalToPgNumeric(report.TotalPaidVariance)
	if err != nil {
		return err
	}
	balanceVariance, err := decimalToPgNumeric(report.TotalBalanceVariance)
	if err != nil {
		return err
	}
	nplRatio, err := decimalToPgNumeric(report.NPLRatio)
	if err != nil {
		return err
	}
	details, err := json.Marshal(report.Discrepancies)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
INSERT INTO integrity_reports (id, run_at, status, loans_checked, discrepancy_count,
	corrected_count, skipped_write_count, total_paid_variance, total_balance_variance,
	npl_count, npl_ratio, par30_count, par90_count, discrepancies)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		report.ID, report.RunAt, string(report.Status), report.LoansChecked, report.DiscrepancyCount,
		report.CorrectedCount, report.SkippedWriteCount, paidVariance, balanceVariance,
		report.NPLCount, nplRatio, report.PAR30Count, report.PAR90Count, details)
	return err
}

// ListRecent retrieves the most recent reports, newest first.
func (r *IntegrityReportRepository) ListRecent(ctx context.Context, limit int) ([]*domain.IntegrityReport, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
SELECT id, run_at, status, loans_checked, discrepancy_count, corrected_count,
	skipped_write_count, total_paid_variance, total_balance_variance,
	npl_count, npl_ratio, par30_count, par90_count, discrepancies
FROM integrity_reports
ORDER BY run_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*domain.IntegrityReport
	for rows.Next() {
		var (
			report          domain.IntegrityReport
			status          string
			paidVariance    pgtype.Numeric
			balanceVariance pgtype.Numeric
			nplRatio        pgtype.Numeric
			details         []byte
		)
		err := rows.Scan(&report.ID, &report.RunAt, &status, &report.LoansChecked,
			&report.DiscrepancyCount, &report.CorrectedCount, &report.SkippedWriteCount,
			&paidVariance, &balanceVariance, &report.NPLCount, &nplRatio,
			&report.PAR30Count, &report.PAR90Count, &details)
		if err != nil {
			return nil, err
		}
		report.Status = domain.ReportStatus(status)
		report.TotalPaidVariance = pgNumericToDecimal(paidVariance)
		report.TotalBalanceVariance = pgNumericToDecimal(balanceVariance)
		report.NPLRatio = pgNumericToDecimal(nplRatio)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &report.Discrepancies); err != nil {
				return nil, err
			}
		}
		reports = append(reports, &report)
	}
	return reports, rows.Err()
}
