package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/spiricx/hrlrms-sub002/internal/domain"
	"github.com/spiricx/hrlrms-sub002/internal/service"
	"github.com/spiricx/hrlrms-sub002/internal/testutil"
)

type reconciliationHandlerEnv struct {
	echo       *echo.Echo
	handler    *ReconciliationHandler
	loanRepo   *testutil.MockLoanRepository
	reportRepo *testutil.MockIntegrityReportRepository
}

func newReconciliationHandlerEnv(now time.Time) *reconciliationHandlerEnv {
	loanRepo := testutil.NewMockLoanRepository()
	paymentRepo := testutil.NewMockPaymentRepository()
	reportRepo := testutil.NewMockIntegrityReportRepository()
	svc := service.NewReconciliationService(loanRepo, paymentRepo, reportRepo, testutil.FixedClock{Time: now}, zerolog.Nop())
	return &reconciliationHandlerEnv{
		echo:       echo.New(),
		handler:    NewReconciliationHandler(svc, reportRepo),
		loanRepo:   loanRepo,
		reportRepo: reportRepo,
	}
}

func TestRunIntegrityCheckHandler_CleanRun(t *testing.T) {
	env := newReconciliationHandlerEnv(time.Date(2024, 6, 15, 2, 0, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodPost, "/api/reconciliation/run", nil)
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)

	if err := env.handler.RunIntegrityCheck(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var report domain.IntegrityReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("Failed to unmarshal report: %v", err)
	}
	if report.Status != domain.ReportStatusClean {
		t.Errorf("Expected clean status, got %s", report.Status)
	}
	if len(env.reportRepo.Reports) != 1 {
		t.Errorf("Expected one persisted report, got %d", len(env.reportRepo.Reports))
	}
}

func TestRunIntegrityCheckHandler_ReportsDiscrepancies(t *testing.T) {
	env := newReconciliationHandlerEnv(time.Date(2024, 6, 15, 2, 0, 0, 0, time.UTC))
	env.loanRepo.Add(&domain.Loan{
		ID:               uuid.New(),
		BorrowerName:     "Drifted Borrower",
		Principal:        decimal.NewFromInt(1200),
		AnnualRate:       decimal.Zero,
		TenorMonths:      12,
		DisbursementDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TotalPaid:        decimal.NewFromInt(450), // nothing in the ledger backs this
		Outstanding:      decimal.NewFromInt(750),
		Status:           domain.LoanStatusActive,
		Version:          1,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/reconciliation/run", nil)
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)

	if err := env.handler.RunIntegrityCheck(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var report domain.IntegrityReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("Failed to unmarshal report: %v", err)
	}
	if report.Status != domain.ReportStatusDiscrepancies {
		t.Errorf("Expected discrepancies_found, got %s", report.Status)
	}
	if report.CorrectedCount != 1 {
		t.Errorf("Expected one corrected loan, got %d", report.CorrectedCount)
	}
}

func TestRunIntegrityCheckHandler_ConcurrentRunConflicts(t *testing.T) {
	env := newReconciliationHandlerEnv(time.Date(2024, 6, 15, 2, 0, 0, 0, time.UTC))

	started := make(chan struct{})
	release := make(chan struct{})
	env.loanRepo.GetAllFn = func(ctx context.Context) ([]*domain.Loan, error) {
		close(started)
		<-release
		return nil, nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		req := httptest.NewRequest(http.MethodPost, "/api/reconciliation/run", nil)
		c := env.echo.NewContext(req, httptest.NewRecorder())
		_ = env.handler.RunIntegrityCheck(c)
	}()

	<-started
	req := httptest.NewRequest(http.MethodPost, "/api/reconciliation/run", nil)
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)

	if err := env.handler.RunIntegrityCheck(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}

	close(release)
	<-done
}

func TestListReportsHandler(t *testing.T) {
	env := newReconciliationHandlerEnv(time.Now())
	for i := 0; i < 3; i++ {
		env.reportRepo.Reports = append(env.reportRepo.Reports, &domain.IntegrityReport{
			ID:     uuid.New(),
			Status: domain.ReportStatusClean,
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/reconciliation/reports?limit=2", nil)
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)

	if err := env.handler.ListReports(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var reports []*domain.IntegrityReport
	if err := json.Unmarshal(rec.Body.Bytes(), &reports); err != nil {
		t.Fatalf("Failed to unmarshal reports: %v", err)
	}
	if len(reports) != 2 {
		t.Errorf("Expected 2 reports, got %d", len(reports))
	}
}

func TestListReportsHandler_InvalidLimit(t *testing.T) {
	env := newReconciliationHandlerEnv(time.Now())

	for _, limit := range []string{"0", "101", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/reconciliation/reports?limit="+limit, nil)
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(req, rec)

		if err := env.handler.ListReports(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit %q: expected status 400, got %d", limit, rec.Code)
		}
	}
}
