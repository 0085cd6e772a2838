package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/spiricx/hrlrms-sub002/internal/domain"
	"github.com/spiricx/hrlrms-sub002/internal/service"
)

// ReconciliationHandler exposes the integrity-check run and its audit trail
type ReconciliationHandler struct {
	reconciliation *service.ReconciliationService
	reportRepo     domain.IntegrityReportRepository
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(reconciliation *service.ReconciliationService, reportRepo domain.IntegrityReportRepository) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliation: reconciliation, reportRepo: reportRepo}
}

// RunIntegrityCheck handles POST /api/reconciliation/run (operator action)
func (h *ReconciliationHandler) RunIntegrityCheck(c echo.Context) error {
	report, err := h.reconciliation.RunIntegrityCheck(c.Request().Context())
	if err != nil {
		if errors.Is(err, domain.ErrReconciliationRunning) {
			return NewConflictError(c, "A reconciliation run is already in progress")
		}
		if report != nil {
			// Corrections were applied but the audit record failed to persist.
			log.Error().Err(err).Msg("Integrity report not persisted")
			return NewInternalError(c, "Run completed but the audit record could not be persisted")
		}
		log.Error().Err(err).Msg("Integrity check failed")
		return NewInternalError(c, "Integrity check failed")
	}
	return c.JSON(http.StatusOK, report)
}

// ListReports handles GET /api/reconciliation/reports?limit=N
func (h *ReconciliationHandler) ListReports(c echo.Context) error {
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			return NewValidationError(c, "limit must be an integer between 1 and 100")
		}
		limit = parsed
	}

	reports, err := h.reportRepo.ListRecent(c.Request().Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list integrity reports")
		return NewInternalError(c, "Failed to list integrity reports")
	}
	return c.JSON(http.StatusOK, reports)
}
