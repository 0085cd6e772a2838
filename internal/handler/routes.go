package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/spiricx/hrlrms-sub002/internal/middleware"
)

// RegisterRoutes wires all API routes
func RegisterRoutes(
	e *echo.Echo,
	rateLimiter *middleware.RateLimiter,
	loanHandler *LoanHandler,
	reconciliationHandler *ReconciliationHandler,
) {
	api := e.Group("/api")

	// Loans
	api.POST("/loans", loanHandler.CreateLoan)
	api.GET("/loans", loanHandler.GetLoans)
	api.GET("/loans/:id", loanHandler.GetLoan)
	api.GET("/loans/:id/schedule", loanHandler.GetSchedule)
	api.GET("/loans/:id/arrears", loanHandler.GetArrears)
	api.POST("/loans/:id/payments", loanHandler.RecordPayment)
	api.GET("/loans/:id/payments", loanHandler.GetPayments)

	// Reconciliation
	recon := api.Group("/reconciliation")
	recon.POST("/run", reconciliationHandler.RunIntegrityCheck, middleware.RateLimitMiddleware(rateLimiter))
	recon.GET("/reports", reconciliationHandler.ListReports)
}
