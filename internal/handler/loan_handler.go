package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spiricx/hrlrms-sub002/internal/domain"
	"github.com/spiricx/hrlrms-sub002/internal/service"
)

// LoanHandler handles loan-related HTTP requests
type LoanHandler struct {
	loanService    *service.LoanService
	arrearsService *service.ArrearsService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService *service.LoanService, arrearsService *service.ArrearsService) *LoanHandler {
	return &LoanHandler{loanService: loanService, arrearsService: arrearsService}
}

// CreateLoanRequest represents the create loan request body
type CreateLoanRequest struct {
	BorrowerName     string `json:"borrowerName"`
	Principal        string `json:"principal"`
	AnnualRate       string `json:"annualRate"`
	TenorMonths      int32  `json:"tenorMonths"`
	MoratoriumMonths int32  `json:"moratoriumMonths"`
	DisbursementDate string `json:"disbursementDate"` // YYYY-MM-DD
}

// CreateLoan handles POST /api/loans
func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req CreateLoanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	principal, err := decimal.NewFromString(req.Principal)
	if err != nil {
		return NewValidationError(c, "Invalid principal amount")
	}
	annualRate, err := decimal.NewFromString(req.AnnualRate)
	if err != nil {
		return NewValidationError(c, "Invalid annual rate")
	}
	disbursementDate, err := time.Parse("2006-01-02", req.DisbursementDate)
	if err != nil {
		return NewValidationError(c, "Invalid disbursement date, expected YYYY-MM-DD")
	}

	loan, err := h.loanService.CreateLoan(c.Request().Context(), service.CreateLoanInput{
		BorrowerName:     req.BorrowerName,
		Principal:        principal,
		AnnualRate:       annualRate,
		TenorMonths:      req.TenorMonths,
		MoratoriumMonths: req.MoratoriumMonths,
		DisbursementDate: disbursementDate,
	})
	if err != nil {
		if isValidationError(err) {
			return NewValidationError(c, err.Error())
		}
		log.Error().Err(err).Msg("Failed to create loan")
		return NewInternalError(c, "Failed to create loan")
	}

	return c.JSON(http.StatusCreated, loan)
}

// GetLoans handles GET /api/loans
func (h *LoanHandler) GetLoans(c echo.Context) error {
	loans, err := h.loanService.GetLoans(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list loans")
		return NewInternalError(c, "Failed to list loans")
	}
	return c.JSON(http.StatusOK, loans)
}

// GetLoan handles GET /api/loans/:id
func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID")
	}

	loan, err := h.loanService.GetLoanByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return NewNotFoundError(c, "Loan not found")
		}
		log.Error().Err(err).Str("loan_id", id.String()).Msg("Failed to get loan")
		return NewInternalError(c, "Failed to get loan")
	}
	return c.JSON(http.StatusOK, loan)
}

// ScheduleResponse represents the repayment-schedule grid for one loan
type ScheduleResponse struct {
	Summary *domain.ScheduleResult     `json:"summary"`
	Periods []service.ClassifiedPeriod `json:"periods"`
}

// GetSchedule handles GET /api/loans/:id/schedule
func (h *LoanHandler) GetSchedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID")
	}

	summary, periods, err := h.loanService.GetSchedule(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return NewNotFoundError(c, "Loan not found")
		}
		if errors.Is(err, domain.ErrInvalidLoanParameters) {
			return NewValidationError(c, err.Error())
		}
		log.Error().Err(err).Str("loan_id", id.String()).Msg("Failed to compute schedule")
		return NewInternalError(c, "Failed to compute schedule")
	}

	return c.JSON(http.StatusOK, ScheduleResponse{Summary: summary, Periods: periods})
}

// GetArrears handles GET /api/loans/:id/arrears; always the ledger-verified path
func (h *LoanHandler) GetArrears(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID")
	}

	snapshot, err := h.arrearsService.GetArrearsSnapshot(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return NewNotFoundError(c, "Loan not found")
		}
		log.Error().Err(err).Str("loan_id", id.String()).Msg("Failed to compute arrears snapshot")
		return NewInternalError(c, "Failed to compute arrears snapshot")
	}
	return c.JSON(http.StatusOK, snapshot)
}

// RecordPaymentRequest represents the record payment request body
type RecordPaymentRequest struct {
	Amount      string `json:"amount"`
	PaidDate    string `json:"paidDate"` // YYYY-MM-DD, defaults to today
	PeriodIndex int32  `json:"periodIndex"`
	Reference   string `json:"reference,omitempty"`
}

// RecordPayment handles POST /api/loans/:id/payments
func (h *LoanHandler) RecordPayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID")
	}

	var req RecordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid payment amount")
	}
	var paidDate time.Time
	if req.PaidDate != "" {
		paidDate, err = time.Parse("2006-01-02", req.PaidDate)
		if err != nil {
			return NewValidationError(c, "Invalid paid date, expected YYYY-MM-DD")
		}
	}

	payment, err := h.loanService.RecordPayment(c.Request().Context(), id, service.RecordPaymentInput{
		Amount:      amount,
		PaidDate:    paidDate,
		PeriodIndex: req.PeriodIndex,
		Reference:   req.Reference,
	})
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return NewNotFoundError(c, "Loan not found")
		}
		if isValidationError(err) {
			return NewValidationError(c, err.Error())
		}
		log.Error().Err(err).Str("loan_id", id.String()).Msg("Failed to record payment")
		return NewInternalError(c, "Failed to record payment")
	}

	return c.JSON(http.StatusCreated, payment)
}

// GetPayments handles GET /api/loans/:id/payments
func (h *LoanHandler) GetPayments(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID")
	}

	payments, err := h.loanService.GetPayments(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return NewNotFoundError(c, "Loan not found")
		}
		log.Error().Err(err).Str("loan_id", id.String()).Msg("Failed to list payments")
		return NewInternalError(c, "Failed to list payments")
	}
	return c.JSON(http.StatusOK, payments)
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, domain.ErrLoanBorrowerEmpty),
		errors.Is(err, domain.ErrLoanPrincipalInvalid),
		errors.Is(err, domain.ErrLoanTenorInvalid),
		errors.Is(err, domain.ErrLoanRateInvalid),
		errors.Is(err, domain.ErrLoanMoratoriumInvalid),
		errors.Is(err, domain.ErrLoanDisbursementMissing),
		errors.Is(err, domain.ErrPaymentAmountInvalid),
		errors.Is(err, domain.ErrPaymentPeriodInvalid),
		errors.Is(err, domain.ErrPaymentDateMissing),
		errors.Is(err, domain.ErrInvalidLoanParameters):
		return true
	}
	return false
}
