package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func validLoan() *Loan {
	return &Loan{
		ID:               uuid.New(),
		BorrowerName:     "Borrower",
		Principal:        decimal.NewFromInt(10_000),
		AnnualRate:       decimal.NewFromInt(6),
		TenorMonths:      24,
		DisbursementDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestLoanValidate(t *testing.T) {
	if err := validLoan().Validate(); err != nil {
		t.Errorf("valid loan rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Loan)
		wantErr error
	}{
		{"empty borrower", func(l *Loan) { l.BorrowerName = "" }, ErrLoanBorrowerEmpty},
		{"zero principal", func(l *Loan) { l.Principal = decimal.Zero }, ErrLoanPrincipalInvalid},
		{"negative principal", func(l *Loan) { l.Principal = decimal.NewFromInt(-5) }, ErrLoanPrincipalInvalid},
		{"zero tenor", func(l *Loan) { l.TenorMonths = 0 }, ErrLoanTenorInvalid},
		{"tenor above bound", func(l *Loan) { l.TenorMonths = MaxTenorMonths + 1 }, ErrLoanTenorInvalid},
		{"negative rate", func(l *Loan) { l.AnnualRate = decimal.NewFromInt(-1) }, ErrLoanRateInvalid},
		{"negative moratorium", func(l *Loan) { l.MoratoriumMonths = -1 }, ErrLoanMoratoriumInvalid},
		{"missing disbursement", func(l *Loan) { l.DisbursementDate = time.Time{} }, ErrLoanDisbursementMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := validLoan()
			tt.mutate(loan)
			if err := loan.Validate(); err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPaymentValidate(t *testing.T) {
	valid := Payment{
		LoanID:      uuid.New(),
		Amount:      decimal.NewFromInt(100),
		PaidDate:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		PeriodIndex: 1,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid payment rejected: %v", err)
	}

	missingLoan := valid
	missingLoan.LoanID = uuid.Nil
	if err := missingLoan.Validate(); err != ErrPaymentLoanIDRequired {
		t.Errorf("expected ErrPaymentLoanIDRequired, got %v", err)
	}

	zeroAmount := valid
	zeroAmount.Amount = decimal.Zero
	if err := zeroAmount.Validate(); err != ErrPaymentAmountInvalid {
		t.Errorf("expected ErrPaymentAmountInvalid, got %v", err)
	}

	badPeriod := valid
	badPeriod.PeriodIndex = 0
	if err := badPeriod.Validate(); err != ErrPaymentPeriodInvalid {
		t.Errorf("expected ErrPaymentPeriodInvalid, got %v", err)
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(decimal.NewFromInt(100), decimal.NewFromInt(100)) {
		t.Error("equal amounts must be within tolerance")
	}
	if !WithinTolerance(decimal.NewFromInt(100), decimal.NewFromInt(99)) {
		t.Error("a unit of drift is within tolerance")
	}
	if WithinTolerance(decimal.NewFromInt(100), decimal.NewFromFloat(98.99)) {
		t.Error("more than a unit of drift must not be within tolerance")
	}
}

func TestBucketForDPD(t *testing.T) {
	tests := []struct {
		dpd  int
		want HealthBucket
	}{
		{0, HealthCurrent},
		{1, HealthWatch},
		{29, HealthWatch},
		{30, HealthAtRisk},
		{89, HealthAtRisk},
		{90, HealthNonPerforming},
		{400, HealthNonPerforming},
	}
	for _, tt := range tests {
		if got := BucketForDPD(tt.dpd); got != tt.want {
			t.Errorf("BucketForDPD(%d) = %s, want %s", tt.dpd, got, tt.want)
		}
	}
}
