package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spiricx/hrlrms-sub002/internal/domain"
)

// FixedClock implements domain.Clock with a fixed instant.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time { return c.Time }

// MockLoanRepository is a mock implementation of domain.LoanRepository
type MockLoanRepository struct {
	mu    sync.Mutex
	Loans map[uuid.UUID]*domain.Loan
	Order []uuid.UUID

	GetAllFn          func(ctx context.Context) ([]*domain.Loan, error)
	ApplyCorrectionFn func(ctx context.Context, correction domain.LoanCorrection) error

	Corrections []domain.LoanCorrection
}

// NewMockLoanRepository creates a new MockLoanRepository
func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{Loans: make(map[uuid.UUID]*domain.Loan)}
}

// Add seeds a loan into the mock store.
func (m *MockLoanRepository) Add(loan *domain.Loan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Loans[loan.ID]; !ok {
		m.Order = append(m.Order, loan.ID)
	}
	m.Loans[loan.ID] = loan
}

// Create creates a new loan
func (m *MockLoanRepository) Create(_ context.Context, loan *domain.Loan) (*domain.Loan, error) {
	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
	}
	loan.Version = 1
	loan.CreatedAt = time.Now()
	loan.UpdatedAt = loan.CreatedAt
	m.Add(loan)
	return loan, nil
}

// GetByID retrieves a loan by ID
func (m *MockLoanRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if loan, ok := m.Loans[id]; ok {
		return loan, nil
	}
	return nil, domain.ErrLoanNotFound
}

// GetAll retrieves all loans in insertion order
func (m *MockLoanRepository) GetAll(ctx context.Context) ([]*domain.Loan, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	loans := make([]*domain.Loan, 0, len(m.Order))
	for _, id := range m.Order {
		loans = append(loans, m.Loans[id])
	}
	return loans, nil
}

// GetActive retrieves loans that still carry a balance
func (m *MockLoanRepository) GetActive(ctx context.Context) ([]*domain.Loan, error) {
	all, err := m.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var active []*domain.Loan
	for _, loan := range all {
		if loan.Status != domain.LoanStatusCompleted && loan.Outstanding.GreaterThan(decimal.Zero) {
			active = append(active, loan)
		}
	}
	return active, nil
}

// UpdateTotals refreshes the denormalized cache
func (m *MockLoanRepository) UpdateTotals(_ context.Context, id uuid.UUID, totalPaid, outstanding decimal.Decimal, status domain.LoanStatus) (*domain.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.Loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	loan.TotalPaid = totalPaid
	loan.Outstanding = outstanding
	loan.Status = status
	loan.Version++
	loan.UpdatedAt = time.Now()
	return loan, nil
}

// ApplyCorrection performs the optimistic write-back
func (m *MockLoanRepository) ApplyCorrection(ctx context.Context, correction domain.LoanCorrection) error {
	if m.ApplyCorrectionFn != nil {
		return m.ApplyCorrectionFn(ctx, correction)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.Loans[correction.LoanID]
	if !ok {
		return domain.ErrLoanNotFound
	}
	if loan.Version != correction.ExpectedVersion {
		return domain.ErrLoanVersionConflict
	}
	loan.TotalPaid = correction.TotalPaid
	loan.Outstanding = correction.Outstanding
	loan.Status = correction.Status
	loan.Version++
	m.Corrections = append(m.Corrections, correction)
	return nil
}

// MockPaymentRepository is a mock implementation of domain.PaymentRepository
type MockPaymentRepository struct {
	mu       sync.Mutex
	ByLoanID map[uuid.UUID][]*domain.Payment
	nextID   int64

	GetAllFn func(ctx context.Context) ([]*domain.Payment, error)
}

// NewMockPaymentRepository creates a new MockPaymentRepository
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{ByLoanID: make(map[uuid.UUID][]*domain.Payment)}
}

// Create appends a payment to the ledger
func (m *MockPaymentRepository) Create(_ context.Context, payment *domain.Payment) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	payment.ID = m.nextID
	payment.CreatedAt = time.Now()
	m.ByLoanID[payment.LoanID] = append(m.ByLoanID[payment.LoanID], payment)
	return payment, nil
}

// GetByLoanID retrieves the ledger for one loan
func (m *MockPaymentRepository) GetByLoanID(_ context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ByLoanID[loanID], nil
}

// GetAll retrieves the full ledger
func (m *MockPaymentRepository) GetAll(ctx context.Context) ([]*domain.Payment, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*domain.Payment
	for _, payments := range m.ByLoanID {
		all = append(all, payments...)
	}
	return all, nil
}

// MockIntegrityReportRepository is a mock implementation of domain.IntegrityReportRepository
type MockIntegrityReportRepository struct {
	mu      sync.Mutex
	Reports []*domain.IntegrityReport

	CreateFn func(ctx context.Context, report *domain.IntegrityReport) error
}

// NewMockIntegrityReportRepository creates a new MockIntegrityReportRepository
func NewMockIntegrityReportRepository() *MockIntegrityReportRepository {
	return &MockIntegrityReportRepository{}
}

// Create appends a report
func (m *MockIntegrityReportRepository) Create(ctx context.Context, report *domain.IntegrityReport) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, report)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reports = append(m.Reports, report)
	return nil
}

// ListRecent retrieves the most recent reports, newest first
func (m *MockIntegrityReportRepository) ListRecent(_ context.Context, limit int) ([]*domain.IntegrityReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.IntegrityReport
	for i := len(m.Reports) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.Reports[i])
	}
	return out, nil
}
