package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/tourops/backend/internal/domain/ledger"
	"github.com/tourops/backend/internal/domain/shared"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByReservation(ctx context.Context, reservationID uuid.UUID) ([]*ledger.Account, error) {
	args := m.Called(ctx, reservationID)
	return args.Get(0).([]*ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByReservationForUpdate(ctx context.Context, reservationID uuid.UUID) ([]*ledger.Account, error) {
	args := m.Called(ctx, reservationID)
	return args.Get(0).([]*ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindWithPastDueInstallments(ctx context.Context, asOf time.Time, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, asOf, limit)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	return m.Called(ctx, account).Error(0)
}

type MockInstallmentRepository struct {
	mock.Mock
}

func (m *MockInstallmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Installment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Installment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*ledger.Installment, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).([]*ledger.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindByAccountForUpdate(ctx context.Context, accountID uuid.UUID) ([]*ledger.Installment, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).([]*ledger.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindOutstanding(ctx context.Context, accountID uuid.UUID) ([]*ledger.Installment, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).([]*ledger.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindOutstandingForUpdate(ctx context.Context, accountID uuid.UUID) ([]*ledger.Installment, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).([]*ledger.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) Save(ctx context.Context, installment *ledger.Installment) error {
	return m.Called(ctx, installment).Error(0)
}

func (m *MockInstallmentRepository) SaveBatch(ctx context.Context, installments []*ledger.Installment) error {
	return m.Called(ctx, installments).Error(0)
}

func (m *MockInstallmentRepository) MarkPendingAsPaid(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *ledger.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *MockPaymentRepository) ExistsForInstallment(ctx context.Context, installmentID uuid.UUID) (bool, error) {
	args := m.Called(ctx, installmentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*ledger.Payment, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).([]*ledger.Payment), args.Error(1)
}

type MockReceiptCounter struct {
	mock.Mock
}

func (m *MockReceiptCounter) Next(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type MockAttachmentResolver struct {
	mock.Mock
}

func (m *MockAttachmentResolver) Resolve(ctx context.Context, ref string) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

type MockSummaryCache struct {
	mock.Mock
}

func (m *MockSummaryCache) Get(ctx context.Context, accountID uuid.UUID) (*ledger.AccountSummary, bool, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*ledger.AccountSummary), args.Bool(1), args.Error(2)
}

func (m *MockSummaryCache) Set(ctx context.Context, summary *ledger.AccountSummary) error {
	return m.Called(ctx, summary).Error(0)
}

func (m *MockSummaryCache) Invalidate(ctx context.Context, accountIDs ...uuid.UUID) error {
	return m.Called(ctx, accountIDs).Error(0)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) PaymentRecorded(ctx context.Context, operation string, method ledger.PaymentMethod, amount decimal.Decimal) {
	m.Called(ctx, operation, method, amount)
}

func (m *MockMetrics) AllocationCompleted(ctx context.Context, allocations int, applied, remaining decimal.Decimal) {
	m.Called(ctx, allocations, applied, remaining)
}

func (m *MockMetrics) OperationRejected(ctx context.Context, operation, code string) {
	m.Called(ctx, operation, code)
}

type fixture struct {
	accounts     *MockAccountRepository
	installments *MockInstallmentRepository
	payments     *MockPaymentRepository
	counter      *MockReceiptCounter
	publisher    *MockEventPublisher
	allocator    *Allocator
}

func newFixture(opts ...AllocatorOption) *fixture {
	f := &fixture{
		accounts:     new(MockAccountRepository),
		installments: new(MockInstallmentRepository),
		payments:     new(MockPaymentRepository),
		counter:      new(MockReceiptCounter),
		publisher:    new(MockEventPublisher),
	}
	scope := NewNoOpTransactionScope(f.accounts, f.installments, f.payments, f.counter)
	f.allocator = NewAllocator(scope, f.publisher, nil, opts...)
	return f
}

func (f *fixture) assertExpectations(t mock.TestingT) {
	f.accounts.AssertExpectations(t)
	f.installments.AssertExpectations(t)
	f.payments.AssertExpectations(t)
	f.counter.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func testDay(n int) time.Time {
	return time.Date(2026, time.March, n, 0, 0, 0, 0, time.UTC)
}

func openAccount(total int64, installments int) *ledger.Account {
	acc, err := ledger.NewAccount(uuid.New(), uuid.New(), decimal.NewFromInt(total), installments)
	if err != nil {
		panic(err)
	}
	return acc
}

func newInstallment(accountID uuid.UUID, seq int, due time.Time, amount int64) *ledger.Installment {
	inst, err := ledger.NewInstallment(accountID, seq, due, decimal.NewFromInt(amount))
	if err != nil {
		panic(err)
	}
	return inst
}
