package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tourops/backend/internal/domain/ledger"
)

func TestQueryService_GetAccountSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("computes and caches on miss", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		installments := new(MockInstallmentRepository)
		cache := new(MockSummaryCache)
		acc := openAccount(200, 2)
		i1 := newInstallment(acc.ID, 1, testDay(1), 100)
		i2 := newInstallment(acc.ID, 2, testDay(20), 100)
		require.NoError(t, i1.ApplyPayment(decimal.NewFromInt(100), ledger.PaymentMethodCash, testDay(1)))
		require.NoError(t, acc.ApplyDelta(decimal.NewFromInt(100)))

		cache.On("Get", mock.Anything, acc.ID).Return(nil, false, nil)
		accounts.On("FindByID", mock.Anything, acc.ID).Return(acc, nil)
		installments.On("FindByAccount", mock.Anything, acc.ID).Return([]*ledger.Installment{i1, i2}, nil)
		cache.On("Set", mock.Anything, mock.AnythingOfType("*ledger.AccountSummary")).Return(nil)

		svc := NewQueryService(accounts, installments, new(MockPaymentRepository), cache, nil)
		svc.now = func() time.Time { return testDay(10) }

		summary, err := svc.GetAccountSummary(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.PaidCount)
		assert.Equal(t, 1, summary.PendingCount)
		assert.Equal(t, 0, summary.OverdueCount)
		assert.Equal(t, "50", summary.PercentPaid.String())
		cache.AssertExpectations(t)
	})

	t.Run("serves cached summaries", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		cache := new(MockSummaryCache)
		id := uuid.New()
		cached := &ledger.AccountSummary{AccountID: id, InstallmentCount: 4}
		cache.On("Get", mock.Anything, id).Return(cached, true, nil)

		svc := NewQueryService(accounts, new(MockInstallmentRepository), new(MockPaymentRepository), cache, nil)
		summary, err := svc.GetAccountSummary(ctx, id)
		require.NoError(t, err)
		assert.Same(t, cached, summary)
		accounts.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("cache errors fall through to the database", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		installments := new(MockInstallmentRepository)
		cache := new(MockSummaryCache)
		acc := openAccount(100, 0)

		cache.On("Get", mock.Anything, acc.ID).Return(nil, false, errors.New("redis down"))
		cache.On("Set", mock.Anything, mock.Anything).Return(errors.New("redis down"))
		accounts.On("FindByID", mock.Anything, acc.ID).Return(acc, nil)
		installments.On("FindByAccount", mock.Anything, acc.ID).Return([]*ledger.Installment{}, nil)

		svc := NewQueryService(accounts, installments, new(MockPaymentRepository), cache, nil)
		summary, err := svc.GetAccountSummary(ctx, acc.ID)
		require.NoError(t, err)
		assert.True(t, summary.BalanceDue.Equal(decimal.NewFromInt(100)))
	})
}

func TestSummaryInvalidationHandler(t *testing.T) {
	cache := new(MockSummaryCache)
	h := NewSummaryInvalidationHandler(cache, nil)
	acc := openAccount(100, 0)
	payment, err := ledger.NewPayment(ledger.PaymentDraft{
		AccountID: acc.ID,
		Amount:    decimal.NewFromInt(10),
		Method:    ledger.PaymentMethodCash,
	}, "REC-000001")
	require.NoError(t, err)

	cache.On("Invalidate", mock.Anything, []uuid.UUID{acc.ID}).Return(nil)
	require.NoError(t, h.Handle(context.Background(), ledger.NewPaymentRecordedEvent(payment)))
	cache.AssertExpectations(t)

	assert.Contains(t, h.EventTypes(), ledger.EventTypeReservationPaymentAllocated)
	assert.NoError(t, h.Handle(context.Background(), ledger.NewReservationFullyPaidEvent(uuid.New())))
}

func TestOverdueSweeper_Sweep(t *testing.T) {
	f := newFixture(WithClock(func() time.Time { return testDay(15) }))
	acc := openAccount(300, 3)
	late := newInstallment(acc.ID, 1, testDay(1), 100)
	paid := newInstallment(acc.ID, 2, testDay(2), 100)
	require.NoError(t, paid.ApplyPayment(decimal.NewFromInt(100), ledger.PaymentMethodCash, testDay(2)))
	future := newInstallment(acc.ID, 3, testDay(30), 100)

	f.accounts.On("FindWithPastDueInstallments", mock.Anything, testDay(15), defaultSweepBatch).Return([]uuid.UUID{acc.ID}, nil)
	f.accounts.On("FindByIDForUpdate", mock.Anything, acc.ID).Return(acc, nil)
	f.installments.On("FindByAccountForUpdate", mock.Anything, acc.ID).Return([]*ledger.Installment{late, paid, future}, nil)
	f.installments.On("Save", mock.Anything, late).Return(nil)
	f.accounts.On("Save", mock.Anything, acc).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	sweeper := NewOverdueSweeper(f.allocator, f.accounts, 0, nil)
	result, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.AccountsFlagged)
	assert.Equal(t, 1, result.InstallmentsFlagged)
	assert.Equal(t, ledger.InstallmentStatusOverdue, late.Status)
	assert.Equal(t, ledger.InstallmentStatusPending, future.Status)
	assert.Equal(t, ledger.AccountStatusOverdue, acc.Status)
	f.assertExpectations(t)
}
