package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tourops/backend/internal/domain/ledger"
	"github.com/tourops/backend/internal/domain/shared"
)

func TestAllocator_PayInstallment(t *testing.T) {
	ctx := context.Background()

	t.Run("records payment and publishes after commit", func(t *testing.T) {
		f := newFixture(WithClock(func() time.Time { return testDay(5) }))
		acc := openAccount(1000, 1)
		inst := newInstallment(acc.ID, 1, testDay(10), 1000)

		f.installments.On("FindByID", mock.Anything, inst.ID).Return(inst, nil)
		f.accounts.On("FindByIDForUpdate", mock.Anything, acc.ID).Return(acc, nil)
		f.installments.On("FindByIDForUpdate", mock.Anything, inst.ID).Return(inst, nil)
		f.payments.On("ExistsForInstallment", mock.Anything, inst.ID).Return(false, nil)
		f.installments.On("Save", mock.Anything, inst).Return(nil)
		f.accounts.On("Save", mock.Anything, acc).Return(nil)
		f.counter.On("Next", mock.Anything).Return(int64(42), nil)
		f.payments.On("Create", mock.Anything, mock.AnythingOfType("*ledger.Payment")).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			types := make([]string, 0, len(events))
			for _, e := range events {
				types = append(types, e.EventType())
			}
			return assert.ObjectsAreEqual([]string{ledger.EventTypeAccountSettled, ledger.EventTypePaymentRecorded}, types)
		})).Return(nil)

		payment, err := f.allocator.PayInstallment(ctx, PayInstallmentCommand{
			InstallmentID: inst.ID,
			Amount:        decimal.NewFromInt(1000),
			Method:        ledger.PaymentMethodCash,
			RecordedBy:    uuid.New(),
		})
		require.NoError(t, err)
		assert.Equal(t, "REC-000042", payment.ReceiptNumber)
		require.NotNil(t, payment.InstallmentID)
		assert.Equal(t, inst.ID, *payment.InstallmentID)
		assert.Equal(t, acc.ClientID, payment.ClientID)
		assert.True(t, payment.PaymentDate.Equal(testDay(5)))
		assert.Equal(t, ledger.InstallmentStatusPaid, inst.Status)
		assert.Equal(t, ledger.AccountStatusPaid, acc.Status)
		assert.True(t, acc.BalanceDue.IsZero())
		f.assertExpectations(t)
	})

	t.Run("second payment on the same installment conflicts", func(t *testing.T) {
		f := newFixture()
		acc := openAccount(1000, 1)
		inst := newInstallment(acc.ID, 1, testDay(10), 1000)

		f.installments.On("FindByID", mock.Anything, inst.ID).Return(inst, nil)
		f.accounts.On("FindByIDForUpdate", mock.Anything, acc.ID).Return(acc, nil)
		f.installments.On("FindByIDForUpdate", mock.Anything, inst.ID).Return(inst, nil)
		f.payments.On("ExistsForInstallment", mock.Anything, inst.ID).Return(true, nil)

		_, err := f.allocator.PayInstallment(ctx, PayInstallmentCommand{
			InstallmentID: inst.ID,
			Amount:        decimal.NewFromInt(100),
			Method:        ledger.PaymentMethodCash,
		})
		assert.True(t, errors.Is(err, shared.ErrConflict))
		assert.True(t, acc.AmountPaid.IsZero())
		f.installments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.counter.AssertNotCalled(t, "Next", mock.Anything)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("amount above outstanding is rejected", func(t *testing.T) {
		metrics := new(MockMetrics)
		metrics.On("OperationRejected", mock.Anything, OperationPayInstallment, shared.CodeInvalidAmount).Return()
		f := newFixture(WithMetrics(metrics))
		acc := openAccount(1000, 1)
		inst := newInstallment(acc.ID, 1, testDay(10), 1000)

		f.installments.On("FindByID", mock.Anything, inst.ID).Return(inst, nil)
		f.accounts.On("FindByIDForUpdate", mock.Anything, acc.ID).Return(acc, nil)
		f.installments.On("FindByIDForUpdate", mock.Anything, inst.ID).Return(inst, nil)
		f.payments.On("ExistsForInstallment", mock.Anything, inst.ID).Return(false, nil)

		_, err := f.allocator.PayInstallment(ctx, PayInstallmentCommand{
			InstallmentID: inst.ID,
			Amount:        decimal.NewFromInt(1500),
			Method:        ledger.PaymentMethodCash,
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidAmount))
		assert.Equal(t, ledger.InstallmentStatusPending, inst.Status)
		metrics.AssertExpectations(t)
	})

	t.Run("unknown method is rejected before any read", func(t *testing.T) {
		f := newFixture()
		_, err := f.allocator.PayInstallment(ctx, PayInstallmentCommand{
			InstallmentID: uuid.New(),
			Amount:        decimal.NewFromInt(10),
			Method:        "crypto",
		})
		assert.True(t, errors.Is(err, shared.ErrValidation))
		f.installments.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("check requires an object extra", func(t *testing.T) {
		f := newFixture()
		_, err := f.allocator.PayInstallment(ctx, PayInstallmentCommand{
			InstallmentID: uuid.New(),
			Amount:        decimal.NewFromInt(10),
			Method:        ledger.PaymentMethodCheck,
			Extra:         json.RawMessage(`"1234"`),
		})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("missing installment is not found", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.installments.On("FindByID", mock.Anything, id).Return(nil, shared.NotFound("installment", id))

		_, err := f.allocator.PayInstallment(ctx, PayInstallmentCommand{
			InstallmentID: id,
			Amount:        decimal.NewFromInt(10),
			Method:        ledger.PaymentMethodCash,
		})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("infrastructure failure surfaces as ledger failure", func(t *testing.T) {
		f := newFixture()
		acc := openAccount(1000, 1)
		inst := newInstallment(acc.ID, 1, testDay(10), 1000)
		lockTimeout := errors.New("canceling statement due to lock timeout")

		f.installments.On("FindByID", mock.Anything, inst.ID).Return(inst, nil)
		f.accounts.On("FindByIDForUpdate", mock.Anything, acc.ID).Return(nil, lockTimeout)

		_, err := f.allocator.PayInstallment(ctx, PayInstallmentCommand{
			InstallmentID: inst.ID,
			Amount:        decimal.NewFromInt(10),
			Method:        ledger.PaymentMethodCash,
		})
		assert.True(t, errors.Is(err, shared.ErrLedgerFailure))
		assert.True(t, errors.Is(err, lockTimeout))
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("publish failure does not fail the committed payment", func(t *testing.T) {
		f := newFixture()
		acc := openAccount(1000, 1)
		inst := newInstallment(acc.ID, 1, testDay(10), 1000)

		f.installments.On("FindByID", mock.Anything, inst.ID).Return(inst, nil)
		f.accounts.On("FindByIDForUpdate", mock.Anything, acc.ID).Return(acc, nil)
		f.installments.On("FindByIDForUpdate", mock.Anything, inst.ID).Return(inst, nil)
		f.payments.On("ExistsForInstallment", mock.Anything, inst.ID).Return(false, nil)
		f.installments.On("Save", mock.Anything, inst).Return(nil)
		f.accounts.On("Save", mock.Anything, acc).Return(nil)
		f.counter.On("Next", mock.Anything).Return(int64(1), nil)
		f.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("bus stopped"))

		payment, err := f.allocator.PayInstallment(ctx, PayInstallmentCommand{
			InstallmentID: inst.ID,
			Amount:        decimal.NewFromInt(400),
			Method:        ledger.PaymentMethodDeposit,
		})
		require.NoError(t, err)
		assert.Equal(t, "REC-000001", payment.ReceiptNumber)
		assert.Equal(t, ledger.AccountStatusInProgress, acc.Status)
		assert.Equal(t, ledger.InstallmentStatusPartiallyPaid, inst.Status)
	})
}

func TestAllocator_RecordDelivery(t *testing.T) {
	ctx := context.Background()

	t.Run("applies a delivery with a resolved attachment", func(t *testing.T) {
		resolver := new(MockAttachmentResolver)
		resolver.On("Resolve", mock.Anything, "proofs/t-1.pdf").Return("s3://ledger/proofs/t-1.pdf", nil)
		f := newFixture(WithAttachmentResolver(resolver))
		acc := openAccount(500, 0)

		f.accounts.On("FindByIDForUpdate", mock.Anything, acc.ID).Return(acc, nil)
		f.accounts.On("Save", mock.Anything, acc).Return(nil)
		f.counter.On("Next", mock.Anything).Return(int64(7), nil)
		f.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		payment, err := f.allocator.RecordDelivery(ctx, RecordDeliveryCommand{
			AccountID:     acc.ID,
			Amount:        decimal.NewFromInt(200),
			Method:        ledger.PaymentMethodBankTransfer,
			AttachmentRef: "proofs/t-1.pdf",
		})
		require.NoError(t, err)
		assert.True(t, payment.IsDelivery())
		assert.Equal(t, "s3://ledger/proofs/t-1.pdf", payment.AttachmentRef)
		assert.True(t, acc.BalanceDue.Equal(decimal.NewFromInt(300)))
		f.payments.AssertNotCalled(t, "ExistsForInstallment", mock.Anything, mock.Anything)
		resolver.AssertExpectations(t)
	})

	t.Run("delivery above balance due is rejected", func(t *testing.T) {
		f := newFixture()
		acc := openAccount(500, 0)
		f.accounts.On("FindByIDForUpdate", mock.Anything, acc.ID).Return(acc, nil)

		_, err := f.allocator.RecordDelivery(ctx, RecordDeliveryCommand{
			AccountID: acc.ID,
			Amount:    decimal.NewFromInt(600),
			Method:    ledger.PaymentMethodCash,
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidAmount))
		assert.True(t, acc.BalanceDue.Equal(decimal.NewFromInt(500)))
		f.accounts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("installment-mode account refuses deliveries", func(t *testing.T) {
		f := newFixture()
		acc := openAccount(500, 2)
		f.accounts.On("FindByIDForUpdate", mock.Anything, acc.ID).Return(acc, nil)

		_, err := f.allocator.RecordDelivery(ctx, RecordDeliveryCommand{
			AccountID: acc.ID,
			Amount:    decimal.NewFromInt(100),
			Method:    ledger.PaymentMethodCash,
		})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("missing attachment fails before the transaction", func(t *testing.T) {
		resolver := new(MockAttachmentResolver)
		resolver.On("Resolve", mock.Anything, "proofs/missing.pdf").
			Return("", shared.Validation("attachment proofs/missing.pdf not found"))
		f := newFixture(WithAttachmentResolver(resolver))

		_, err := f.allocator.RecordDelivery(ctx, RecordDeliveryCommand{
			AccountID:     uuid.New(),
			Amount:        decimal.NewFromInt(100),
			Method:        ledger.PaymentMethodBankTransfer,
			AttachmentRef: "proofs/missing.pdf",
		})
		assert.True(t, errors.Is(err, shared.ErrValidation))
		f.accounts.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
	})
}

func TestAllocator_PayReservation(t *testing.T) {
	ctx := context.Background()
	reservationID := uuid.New()

	setup := func(f *fixture) (*ledger.Account, *ledger.Account, *ledger.Installment, *ledger.Installment) {
		first := openAccount(300, 1)
		first.ReservationID = reservationID
		second := openAccount(700, 1)
		second.ReservationID = reservationID
		i1 := newInstallment(first.ID, 1, testDay(1), 300)
		i2 := newInstallment(second.ID, 1, testDay(2), 700)

		f.accounts.On("FindByReservationForUpdate", mock.Anything, reservationID).
			Return([]*ledger.Account{first, second}, nil)
		f.installments.On("FindOutstandingForUpdate", mock.Anything, first.ID).Return([]*ledger.Installment{i1}, nil)
		f.installments.On("FindOutstandingForUpdate", mock.Anything, second.ID).Return([]*ledger.Installment{i2}, nil)
		return first, second, i1, i2
	}

	t.Run("partial lump sum fills the first account first", func(t *testing.T) {
		f := newFixture()
		first, second, i1, i2 := setup(f)
		f.installments.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.accounts.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		result, err := f.allocator.PayReservation(ctx, PayReservationCommand{
			ReservationID: reservationID,
			Amount:        decimal.NewFromInt(500),
			Method:        ledger.PaymentMethodCash,
		})
		require.NoError(t, err)
		require.Len(t, result.Allocations, 2)
		assert.True(t, result.Remaining.IsZero())
		assert.False(t, result.FullyPaid)
		assert.Equal(t, ledger.InstallmentStatusPaid, i1.Status)
		assert.Equal(t, ledger.InstallmentStatusPartiallyPaid, i2.Status)
		assert.Equal(t, ledger.AccountStatusPaid, first.Status)
		assert.True(t, second.AmountPaid.Equal(decimal.NewFromInt(200)))
		f.counter.AssertNotCalled(t, "Next", mock.Anything)
		f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("no accounts is not found", func(t *testing.T) {
		f := newFixture()
		f.accounts.On("FindByReservationForUpdate", mock.Anything, reservationID).Return([]*ledger.Account{}, nil)
		_, err := f.allocator.PayReservation(ctx, PayReservationCommand{
			ReservationID: reservationID,
			Amount:        decimal.NewFromInt(500),
			Method:        ledger.PaymentMethodCash,
		})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("unknown client is a validation error", func(t *testing.T) {
		f := newFixture()
		setup(f)
		stranger := uuid.New()
		_, err := f.allocator.PayReservation(ctx, PayReservationCommand{
			ReservationID: reservationID,
			Amount:        decimal.NewFromInt(500),
			Method:        ledger.PaymentMethodCash,
			ClientID:      &stranger,
		})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("installment filter restricts the allocation", func(t *testing.T) {
		f := newFixture()
		first, second, _, i2 := setup(f)
		f.installments.On("Save", mock.Anything, i2).Return(nil)
		f.accounts.On("Save", mock.Anything, second).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		result, err := f.allocator.PayReservation(ctx, PayReservationCommand{
			ReservationID:  reservationID,
			Amount:         decimal.NewFromInt(1000),
			Method:         ledger.PaymentMethodCash,
			InstallmentIDs: []uuid.UUID{i2.ID},
		})
		require.NoError(t, err)
		require.Len(t, result.Allocations, 1)
		assert.Equal(t, second.ID, result.Allocations[0].AccountID)
		assert.True(t, result.Remaining.Equal(decimal.NewFromInt(300)))
		assert.True(t, first.AmountPaid.IsZero())
	})
}
