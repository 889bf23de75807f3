package persistence

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appledger "github.com/tourops/backend/internal/application/ledger"
	"github.com/tourops/backend/internal/domain/ledger"
	"github.com/tourops/backend/internal/domain/shared"
	"github.com/tourops/backend/internal/infrastructure/persistence/models"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the shared in-memory database alive and
	// serializes transactions the way row locks would.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.LedgerModels()...))
	return db
}

type ledgerHarness struct {
	db        *gorm.DB
	allocator *appledger.Allocator
	accounts  *appledger.AccountService
	recon     *appledger.Reconciliation
}

func newLedgerHarness(t *testing.T) *ledgerHarness {
	db := setupLedgerTestDB(t)
	scope := NewGormLedgerTransactionScope(db, 0)
	allocator := appledger.NewAllocator(scope, nil, nil)
	recon := appledger.NewReconciliation(allocator, nil)
	return &ledgerHarness{
		db:        db,
		allocator: allocator,
		accounts:  appledger.NewAccountService(allocator, recon, nil),
		recon:     recon,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dueDay(n int) time.Time {
	return time.Date(2026, time.May, n, 0, 0, 0, 0, time.UTC)
}

func (h *ledgerHarness) open(t *testing.T, reservationID uuid.UUID, lines ...appledger.ScheduledInstallment) *appledger.OpenAccountResult {
	t.Helper()
	res, err := h.accounts.OpenAccount(context.Background(), appledger.OpenAccountCommand{
		ReservationID: reservationID,
		ClientID:      uuid.New(),
		TotalAmount:   dec("500"),
		Installments:  lines,
	})
	require.NoError(t, err)
	return res
}

func (h *ledgerHarness) account(t *testing.T, id uuid.UUID) *ledger.Account {
	t.Helper()
	a, err := NewGormAccountRepository(h.db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return a
}

func (h *ledgerHarness) installment(t *testing.T, id uuid.UUID) *ledger.Installment {
	t.Helper()
	i, err := NewGormInstallmentRepository(h.db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return i
}

func (h *ledgerHarness) paymentCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(&models.PaymentModel{}).Count(&n).Error)
	return n
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

// assertBalanced checks balance_due == total_amount - amount_paid
func assertBalanced(t *testing.T, a *ledger.Account) {
	t.Helper()
	assertDecimal(t, a.TotalAmount.Sub(a.AmountPaid).String(), a.BalanceDue)
}

func TestLedger_PayInstallment_FullPayment(t *testing.T) {
	h := newLedgerHarness(t)
	ctx := context.Background()
	res := h.open(t, uuid.New(), appledger.ScheduledInstallment{DueDate: dueDay(10), Amount: dec("1000")})
	instID := res.Installments[0].ID

	payment, err := h.allocator.PayInstallment(ctx, appledger.PayInstallmentCommand{
		InstallmentID: instID,
		Amount:        dec("1000"),
		Method:        ledger.PaymentMethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, "REC-000001", payment.ReceiptNumber)

	inst := h.installment(t, instID)
	assert.Equal(t, ledger.InstallmentStatusPaid, inst.Status)
	assertDecimal(t, "1000", inst.AmountPaid)

	account := h.account(t, res.Account.ID)
	assert.True(t, account.BalanceDue.IsZero())
	assert.Equal(t, ledger.AccountStatusPaid, account.Status)
	assertBalanced(t, account)

	t.Run("second payment on the same installment conflicts", func(t *testing.T) {
		_, err := h.allocator.PayInstallment(ctx, appledger.PayInstallmentCommand{
			InstallmentID: instID,
			Amount:        dec("1000"),
			Method:        ledger.PaymentMethodCash,
		})
		assert.ErrorIs(t, err, shared.ErrConflict)
		assert.Equal(t, int64(1), h.paymentCount(t))

		after := h.account(t, res.Account.ID)
		assertDecimal(t, "1000", after.AmountPaid)
		assert.Equal(t, ledger.AccountStatusPaid, after.Status)
	})
}

func TestLedger_PayInstallment_PartialPayment(t *testing.T) {
	h := newLedgerHarness(t)
	res := h.open(t, uuid.New(), appledger.ScheduledInstallment{DueDate: dueDay(10), Amount: dec("1000")})
	instID := res.Installments[0].ID

	_, err := h.allocator.PayInstallment(context.Background(), appledger.PayInstallmentCommand{
		InstallmentID: instID,
		Amount:        dec("400"),
		Method:        ledger.PaymentMethodCash,
	})
	require.NoError(t, err)

	inst := h.installment(t, instID)
	assert.Equal(t, ledger.InstallmentStatusPartiallyPaid, inst.Status)
	assertDecimal(t, "400", inst.AmountPaid)

	account := h.account(t, res.Account.ID)
	assertDecimal(t, "600", account.BalanceDue)
	assert.Equal(t, ledger.AccountStatusInProgress, account.Status)
	assertBalanced(t, account)
}

func TestLedger_PayInstallment_OverpaymentRejected(t *testing.T) {
	h := newLedgerHarness(t)
	res := h.open(t, uuid.New(), appledger.ScheduledInstallment{DueDate: dueDay(10), Amount: dec("100")})

	_, err := h.allocator.PayInstallment(context.Background(), appledger.PayInstallmentCommand{
		InstallmentID: res.Installments[0].ID,
		Amount:        dec("100.01"),
		Method:        ledger.PaymentMethodBankTransfer,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	assert.Equal(t, int64(0), h.paymentCount(t))
	assert.True(t, h.account(t, res.Account.ID).AmountPaid.IsZero())
}

func TestLedger_RecordDelivery(t *testing.T) {
	h := newLedgerHarness(t)
	ctx := context.Background()
	res := h.open(t, uuid.New())
	require.True(t, res.Account.IsFreeForm())

	t.Run("delivery above balance is rejected", func(t *testing.T) {
		_, err := h.allocator.RecordDelivery(ctx, appledger.RecordDeliveryCommand{
			AccountID: res.Account.ID,
			Amount:    dec("600"),
			Method:    ledger.PaymentMethodCash,
		})
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
		assertDecimal(t, "500", h.account(t, res.Account.ID).BalanceDue)
		assert.Equal(t, int64(0), h.paymentCount(t))
	})

	t.Run("deliveries settle the account", func(t *testing.T) {
		first, err := h.allocator.RecordDelivery(ctx, appledger.RecordDeliveryCommand{
			AccountID: res.Account.ID,
			Amount:    dec("200"),
			Method:    ledger.PaymentMethodCash,
		})
		require.NoError(t, err)
		second, err := h.allocator.RecordDelivery(ctx, appledger.RecordDeliveryCommand{
			AccountID: res.Account.ID,
			Amount:    dec("300"),
			Method:    ledger.PaymentMethodCheck,
			Extra:     []byte(`{"bank":"Galicia","number":"0042"}`),
		})
		require.NoError(t, err)
		assert.Equal(t, "REC-000001", first.ReceiptNumber)
		assert.Equal(t, "REC-000002", second.ReceiptNumber)

		account := h.account(t, res.Account.ID)
		assert.True(t, account.BalanceDue.IsZero())
		assert.Equal(t, ledger.AccountStatusPaid, account.Status)

		stored, err := NewGormPaymentRepository(h.db).FindByID(ctx, second.ID)
		require.NoError(t, err)
		assert.JSONEq(t, `{"bank":"Galicia","number":"0042"}`, string(stored.Extra))
		assert.Nil(t, stored.InstallmentID)
	})
}

func TestLedger_PayReservation(t *testing.T) {
	setup := func(t *testing.T) (*ledgerHarness, uuid.UUID, *appledger.OpenAccountResult, *appledger.OpenAccountResult) {
		h := newLedgerHarness(t)
		reservationID := uuid.New()
		first := h.open(t, reservationID, appledger.ScheduledInstallment{DueDate: dueDay(5), Amount: dec("300")})
		second := h.open(t, reservationID, appledger.ScheduledInstallment{DueDate: dueDay(20), Amount: dec("700")})
		return h, reservationID, first, second
	}

	t.Run("exact amount pays every installment", func(t *testing.T) {
		h, reservationID, first, second := setup(t)

		result, err := h.allocator.PayReservation(context.Background(), appledger.PayReservationCommand{
			ReservationID: reservationID,
			Amount:        dec("1000"),
			Method:        ledger.PaymentMethodBankTransfer,
		})
		require.NoError(t, err)
		assert.True(t, result.Remaining.IsZero())
		assert.True(t, result.FullyPaid)
		assert.Len(t, result.Allocations, 2)

		for _, res := range []*appledger.OpenAccountResult{first, second} {
			assert.Equal(t, ledger.InstallmentStatusPaid, h.installment(t, res.Installments[0].ID).Status)
			account := h.account(t, res.Account.ID)
			assert.Equal(t, ledger.AccountStatusPaid, account.Status)
			assertBalanced(t, account)
		}
		assert.Equal(t, int64(0), h.paymentCount(t))
	})

	t.Run("short amount pays the oldest debt first", func(t *testing.T) {
		h, reservationID, first, second := setup(t)

		result, err := h.allocator.PayReservation(context.Background(), appledger.PayReservationCommand{
			ReservationID: reservationID,
			Amount:        dec("500"),
			Method:        ledger.PaymentMethodCash,
		})
		require.NoError(t, err)
		assert.True(t, result.Remaining.IsZero())
		assert.False(t, result.FullyPaid)
		require.Len(t, result.Allocations, 2)
		assert.Equal(t, first.Account.ID, result.Allocations[0].AccountID)
		assertDecimal(t, "300", result.Allocations[0].AmountApplied)
		assertDecimal(t, "200", result.Allocations[1].AmountApplied)

		assert.Equal(t, ledger.AccountStatusPaid, h.account(t, first.Account.ID).Status)
		other := h.account(t, second.Account.ID)
		assertDecimal(t, "500", other.BalanceDue)
		assert.Equal(t, ledger.AccountStatusInProgress, other.Status)
		assert.Equal(t, ledger.InstallmentStatusPartiallyPaid, h.installment(t, second.Installments[0].ID).Status)
	})

	t.Run("surplus is reported as remaining", func(t *testing.T) {
		h, reservationID, _, _ := setup(t)

		result, err := h.allocator.PayReservation(context.Background(), appledger.PayReservationCommand{
			ReservationID: reservationID,
			Amount:        dec("1250"),
			Method:        ledger.PaymentMethodCash,
		})
		require.NoError(t, err)
		assertDecimal(t, "1000", result.TotalApplied)
		assertDecimal(t, "250", result.Remaining)
	})

	t.Run("client filter restricts allocation", func(t *testing.T) {
		h, reservationID, _, second := setup(t)
		clientID := second.Account.ClientID

		result, err := h.allocator.PayReservation(context.Background(), appledger.PayReservationCommand{
			ReservationID: reservationID,
			Amount:        dec("100"),
			Method:        ledger.PaymentMethodCash,
			ClientID:      &clientID,
		})
		require.NoError(t, err)
		require.Len(t, result.Allocations, 1)
		assert.Equal(t, second.Account.ID, result.Allocations[0].AccountID)
	})

	t.Run("accounts are visited in creation order, not by due date", func(t *testing.T) {
		h := newLedgerHarness(t)
		reservationID := uuid.New()
		older := h.open(t, reservationID, appledger.ScheduledInstallment{DueDate: dueDay(20), Amount: dec("300")})
		newer := h.open(t, reservationID, appledger.ScheduledInstallment{DueDate: dueDay(1), Amount: dec("700")})

		result, err := h.allocator.PayReservation(context.Background(), appledger.PayReservationCommand{
			ReservationID: reservationID,
			Amount:        dec("500"),
			Method:        ledger.PaymentMethodCash,
		})
		require.NoError(t, err)
		require.Len(t, result.Allocations, 2)
		assert.Equal(t, older.Account.ID, result.Allocations[0].AccountID)
		assertDecimal(t, "300", result.Allocations[0].AmountApplied)
		assert.Equal(t, newer.Account.ID, result.Allocations[1].AccountID)
		assertDecimal(t, "200", result.Allocations[1].AmountApplied)
		assertDecimal(t, "500", h.account(t, newer.Account.ID).BalanceDue)
	})

	t.Run("unknown reservation is not found", func(t *testing.T) {
		h, _, _, _ := setup(t)
		_, err := h.allocator.PayReservation(context.Background(), appledger.PayReservationCommand{
			ReservationID: uuid.New(),
			Amount:        dec("100"),
			Method:        ledger.PaymentMethodCash,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestLedger_ReconcileInstallmentAmount(t *testing.T) {
	h := newLedgerHarness(t)
	ctx := context.Background()
	res := h.open(t, uuid.New(),
		appledger.ScheduledInstallment{DueDate: dueDay(1), Amount: dec("400")},
		appledger.ScheduledInstallment{DueDate: dueDay(15), Amount: dec("600")},
	)
	_, err := h.allocator.PayInstallment(ctx, appledger.PayInstallmentCommand{
		InstallmentID: res.Installments[0].ID,
		Amount:        dec("400"),
		Method:        ledger.PaymentMethodCash,
	})
	require.NoError(t, err)

	account, err := h.recon.OnInstallmentAmountEdited(ctx, res.Installments[1].ID, dec("800"))
	require.NoError(t, err)
	assertDecimal(t, "1200", account.TotalAmount)

	stored := h.account(t, res.Account.ID)
	assertDecimal(t, "1200", stored.TotalAmount)
	assertDecimal(t, "400", stored.AmountPaid)
	assertDecimal(t, "800", stored.BalanceDue)
	assertBalanced(t, stored)

	_, err = h.recon.OnInstallmentAmountEdited(ctx, res.Installments[0].ID, dec("300"))
	assert.ErrorIs(t, err, shared.ErrValidation)
	assertDecimal(t, "400", h.installment(t, res.Installments[0].ID).Amount)
}

func TestLedger_UpdateInstallmentIsAllOrNothing(t *testing.T) {
	h := newLedgerHarness(t)
	ctx := context.Background()
	res := h.open(t, uuid.New(),
		appledger.ScheduledInstallment{DueDate: dueDay(1), Amount: dec("100")},
	)
	target := res.Installments[0].ID

	amount := dec("250")
	bogus := ledger.InstallmentStatus("bogus")
	_, err := h.accounts.UpdateInstallment(ctx, target, ledger.InstallmentUpdate{Amount: &amount, Status: &bogus})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assertDecimal(t, "100", h.installment(t, target).Amount)
	assertDecimal(t, "100", h.account(t, res.Account.ID).TotalAmount)

	note := "moved to the second departure"
	later := dueDay(20)
	updated, err := h.accounts.UpdateInstallment(ctx, target, ledger.InstallmentUpdate{
		Amount:       &amount,
		DueDate:      &later,
		Observations: &note,
	})
	require.NoError(t, err)
	assertDecimal(t, "250", updated.Amount)

	stored := h.installment(t, target)
	assertDecimal(t, "250", stored.Amount)
	assert.Equal(t, note, stored.Observations)
	assert.True(t, stored.DueDate.Equal(later))
	account := h.account(t, res.Account.ID)
	assertDecimal(t, "250", account.TotalAmount)
	assertBalanced(t, account)
}

func TestLedger_SetAccountStatusPaidClosesPendingInstallments(t *testing.T) {
	h := newLedgerHarness(t)
	res := h.open(t, uuid.New(),
		appledger.ScheduledInstallment{DueDate: dueDay(1), Amount: dec("100")},
		appledger.ScheduledInstallment{DueDate: dueDay(2), Amount: dec("100")},
	)

	_, err := h.accounts.SetAccountStatus(context.Background(), res.Account.ID, ledger.AccountStatusPaid)
	require.NoError(t, err)

	for _, inst := range res.Installments {
		stored := h.installment(t, inst.ID)
		assert.Equal(t, ledger.InstallmentStatusPaid, stored.Status)
		assert.True(t, stored.AmountPaid.IsZero())
	}
	assert.Equal(t, ledger.AccountStatusPaid, h.account(t, res.Account.ID).Status)
}

func TestLedger_RollbackReleasesReceiptNumber(t *testing.T) {
	h := newLedgerHarness(t)
	ctx := context.Background()
	scope := NewGormLedgerTransactionScope(h.db, 0)

	err := scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		n, err := repos.ReceiptCounter().Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return shared.Validation("abort")
	})
	require.Error(t, err)

	n, err := NewGormReceiptCounter(h.db).Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestGormPaymentRepository_DuplicateInstallmentConflicts(t *testing.T) {
	db := setupLedgerTestDB(t)
	ctx := context.Background()
	repo := NewGormPaymentRepository(db)
	installmentID := uuid.New()

	newPayment := func(receipt string) *ledger.Payment {
		p, err := ledger.NewPayment(ledger.PaymentDraft{
			AccountID:     uuid.New(),
			InstallmentID: &installmentID,
			ClientID:      uuid.New(),
			Amount:        dec("10"),
			Method:        ledger.PaymentMethodCash,
			PaymentDate:   dueDay(1),
		}, receipt)
		require.NoError(t, err)
		return p
	}

	require.NoError(t, repo.Create(ctx, newPayment("REC-000001")))
	err := repo.Create(ctx, newPayment("REC-000002"))
	assert.ErrorIs(t, err, shared.ErrConflict)

	exists, err := repo.ExistsForInstallment(ctx, installmentID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGormAccountRepository_FindWithPastDueInstallments(t *testing.T) {
	h := newLedgerHarness(t)
	ctx := context.Background()
	late := h.open(t, uuid.New(), appledger.ScheduledInstallment{DueDate: dueDay(1), Amount: dec("100")})
	h.open(t, uuid.New(), appledger.ScheduledInstallment{DueDate: dueDay(28), Amount: dec("100")})

	ids, err := NewGormAccountRepository(h.db).FindWithPastDueInstallments(ctx, dueDay(10), 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{late.Account.ID}, ids)
}

func TestGormInstallmentRepository_FindOutstandingOrder(t *testing.T) {
	h := newLedgerHarness(t)
	ctx := context.Background()
	res := h.open(t, uuid.New(),
		appledger.ScheduledInstallment{DueDate: dueDay(20), Amount: dec("100")},
		appledger.ScheduledInstallment{DueDate: dueDay(5), Amount: dec("100")},
		appledger.ScheduledInstallment{DueDate: dueDay(5), Amount: dec("100")},
	)

	outstanding, err := NewGormInstallmentRepository(h.db).FindOutstanding(ctx, res.Account.ID)
	require.NoError(t, err)
	require.Len(t, outstanding, 3)
	assert.Equal(t, 2, outstanding[0].SequenceNumber)
	assert.Equal(t, 3, outstanding[1].SequenceNumber)
	assert.Equal(t, 1, outstanding[2].SequenceNumber)
}

func TestGormRepositories_NotFound(t *testing.T) {
	db := setupLedgerTestDB(t)
	ctx := context.Background()

	_, err := NewGormAccountRepository(db).FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = NewGormInstallmentRepository(db).FindByIDForUpdate(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = NewGormPaymentRepository(db).FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
