package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tourops/backend/internal/domain/ledger"
	"github.com/tourops/backend/internal/domain/shared"
)

// LedgerTx is the unit of work handed to Allocator.Execute. Its stores are
// bound to one database transaction; events emitted through it are
// published only after commit.
type LedgerTx struct {
	Accounts     *AccountStore
	Installments *InstallmentStore
	Payments     *PaymentRecorder

	events []shared.DomainEvent
}

func newLedgerTx(repos TransactionalRepositories) *LedgerTx {
	tx := &LedgerTx{}
	tx.Accounts = &AccountStore{accounts: repos.Accounts(), installments: repos.Installments(), tx: tx}
	tx.Installments = &InstallmentStore{installments: repos.Installments()}
	tx.Payments = &PaymentRecorder{payments: repos.Payments(), counter: repos.ReceiptCounter()}
	return tx
}

// Emit queues events for publication after commit
func (t *LedgerTx) Emit(events ...shared.DomainEvent) {
	t.events = append(t.events, events...)
}

// AccountStore reads and mutates accounts inside a transaction
type AccountStore struct {
	accounts     ledger.AccountRepository
	installments ledger.InstallmentRepository
	tx           *LedgerTx
}

// Get loads an account without locking it
func (s *AccountStore) Get(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	return s.accounts.FindByID(ctx, id)
}

// GetForUpdate loads and write-locks an account
func (s *AccountStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	return s.accounts.FindByIDForUpdate(ctx, id)
}

// ListByReservationForUpdate loads and write-locks every account of a
// reservation in load order.
func (s *AccountStore) ListByReservationForUpdate(ctx context.Context, reservationID uuid.UUID) ([]*ledger.Account, error) {
	return s.accounts.FindByReservationForUpdate(ctx, reservationID)
}

// ApplyDelta adds delta to the locked account's paid amount and persists it
func (s *AccountStore) ApplyDelta(ctx context.Context, account *ledger.Account, delta decimal.Decimal) error {
	if err := account.ApplyDelta(delta); err != nil {
		return err
	}
	return s.save(ctx, account)
}

// SetStatus performs an administrative transition. Forcing paid also marks
// every pending installment of the account as paid.
func (s *AccountStore) SetStatus(ctx context.Context, account *ledger.Account, status ledger.AccountStatus) error {
	if err := account.SetStatus(status); err != nil {
		return err
	}
	if status == ledger.AccountStatusPaid && !account.IsFreeForm() {
		if _, err := s.installments.MarkPendingAsPaid(ctx, account.ID); err != nil {
			return fmt.Errorf("mark pending installments paid: %w", err)
		}
	}
	return s.save(ctx, account)
}

// RecomputeFromInstallments rebuilds the locked account's totals from its
// installment rows.
func (s *AccountStore) RecomputeFromInstallments(ctx context.Context, account *ledger.Account) error {
	installments, err := s.installments.FindByAccountForUpdate(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("load installments: %w", err)
	}
	account.RecomputeFromInstallments(installments)
	return s.save(ctx, account)
}

// Open persists a new account
func (s *AccountStore) Open(ctx context.Context, account *ledger.Account) error {
	return s.save(ctx, account)
}

// MarkOverdue flags the locked account as overdue
func (s *AccountStore) MarkOverdue(ctx context.Context, account *ledger.Account) error {
	if !account.MarkOverdue() {
		return nil
	}
	return s.save(ctx, account)
}

func (s *AccountStore) save(ctx context.Context, account *ledger.Account) error {
	if err := s.accounts.Save(ctx, account); err != nil {
		return fmt.Errorf("save account %s: %w", account.ID, err)
	}
	s.tx.Emit(account.GetDomainEvents()...)
	account.ClearDomainEvents()
	return nil
}

// InstallmentStore reads and mutates installments inside a transaction
type InstallmentStore struct {
	installments ledger.InstallmentRepository
}

// Get loads an installment without locking it
func (s *InstallmentStore) Get(ctx context.Context, id uuid.UUID) (*ledger.Installment, error) {
	return s.installments.FindByID(ctx, id)
}

// GetForUpdate loads and write-locks an installment
func (s *InstallmentStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Installment, error) {
	return s.installments.FindByIDForUpdate(ctx, id)
}

// ListByAccountForUpdate loads and write-locks all installments of an account
func (s *InstallmentStore) ListByAccountForUpdate(ctx context.Context, accountID uuid.UUID) ([]*ledger.Installment, error) {
	return s.installments.FindByAccountForUpdate(ctx, accountID)
}

// ListOutstandingForUpdate loads and write-locks the installments that still
// owe money, oldest debt first.
func (s *InstallmentStore) ListOutstandingForUpdate(ctx context.Context, accountID uuid.UUID) ([]*ledger.Installment, error) {
	return s.installments.FindOutstandingForUpdate(ctx, accountID)
}

// ApplyPayment applies amount to a locked installment and persists it
func (s *InstallmentStore) ApplyPayment(ctx context.Context, inst *ledger.Installment, amount decimal.Decimal, method ledger.PaymentMethod, paidAt time.Time) error {
	if err := inst.ApplyPayment(amount, method, paidAt); err != nil {
		return err
	}
	return s.save(ctx, inst)
}

// Update applies an administrative edit to a locked installment
func (s *InstallmentStore) Update(ctx context.Context, inst *ledger.Installment, update ledger.InstallmentUpdate) error {
	if err := inst.Update(update); err != nil {
		return err
	}
	return s.save(ctx, inst)
}

// CreateSchedule persists the installments of a newly opened account
func (s *InstallmentStore) CreateSchedule(ctx context.Context, installments []*ledger.Installment) error {
	if len(installments) == 0 {
		return nil
	}
	if err := s.installments.SaveBatch(ctx, installments); err != nil {
		return fmt.Errorf("save installment schedule: %w", err)
	}
	return nil
}

// Save persists a locked installment as is
func (s *InstallmentStore) Save(ctx context.Context, inst *ledger.Installment) error {
	return s.save(ctx, inst)
}

func (s *InstallmentStore) save(ctx context.Context, inst *ledger.Installment) error {
	if err := s.installments.Save(ctx, inst); err != nil {
		return fmt.Errorf("save installment %s: %w", inst.ID, err)
	}
	return nil
}

// PaymentRecorder issues immutable receipts. It never touches accounts or
// installments; callers apply the money first within the same transaction.
type PaymentRecorder struct {
	payments ledger.PaymentRepository
	counter  ledger.ReceiptCounter
}

// NextReceiptNumber atomically advances the receipt counter
func (r *PaymentRecorder) NextReceiptNumber(ctx context.Context) (string, error) {
	n, err := r.counter.Next(ctx)
	if err != nil {
		return "", fmt.Errorf("advance receipt counter: %w", err)
	}
	return ledger.FormatReceiptNumber(n), nil
}

// HasPayment reports whether an installment already carries a payment
func (r *PaymentRecorder) HasPayment(ctx context.Context, installmentID uuid.UUID) (bool, error) {
	exists, err := r.payments.ExistsForInstallment(ctx, installmentID)
	if err != nil {
		return false, fmt.Errorf("check existing payment: %w", err)
	}
	return exists, nil
}

// Record validates the draft, mints a receipt number and inserts the payment
func (r *PaymentRecorder) Record(ctx context.Context, draft ledger.PaymentDraft) (*ledger.Payment, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if draft.InstallmentID != nil {
		exists, err := r.HasPayment(ctx, *draft.InstallmentID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.Conflict("installment %s already has a payment", *draft.InstallmentID)
		}
	}

	receipt, err := r.NextReceiptNumber(ctx)
	if err != nil {
		return nil, err
	}
	payment, err := ledger.NewPayment(draft, receipt)
	if err != nil {
		return nil, err
	}
	if err := r.payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}
