package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Lookups return a NOT_FOUND domain error when the row does not exist.
// The ForUpdate variants take a row-level write lock held until the
// surrounding transaction ends.

// AccountRepository defines persistence for accounts
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByReservation returns the reservation's accounts ordered by
	// creation time, then id.
	FindByReservation(ctx context.Context, reservationID uuid.UUID) ([]*Account, error)
	FindByReservationForUpdate(ctx context.Context, reservationID uuid.UUID) ([]*Account, error)

	// FindWithPastDueInstallments returns ids of accounts that still have
	// pending or partially paid installments due before asOf.
	FindWithPastDueInstallments(ctx context.Context, asOf time.Time, limit int) ([]uuid.UUID, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *Account) error
}

// InstallmentRepository defines persistence for installments
type InstallmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Installment, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Installment, error)

	// FindByAccount returns all installments ordered by sequence number
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*Installment, error)
	FindByAccountForUpdate(ctx context.Context, accountID uuid.UUID) ([]*Installment, error)

	// FindOutstanding returns installments with amount_paid < amount that are
	// not cancelled, ordered by due date then sequence number.
	FindOutstanding(ctx context.Context, accountID uuid.UUID) ([]*Installment, error)
	FindOutstandingForUpdate(ctx context.Context, accountID uuid.UUID) ([]*Installment, error)

	// Save creates or updates an installment
	Save(ctx context.Context, installment *Installment) error

	// SaveBatch creates installments in one statement
	SaveBatch(ctx context.Context, installments []*Installment) error

	// MarkPendingAsPaid sets every pending installment of the account to paid
	MarkPendingAsPaid(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// PaymentRepository defines persistence for payments. Payments are append-only.
type PaymentRepository interface {
	// Create inserts a payment. A second payment for the same installment
	// fails with CONFLICT.
	Create(ctx context.Context, payment *Payment) error

	ExistsForInstallment(ctx context.Context, installmentID uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByAccount returns payments ordered by creation time
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*Payment, error)
}

// ReceiptCounter hands out receipt correlatives. Next increments atomically
// inside the caller's transaction, so a rollback returns the number.
type ReceiptCounter interface {
	Next(ctx context.Context) (int64, error)
}
