package ledger

import (
	"context"

	"github.com/tourops/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to ledger repositories.
// All repository operations performed inside Execute share one database
// transaction and are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the ledger repositories bound to the
// current transaction. The receipt counter lives here too so that a rollback
// returns the number it handed out.
type TransactionalRepositories interface {
	Accounts() ledger.AccountRepository
	Installments() ledger.InstallmentRepository
	Payments() ledger.PaymentRepository
	ReceiptCounter() ledger.ReceiptCounter
}

// NoOpTransactionScope runs fn directly against the given repositories
// without a transaction. Useful for unit tests with mocked repositories.
type NoOpTransactionScope struct {
	repos staticRepositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	accounts ledger.AccountRepository,
	installments ledger.InstallmentRepository,
	payments ledger.PaymentRepository,
	counter ledger.ReceiptCounter,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		repos: staticRepositories{
			accounts:     accounts,
			installments: installments,
			payments:     payments,
			counter:      counter,
		},
	}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.repos)
}

type staticRepositories struct {
	accounts     ledger.AccountRepository
	installments ledger.InstallmentRepository
	payments     ledger.PaymentRepository
	counter      ledger.ReceiptCounter
}

func (r staticRepositories) Accounts() ledger.AccountRepository         { return r.accounts }
func (r staticRepositories) Installments() ledger.InstallmentRepository { return r.installments }
func (r staticRepositories) Payments() ledger.PaymentRepository         { return r.payments }
func (r staticRepositories) ReceiptCounter() ledger.ReceiptCounter      { return r.counter }
