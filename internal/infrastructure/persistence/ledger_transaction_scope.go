package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	appledger "github.com/tourops/backend/internal/application/ledger"
	"github.com/tourops/backend/internal/domain/ledger"
)

// GormLedgerTransactionScope implements TransactionScope using GORM transactions.
// Every ledger mutation runs through it so that row locks, the receipt counter
// and the payment insert commit or roll back together.
type GormLedgerTransactionScope struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormLedgerTransactionScope creates a new GormLedgerTransactionScope.
// A positive lockTimeout bounds how long a postgres transaction waits for a
// row lock before failing.
func NewGormLedgerTransactionScope(db *gorm.DB, lockTimeout time.Duration) *GormLedgerTransactionScope {
	return &GormLedgerTransactionScope{db: db, lockTimeout: lockTimeout}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormLedgerTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.lockTimeout > 0 && tx.Dialector.Name() == "postgres" {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to set lock timeout: %w", err)
			}
		}
		return fn(&gormLedgerRepositories{tx: tx})
	})
}

// gormLedgerRepositories provides the ledger repositories within a transaction
type gormLedgerRepositories struct {
	tx *gorm.DB
}

// Accounts returns the account repository scoped to the current transaction
func (r *gormLedgerRepositories) Accounts() ledger.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

// Installments returns the installment repository scoped to the current transaction
func (r *gormLedgerRepositories) Installments() ledger.InstallmentRepository {
	return NewGormInstallmentRepository(r.tx)
}

// Payments returns the payment repository scoped to the current transaction
func (r *gormLedgerRepositories) Payments() ledger.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// ReceiptCounter returns the receipt counter scoped to the current transaction
func (r *gormLedgerRepositories) ReceiptCounter() ledger.ReceiptCounter {
	return NewGormReceiptCounter(r.tx)
}

// Ensure GormLedgerTransactionScope implements TransactionScope
var _ appledger.TransactionScope = (*GormLedgerTransactionScope)(nil)

// Ensure gormLedgerRepositories implements TransactionalRepositories
var _ appledger.TransactionalRepositories = (*gormLedgerRepositories)(nil)
