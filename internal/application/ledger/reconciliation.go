package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tourops/backend/internal/domain/ledger"
	"github.com/tourops/backend/internal/infrastructure/telemetry"
)

// Reconciliation keeps account totals in line with edited installments
type Reconciliation struct {
	allocator *Allocator
	logger    *zap.Logger
}

// NewReconciliation creates a new Reconciliation service
func NewReconciliation(allocator *Allocator, logger *zap.Logger) *Reconciliation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciliation{allocator: allocator, logger: logger}
}

// OnInstallmentAmountEdited changes an installment's amount and recomputes
// its account in the same transaction. The new amount may not drop below
// what has already been paid.
func (r *Reconciliation) OnInstallmentAmountEdited(ctx context.Context, installmentID uuid.UUID, newAmount decimal.Decimal) (*ledger.Account, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", OperationReconcileAmount)
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInstallmentID, installmentID.String(),
		telemetry.SpanAttrAmount, newAmount.String(),
	)

	var account *ledger.Account
	err := r.allocator.Execute(ctx, func(tx *LedgerTx) error {
		var err error
		_, account, err = r.applyEdit(ctx, tx, installmentID, ledger.InstallmentUpdate{Amount: &newAmount})
		return err
	})
	if err != nil {
		r.allocator.reject(ctx, span, OperationReconcileAmount, err,
			zap.String("installment_id", installmentID.String()),
			zap.String("new_amount", newAmount.String()),
		)
		return nil, err
	}

	telemetry.SetOK(span)
	r.logger.Info("installment amount reconciled",
		zap.String("installment_id", installmentID.String()),
		zap.String("account_id", account.ID.String()),
		zap.String("new_amount", newAmount.String()),
		zap.String("account_total", account.TotalAmount.String()),
	)
	return account, nil
}

// applyEdit locks the account, then the installment, applies update and
// recomputes the account when the amount is part of it. It must run inside
// tx so a rejected field leaves the amount and the total untouched.
func (r *Reconciliation) applyEdit(ctx context.Context, tx *LedgerTx, installmentID uuid.UUID, update ledger.InstallmentUpdate) (*ledger.Installment, *ledger.Account, error) {
	probe, err := tx.Installments.Get(ctx, installmentID)
	if err != nil {
		return nil, nil, err
	}
	account, err := tx.Accounts.GetForUpdate(ctx, probe.AccountID)
	if err != nil {
		return nil, nil, err
	}
	inst, err := tx.Installments.GetForUpdate(ctx, installmentID)
	if err != nil {
		return nil, nil, err
	}

	oldAmount := inst.Amount
	if err := tx.Installments.Update(ctx, inst, update); err != nil {
		return nil, nil, err
	}
	if update.Amount != nil {
		if err := tx.Accounts.RecomputeFromInstallments(ctx, account); err != nil {
			return nil, nil, err
		}
		tx.Emit(ledger.NewInstallmentAmountChangedEvent(inst, oldAmount, account))
	}
	return inst, account, nil
}
