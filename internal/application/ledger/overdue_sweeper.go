package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tourops/backend/internal/domain/ledger"
	"github.com/tourops/backend/internal/infrastructure/telemetry"
)

const defaultSweepBatch = 200

// OverdueSweeper flags past-due installments, and their accounts, as overdue
type OverdueSweeper struct {
	allocator *Allocator
	accounts  ledger.AccountRepository
	batchSize int
	logger    *zap.Logger
}

// SweepResult reports what a sweep changed
type SweepResult struct {
	AccountsFlagged     int
	InstallmentsFlagged int
	Failures            int
}

// NewOverdueSweeper creates a new OverdueSweeper
func NewOverdueSweeper(allocator *Allocator, accounts ledger.AccountRepository, batchSize int, logger *zap.Logger) *OverdueSweeper {
	if batchSize <= 0 {
		batchSize = defaultSweepBatch
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverdueSweeper{allocator: allocator, accounts: accounts, batchSize: batchSize, logger: logger}
}

// Sweep runs one pass. Each account is handled in its own transaction so a
// failing account does not hold back the rest.
func (s *OverdueSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", OperationSweepOverdue)
	defer span.End()

	var result SweepResult
	asOf := s.allocator.now()
	ids, err := s.accounts.FindWithPastDueInstallments(ctx, asOf, s.batchSize)
	if err != nil {
		telemetry.RecordError(span, err)
		return result, err
	}

	for _, id := range ids {
		flagged, err := s.sweepAccount(ctx, id, asOf)
		if err != nil {
			result.Failures++
			s.logger.Error("overdue sweep failed for account", zap.String("account_id", id.String()), zap.Error(err))
			continue
		}
		if flagged > 0 {
			result.AccountsFlagged++
			result.InstallmentsFlagged += flagged
		}
	}

	telemetry.SetAttributes(span,
		"accounts_flagged", result.AccountsFlagged,
		"installments_flagged", result.InstallmentsFlagged,
	)
	telemetry.SetOK(span)
	if result.InstallmentsFlagged > 0 {
		s.logger.Info("overdue sweep completed",
			zap.Int("accounts", result.AccountsFlagged),
			zap.Int("installments", result.InstallmentsFlagged),
			zap.Int("failures", result.Failures),
		)
	}
	return result, nil
}

func (s *OverdueSweeper) sweepAccount(ctx context.Context, accountID uuid.UUID, asOf time.Time) (int, error) {
	flagged := 0
	err := s.allocator.Execute(ctx, func(tx *LedgerTx) error {
		account, err := tx.Accounts.GetForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		installments, err := tx.Installments.ListByAccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0)
		for _, inst := range installments {
			if !inst.MarkOverdue(asOf) {
				continue
			}
			if err := tx.Installments.Save(ctx, inst); err != nil {
				return err
			}
			ids = append(ids, inst.ID)
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Accounts.MarkOverdue(ctx, account); err != nil {
			return err
		}
		flagged = len(ids)
		tx.Emit(ledger.NewInstallmentsOverdueEvent(accountID, ids))
		return nil
	})
	return flagged, err
}
