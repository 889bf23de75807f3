package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tourops/backend/internal/domain/ledger"
	"github.com/tourops/backend/internal/domain/shared"
	"github.com/tourops/backend/internal/infrastructure/telemetry"
)

// AccountService covers the administrative side of the ledger: opening
// accounts for the reservation workflow, status transitions and
// installment edits.
type AccountService struct {
	allocator      *Allocator
	reconciliation *Reconciliation
	logger         *zap.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(allocator *Allocator, reconciliation *Reconciliation, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{allocator: allocator, reconciliation: reconciliation, logger: logger}
}

// ScheduledInstallment is one explicit line of an installment plan
type ScheduledInstallment struct {
	DueDate time.Time
	Amount  decimal.Decimal
}

// OpenAccountCommand opens an account for a client on a reservation.
// Explicit Installments win over InstallmentCount; with neither the account
// is free-form.
type OpenAccountCommand struct {
	ReservationID    uuid.UUID
	ClientID         uuid.UUID
	TotalAmount      decimal.Decimal
	InstallmentCount int
	FirstDueDate     time.Time
	IntervalMonths   int
	Installments     []ScheduledInstallment
}

// OpenAccountResult is the account and its schedule
type OpenAccountResult struct {
	Account      *ledger.Account
	Installments []*ledger.Installment
}

// OpenAccount creates the account and its installments atomically
func (s *AccountService) OpenAccount(ctx context.Context, cmd OpenAccountCommand) (*OpenAccountResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", OperationOpenAccount)
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrReservationID, cmd.ReservationID.String(),
		telemetry.SpanAttrAmount, cmd.TotalAmount.String(),
	)

	var result *OpenAccountResult
	err := s.allocator.Execute(ctx, func(tx *LedgerTx) error {
		total := cmd.TotalAmount
		count := cmd.InstallmentCount
		if len(cmd.Installments) > 0 {
			total = decimal.Zero
			for _, line := range cmd.Installments {
				total = total.Add(line.Amount)
			}
			count = len(cmd.Installments)
		}

		account, err := ledger.NewAccount(cmd.ReservationID, cmd.ClientID, total, count)
		if err != nil {
			return err
		}

		var schedule []*ledger.Installment
		switch {
		case len(cmd.Installments) > 0:
			schedule = make([]*ledger.Installment, 0, len(cmd.Installments))
			for n, line := range cmd.Installments {
				inst, err := ledger.NewInstallment(account.ID, n+1, line.DueDate, line.Amount)
				if err != nil {
					return err
				}
				schedule = append(schedule, inst)
			}
		case count > 0:
			firstDue := cmd.FirstDueDate
			if firstDue.IsZero() {
				firstDue = s.allocator.now()
			}
			schedule, err = ledger.ScheduleInstallments(account.ID, total, count, firstDue, cmd.IntervalMonths)
			if err != nil {
				return err
			}
		}

		if err := tx.Accounts.Open(ctx, account); err != nil {
			return err
		}
		if err := tx.Installments.CreateSchedule(ctx, schedule); err != nil {
			return err
		}
		result = &OpenAccountResult{Account: account, Installments: schedule}
		return nil
	})
	if err != nil {
		s.allocator.reject(ctx, span, OperationOpenAccount, err,
			zap.String("reservation_id", cmd.ReservationID.String()),
			zap.String("client_id", cmd.ClientID.String()),
		)
		return nil, err
	}

	telemetry.SetOK(span)
	s.logger.Info("account opened",
		zap.String("account_id", result.Account.ID.String()),
		zap.String("reservation_id", cmd.ReservationID.String()),
		zap.Int("installments", len(result.Installments)),
		zap.String("total_amount", result.Account.TotalAmount.String()),
	)
	return result, nil
}

// SetAccountStatus applies an administrative status transition
func (s *AccountService) SetAccountStatus(ctx context.Context, accountID uuid.UUID, status ledger.AccountStatus) (*ledger.Account, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", OperationSetAccountStatus)
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAccountID, accountID.String(),
		"status", string(status),
	)

	var account *ledger.Account
	err := s.allocator.Execute(ctx, func(tx *LedgerTx) error {
		if !status.IsValid() {
			return shared.Validation("invalid account status: %s", status)
		}
		var err error
		account, err = tx.Accounts.GetForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		return tx.Accounts.SetStatus(ctx, account, status)
	})
	if err != nil {
		s.allocator.reject(ctx, span, OperationSetAccountStatus, err, zap.String("account_id", accountID.String()))
		return nil, err
	}

	telemetry.SetOK(span)
	s.logger.Info("account status changed",
		zap.String("account_id", accountID.String()),
		zap.String("status", string(status)),
	)
	return account, nil
}

// UpdateInstallment applies an administrative edit in one transaction. An
// amount change also recomputes the account through reconciliation.
func (s *AccountService) UpdateInstallment(ctx context.Context, installmentID uuid.UUID, update ledger.InstallmentUpdate) (*ledger.Installment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", OperationUpdateInstallment)
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrInstallmentID, installmentID.String())

	var inst *ledger.Installment
	err := s.allocator.Execute(ctx, func(tx *LedgerTx) error {
		if update.Status != nil && !update.Status.IsValid() {
			return shared.Validation("invalid installment status: %s", *update.Status)
		}
		var err error
		inst, _, err = s.reconciliation.applyEdit(ctx, tx, installmentID, update)
		if err != nil {
			return err
		}
		tx.Emit(ledger.NewInstallmentUpdatedEvent(inst))
		return nil
	})
	if err != nil {
		s.allocator.reject(ctx, span, OperationUpdateInstallment, err, zap.String("installment_id", installmentID.String()))
		return nil, err
	}

	telemetry.SetOK(span)
	return inst, nil
}
