package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/tourops/backend/internal/domain/ledger"
	"github.com/tourops/backend/internal/domain/shared"
	"github.com/tourops/backend/internal/infrastructure/telemetry"
)

// Allocator is the single entry point for moving money into the ledger.
// Every operation runs inside Execute: one transaction, row locks on what
// it writes (account first, then installments), events published after
// commit.
type Allocator struct {
	scope     TransactionScope
	publisher shared.EventPublisher
	resolver  AttachmentResolver
	metrics   Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// AllocatorOption configures an Allocator
type AllocatorOption func(*Allocator)

// WithAttachmentResolver sets the resolver used for delivery attachments
func WithAttachmentResolver(r AttachmentResolver) AllocatorOption {
	return func(a *Allocator) {
		if r != nil {
			a.resolver = r
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m Metrics) AllocatorOption {
	return func(a *Allocator) {
		if m != nil {
			a.metrics = m
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) AllocatorOption {
	return func(a *Allocator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAllocator creates a new Allocator
func NewAllocator(scope TransactionScope, publisher shared.EventPublisher, logger *zap.Logger, opts ...AllocatorOption) *Allocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Allocator{
		scope:     scope,
		publisher: publisher,
		resolver:  PassthroughResolver{},
		metrics:   noopMetrics{},
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Execute runs fn in one transaction. Domain errors surface unchanged; any
// other failure rolls back and surfaces as LEDGER_FAILURE.
func (a *Allocator) Execute(ctx context.Context, fn func(tx *LedgerTx) error) error {
	var committed []shared.DomainEvent
	err := a.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		tx := newLedgerTx(repos)
		if err := fn(tx); err != nil {
			return err
		}
		committed = tx.events
		return nil
	})
	if err != nil {
		return shared.LedgerFailure(err)
	}

	if len(committed) > 0 && a.publisher != nil {
		if pubErr := a.publisher.Publish(ctx, committed...); pubErr != nil {
			a.logger.Error("failed to publish ledger events",
				zap.Int("event_count", len(committed)),
				zap.Error(pubErr),
			)
		}
	}
	return nil
}

// PayInstallmentCommand registers one payment against one installment
type PayInstallmentCommand struct {
	InstallmentID uuid.UUID
	Amount        decimal.Decimal
	Method        ledger.PaymentMethod
	PaymentDate   *time.Time
	Observations  string
	Extra         json.RawMessage
	RecordedBy    uuid.UUID
}

// PayInstallment applies a payment to one installment and issues its receipt
func (a *Allocator) PayInstallment(ctx context.Context, cmd PayInstallmentCommand) (*ledger.Payment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", OperationPayInstallment)
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInstallmentID, cmd.InstallmentID.String(),
		telemetry.SpanAttrAmount, cmd.Amount.String(),
		telemetry.SpanAttrPaymentMethod, string(cmd.Method),
	)

	var payment *ledger.Payment
	var opErr error
	telemetry.WithProfilingLabels(ctx, telemetry.LedgerOperationLabels(OperationPayInstallment), func(c context.Context) {
		paidAt := a.paymentDate(cmd.PaymentDate)
		opErr = a.Execute(c, func(tx *LedgerTx) error {
			if !cmd.Method.IsValid() {
				return shared.Validation("unsupported payment method: %q", cmd.Method)
			}
			if err := ledger.ValidateExtra(cmd.Method, cmd.Extra); err != nil {
				return err
			}

			// Resolve the owning account first so the account lock is taken
			// before the installment lock.
			probe, err := tx.Installments.Get(c, cmd.InstallmentID)
			if err != nil {
				return err
			}
			account, err := tx.Accounts.GetForUpdate(c, probe.AccountID)
			if err != nil {
				return err
			}
			inst, err := tx.Installments.GetForUpdate(c, cmd.InstallmentID)
			if err != nil {
				return err
			}
			if account.Status == ledger.AccountStatusCancelled {
				return shared.Validation("account %s is cancelled", account.ID)
			}

			hasPayment, err := tx.Payments.HasPayment(c, inst.ID)
			if err != nil {
				return err
			}
			if hasPayment {
				return shared.Conflict("installment %d already has a payment", inst.SequenceNumber)
			}
			if !cmd.Amount.IsPositive() || cmd.Amount.GreaterThan(inst.Outstanding()) {
				return shared.InvalidAmount("payment of %s does not fit outstanding %s on installment %d",
					cmd.Amount.String(), inst.Outstanding().String(), inst.SequenceNumber)
			}

			if err := tx.Installments.ApplyPayment(c, inst, cmd.Amount, cmd.Method, paidAt); err != nil {
				return err
			}
			if err := tx.Accounts.ApplyDelta(c, account, cmd.Amount); err != nil {
				return err
			}

			installmentID := inst.ID
			payment, err = tx.Payments.Record(c, ledger.PaymentDraft{
				AccountID:     account.ID,
				InstallmentID: &installmentID,
				ClientID:      account.ClientID,
				RecordedBy:    cmd.RecordedBy,
				Amount:        cmd.Amount,
				Method:        cmd.Method,
				PaymentDate:   paidAt,
				Observations:  cmd.Observations,
				Extra:         cmd.Extra,
			})
			if err != nil {
				return err
			}
			tx.Emit(ledger.NewPaymentRecordedEvent(payment))
			return nil
		})
	})

	if opErr != nil {
		a.reject(ctx, span, OperationPayInstallment, opErr,
			zap.String("installment_id", cmd.InstallmentID.String()),
			zap.String("amount", cmd.Amount.String()),
		)
		return nil, opErr
	}

	a.metrics.PaymentRecorded(ctx, OperationPayInstallment, payment.Method, payment.Amount)
	telemetry.SetAttribute(span, telemetry.SpanAttrReceiptNumber, payment.ReceiptNumber)
	telemetry.SetOK(span)
	a.logger.Info("installment payment recorded",
		zap.String("receipt_number", payment.ReceiptNumber),
		zap.String("account_id", payment.AccountID.String()),
		zap.String("installment_id", cmd.InstallmentID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("method", string(payment.Method)),
	)
	return payment, nil
}

// RecordDeliveryCommand registers a free-form delivery against an account
type RecordDeliveryCommand struct {
	AccountID     uuid.UUID
	Amount        decimal.Decimal
	Method        ledger.PaymentMethod
	PaymentDate   *time.Time
	Observations  string
	Extra         json.RawMessage
	AttachmentRef string
	RecordedBy    uuid.UUID
}

// RecordDelivery applies a delivery to a free-form account and issues its receipt
func (a *Allocator) RecordDelivery(ctx context.Context, cmd RecordDeliveryCommand) (*ledger.Payment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", OperationRecordDelivery)
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAccountID, cmd.AccountID.String(),
		telemetry.SpanAttrAmount, cmd.Amount.String(),
		telemetry.SpanAttrPaymentMethod, string(cmd.Method),
	)

	var payment *ledger.Payment
	var opErr error
	telemetry.WithProfilingLabels(ctx, telemetry.LedgerOperationLabels(OperationRecordDelivery), func(c context.Context) {
		// Object storage is checked before the transaction so no row lock is
		// held across a network call.
		attachment := cmd.AttachmentRef
		if attachment != "" {
			resolved, err := a.resolver.Resolve(c, attachment)
			if err != nil {
				opErr = shared.LedgerFailure(err)
				return
			}
			attachment = resolved
		}

		paidAt := a.paymentDate(cmd.PaymentDate)
		opErr = a.Execute(c, func(tx *LedgerTx) error {
			if !cmd.Method.IsValid() {
				return shared.Validation("unsupported payment method: %q", cmd.Method)
			}
			if err := ledger.ValidateExtra(cmd.Method, cmd.Extra); err != nil {
				return err
			}

			account, err := tx.Accounts.GetForUpdate(c, cmd.AccountID)
			if err != nil {
				return err
			}
			if !account.IsFreeForm() {
				return shared.Validation("account %s has %d installments; pay installments instead",
					account.ID, account.InstallmentCount)
			}
			if account.Status == ledger.AccountStatusCancelled {
				return shared.Validation("account %s is cancelled", account.ID)
			}
			if !cmd.Amount.IsPositive() || cmd.Amount.GreaterThan(account.BalanceDue) {
				return shared.InvalidAmount("delivery of %s does not fit balance due %s",
					cmd.Amount.String(), account.BalanceDue.String())
			}

			if err := tx.Accounts.ApplyDelta(c, account, cmd.Amount); err != nil {
				return err
			}
			payment, err = tx.Payments.Record(c, ledger.PaymentDraft{
				AccountID:     account.ID,
				ClientID:      account.ClientID,
				RecordedBy:    cmd.RecordedBy,
				Amount:        cmd.Amount,
				Method:        cmd.Method,
				PaymentDate:   paidAt,
				Observations:  cmd.Observations,
				Extra:         cmd.Extra,
				AttachmentRef: attachment,
			})
			if err != nil {
				return err
			}
			tx.Emit(ledger.NewPaymentRecordedEvent(payment))
			return nil
		})
	})

	if opErr != nil {
		a.reject(ctx, span, OperationRecordDelivery, opErr,
			zap.String("account_id", cmd.AccountID.String()),
			zap.String("amount", cmd.Amount.String()),
		)
		return nil, opErr
	}

	a.metrics.PaymentRecorded(ctx, OperationRecordDelivery, payment.Method, payment.Amount)
	telemetry.SetAttribute(span, telemetry.SpanAttrReceiptNumber, payment.ReceiptNumber)
	telemetry.SetOK(span)
	a.logger.Info("delivery recorded",
		zap.String("receipt_number", payment.ReceiptNumber),
		zap.String("account_id", payment.AccountID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("method", string(payment.Method)),
	)
	return payment, nil
}

// PayReservationCommand spreads one lump payment across a reservation's accounts
type PayReservationCommand struct {
	ReservationID  uuid.UUID
	Amount         decimal.Decimal
	Method         ledger.PaymentMethod
	PaymentDate    *time.Time
	Observations   string
	ClientID       *uuid.UUID  // Restrict to this client's account
	InstallmentIDs []uuid.UUID // Restrict to these installments
	RecordedBy     uuid.UUID
}

// ReservationAllocation is the outcome of PayReservation
type ReservationAllocation struct {
	AllocationID  uuid.UUID           `json:"allocation_id"`
	ReservationID uuid.UUID           `json:"reservation_id"`
	Allocations   []ledger.Allocation `json:"allocations"`
	TotalApplied  decimal.Decimal     `json:"total_applied"`
	Remaining     decimal.Decimal     `json:"remaining"`
	FullyPaid     bool                `json:"reservation_fully_paid"`
}

// PayReservation allocates a lump sum over the reservation's outstanding
// installments. Accounts are visited in load order, installments oldest
// debt first. No receipts are issued; the breakdown and any unapplied
// remainder are returned.
func (a *Allocator) PayReservation(ctx context.Context, cmd PayReservationCommand) (*ReservationAllocation, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", OperationPayReservation)
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrReservationID, cmd.ReservationID.String(),
		telemetry.SpanAttrAmount, cmd.Amount.String(),
		telemetry.SpanAttrPaymentMethod, string(cmd.Method),
	)

	var result *ReservationAllocation
	var opErr error
	telemetry.WithProfilingLabels(ctx, telemetry.LedgerOperationLabels(OperationPayReservation), func(c context.Context) {
		paidAt := a.paymentDate(cmd.PaymentDate)
		opErr = a.Execute(c, func(tx *LedgerTx) error {
			if !cmd.Method.IsValid() {
				return shared.Validation("unsupported payment method: %q", cmd.Method)
			}
			if !cmd.Amount.IsPositive() {
				return shared.InvalidAmount("payment amount must be positive")
			}

			accounts, err := tx.Accounts.ListByReservationForUpdate(c, cmd.ReservationID)
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				return shared.NotFound("accounts for reservation", cmd.ReservationID)
			}

			selected := selectAccounts(accounts, cmd.ClientID)
			if len(selected) == 0 {
				return shared.Validation("reservation %s has no account for client %s", cmd.ReservationID, *cmd.ClientID)
			}

			targets := make(map[uuid.UUID]struct{}, len(cmd.InstallmentIDs))
			for _, id := range cmd.InstallmentIDs {
				targets[id] = struct{}{}
			}

			candidates := make([]ledger.AllocationCandidate, 0, len(selected))
			byID := make(map[uuid.UUID]*ledger.Installment)
			for _, account := range selected {
				if account.Status == ledger.AccountStatusCancelled {
					continue
				}
				outstanding, err := tx.Installments.ListOutstandingForUpdate(c, account.ID)
				if err != nil {
					return err
				}
				outstanding = filterInstallments(outstanding, targets)
				for _, inst := range outstanding {
					byID[inst.ID] = inst
				}
				candidates = append(candidates, ledger.AllocationCandidate{Account: account, Installments: outstanding})
			}

			plan, err := ledger.PlanAllocation(cmd.Amount, candidates)
			if err != nil {
				return err
			}

			for _, alloc := range plan.Allocations {
				if err := tx.Installments.ApplyPayment(c, byID[alloc.InstallmentID], alloc.AmountApplied, cmd.Method, paidAt); err != nil {
					return err
				}
			}
			accountByID := make(map[uuid.UUID]*ledger.Account, len(accounts))
			for _, account := range accounts {
				accountByID[account.ID] = account
			}
			for _, total := range plan.AccountTotals {
				if err := tx.Accounts.ApplyDelta(c, accountByID[total.AccountID], total.Amount); err != nil {
					return err
				}
			}

			result = &ReservationAllocation{
				AllocationID:  uuid.New(),
				ReservationID: cmd.ReservationID,
				Allocations:   plan.Allocations,
				TotalApplied:  plan.TotalAllocated,
				Remaining:     plan.Remaining,
				FullyPaid:     allPaid(accounts),
			}
			tx.Emit(ledger.NewReservationPaymentAllocatedEvent(
				result.AllocationID, cmd.ReservationID, cmd.RecordedBy, cmd.Method, cmd.Amount, plan))
			if result.FullyPaid {
				tx.Emit(ledger.NewReservationFullyPaidEvent(cmd.ReservationID))
			}
			return nil
		})
	})

	if opErr != nil {
		a.reject(ctx, span, OperationPayReservation, opErr,
			zap.String("reservation_id", cmd.ReservationID.String()),
			zap.String("amount", cmd.Amount.String()),
		)
		return nil, opErr
	}

	a.metrics.AllocationCompleted(ctx, len(result.Allocations), result.TotalApplied, result.Remaining)
	telemetry.SetAttributes(span,
		"allocation_count", len(result.Allocations),
		"remaining", result.Remaining.String(),
	)
	telemetry.SetOK(span)
	a.logger.Info("reservation payment allocated",
		zap.String("allocation_id", result.AllocationID.String()),
		zap.String("reservation_id", cmd.ReservationID.String()),
		zap.Int("allocations", len(result.Allocations)),
		zap.String("applied", result.TotalApplied.String()),
		zap.String("remaining", result.Remaining.String()),
	)
	if result.Remaining.IsPositive() {
		a.logger.Warn("reservation payment exceeded outstanding debt",
			zap.String("reservation_id", cmd.ReservationID.String()),
			zap.String("remaining", result.Remaining.String()),
		)
	}
	return result, nil
}

func (a *Allocator) paymentDate(requested *time.Time) time.Time {
	if requested != nil && !requested.IsZero() {
		return *requested
	}
	return a.now()
}

// reject logs, traces and counts a failed operation
func (a *Allocator) reject(ctx context.Context, span trace.Span, operation string, err error, fields ...zap.Field) {
	code := shared.CodeOf(err)
	telemetry.RecordError(span, err)
	a.metrics.OperationRejected(ctx, operation, code)

	fields = append(fields, zap.String("operation", operation), zap.String("code", code), zap.Error(err))
	if code == shared.CodeLedgerFailure {
		a.logger.Error("ledger operation failed", fields...)
		return
	}
	a.logger.Warn("ledger operation rejected", fields...)
}

func selectAccounts(accounts []*ledger.Account, clientID *uuid.UUID) []*ledger.Account {
	if clientID == nil {
		return accounts
	}
	selected := make([]*ledger.Account, 0, 1)
	for _, account := range accounts {
		if account.ClientID == *clientID {
			selected = append(selected, account)
		}
	}
	return selected
}

func filterInstallments(installments []*ledger.Installment, targets map[uuid.UUID]struct{}) []*ledger.Installment {
	if len(targets) == 0 {
		return installments
	}
	kept := make([]*ledger.Installment, 0, len(installments))
	for _, inst := range installments {
		if _, ok := targets[inst.ID]; ok {
			kept = append(kept, inst)
		}
	}
	return kept
}

func allPaid(accounts []*ledger.Account) bool {
	for _, account := range accounts {
		if account.Status != ledger.AccountStatusPaid {
			return false
		}
	}
	return true
}
