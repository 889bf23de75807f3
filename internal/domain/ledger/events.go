package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tourops/backend/internal/domain/shared"
)

// Aggregate type names
const (
	AggregateTypeAccount     = "Account"
	AggregateTypeReservation = "Reservation"
)

// Event type names
const (
	EventTypePaymentRecorded             = "ledger.payment_recorded"
	EventTypeAccountSettled              = "ledger.account_settled"
	EventTypeAccountStatusChanged        = "ledger.account_status_changed"
	EventTypeReservationPaymentAllocated = "ledger.reservation_payment_allocated"
	EventTypeReservationFullyPaid        = "ledger.reservation_fully_paid"
	EventTypeInstallmentAmountChanged    = "ledger.installment_amount_changed"
	EventTypeInstallmentsOverdue         = "ledger.installments_overdue"
	EventTypeInstallmentUpdated          = "ledger.installment_updated"
)

// AccountScoped is implemented by events that concern specific accounts
type AccountScoped interface {
	AccountIDs() []uuid.UUID
}

// PaymentRecordedEvent is raised when a receipt is issued
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	ReceiptNumber string          `json:"receipt_number"`
	AccountID     uuid.UUID       `json:"account_id"`
	InstallmentID *uuid.UUID      `json:"installment_id,omitempty"`
	ClientID      uuid.UUID       `json:"client_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeAccount, p.AccountID),
		PaymentID:       p.ID,
		ReceiptNumber:   p.ReceiptNumber,
		AccountID:       p.AccountID,
		InstallmentID:   p.InstallmentID,
		ClientID:        p.ClientID,
		Amount:          p.Amount,
		Method:          p.Method,
	}
}

// AccountIDs implements AccountScoped
func (e *PaymentRecordedEvent) AccountIDs() []uuid.UUID { return []uuid.UUID{e.AccountID} }

// AccountSettledEvent is raised when an account's balance reaches zero
type AccountSettledEvent struct {
	shared.BaseDomainEvent
	AccountID     uuid.UUID       `json:"account_id"`
	ReservationID uuid.UUID       `json:"reservation_id"`
	ClientID      uuid.UUID       `json:"client_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	SettledAt     time.Time       `json:"settled_at"`
}

// NewAccountSettledEvent creates a new AccountSettledEvent
func NewAccountSettledEvent(a *Account) *AccountSettledEvent {
	return &AccountSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountSettled, AggregateTypeAccount, a.ID),
		AccountID:       a.ID,
		ReservationID:   a.ReservationID,
		ClientID:        a.ClientID,
		TotalAmount:     a.TotalAmount,
		SettledAt:       time.Now(),
	}
}

// AccountIDs implements AccountScoped
func (e *AccountSettledEvent) AccountIDs() []uuid.UUID { return []uuid.UUID{e.AccountID} }

// AccountStatusChangedEvent is raised on an administrative status transition
type AccountStatusChangedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID     `json:"account_id"`
	From      AccountStatus `json:"from"`
	To        AccountStatus `json:"to"`
}

// NewAccountStatusChangedEvent creates a new AccountStatusChangedEvent
func NewAccountStatusChangedEvent(a *Account, from AccountStatus) *AccountStatusChangedEvent {
	return &AccountStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountStatusChanged, AggregateTypeAccount, a.ID),
		AccountID:       a.ID,
		From:            from,
		To:              a.Status,
	}
}

// AccountIDs implements AccountScoped
func (e *AccountStatusChangedEvent) AccountIDs() []uuid.UUID { return []uuid.UUID{e.AccountID} }

// ReservationPaymentAllocatedEvent records the breakdown of a lump-sum
// payment, which issues no per-installment receipts.
type ReservationPaymentAllocatedEvent struct {
	shared.BaseDomainEvent
	AllocationID  uuid.UUID       `json:"allocation_id"`
	ReservationID uuid.UUID       `json:"reservation_id"`
	RecordedBy    uuid.UUID       `json:"recorded_by"`
	Method        PaymentMethod   `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
	Allocations   []Allocation    `json:"allocations"`
	Remaining     decimal.Decimal `json:"remaining"`
}

// NewReservationPaymentAllocatedEvent creates a new ReservationPaymentAllocatedEvent
func NewReservationPaymentAllocatedEvent(allocationID, reservationID, recordedBy uuid.UUID, method PaymentMethod, amount decimal.Decimal, plan *AllocationPlan) *ReservationPaymentAllocatedEvent {
	return &ReservationPaymentAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationPaymentAllocated, AggregateTypeReservation, reservationID),
		AllocationID:    allocationID,
		ReservationID:   reservationID,
		RecordedBy:      recordedBy,
		Method:          method,
		Amount:          amount,
		Allocations:     plan.Allocations,
		Remaining:       plan.Remaining,
	}
}

// AccountIDs implements AccountScoped
func (e *ReservationPaymentAllocatedEvent) AccountIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, a := range e.Allocations {
		if _, ok := seen[a.AccountID]; ok {
			continue
		}
		seen[a.AccountID] = struct{}{}
		ids = append(ids, a.AccountID)
	}
	return ids
}

// ReservationFullyPaidEvent is raised when every account of a reservation is paid
type ReservationFullyPaidEvent struct {
	shared.BaseDomainEvent
	ReservationID uuid.UUID `json:"reservation_id"`
}

// NewReservationFullyPaidEvent creates a new ReservationFullyPaidEvent
func NewReservationFullyPaidEvent(reservationID uuid.UUID) *ReservationFullyPaidEvent {
	return &ReservationFullyPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationFullyPaid, AggregateTypeReservation, reservationID),
		ReservationID:   reservationID,
	}
}

// InstallmentAmountChangedEvent is raised after reconciliation of an edited installment
type InstallmentAmountChangedEvent struct {
	shared.BaseDomainEvent
	AccountID     uuid.UUID       `json:"account_id"`
	InstallmentID uuid.UUID       `json:"installment_id"`
	OldAmount     decimal.Decimal `json:"old_amount"`
	NewAmount     decimal.Decimal `json:"new_amount"`
	AccountTotal  decimal.Decimal `json:"account_total"`
}

// NewInstallmentAmountChangedEvent creates a new InstallmentAmountChangedEvent
func NewInstallmentAmountChangedEvent(inst *Installment, oldAmount decimal.Decimal, account *Account) *InstallmentAmountChangedEvent {
	return &InstallmentAmountChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstallmentAmountChanged, AggregateTypeAccount, account.ID),
		AccountID:       account.ID,
		InstallmentID:   inst.ID,
		OldAmount:       oldAmount,
		NewAmount:       inst.Amount,
		AccountTotal:    account.TotalAmount,
	}
}

// AccountIDs implements AccountScoped
func (e *InstallmentAmountChangedEvent) AccountIDs() []uuid.UUID { return []uuid.UUID{e.AccountID} }

// InstallmentsOverdueEvent is raised by the overdue sweep
type InstallmentsOverdueEvent struct {
	shared.BaseDomainEvent
	AccountID      uuid.UUID   `json:"account_id"`
	InstallmentIDs []uuid.UUID `json:"installment_ids"`
}

// NewInstallmentsOverdueEvent creates a new InstallmentsOverdueEvent
func NewInstallmentsOverdueEvent(accountID uuid.UUID, installmentIDs []uuid.UUID) *InstallmentsOverdueEvent {
	return &InstallmentsOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstallmentsOverdue, AggregateTypeAccount, accountID),
		AccountID:       accountID,
		InstallmentIDs:  installmentIDs,
	}
}

// AccountIDs implements AccountScoped
func (e *InstallmentsOverdueEvent) AccountIDs() []uuid.UUID { return []uuid.UUID{e.AccountID} }

// InstallmentUpdatedEvent is raised after an administrative installment edit
type InstallmentUpdatedEvent struct {
	shared.BaseDomainEvent
	AccountID     uuid.UUID         `json:"account_id"`
	InstallmentID uuid.UUID         `json:"installment_id"`
	Status        InstallmentStatus `json:"status"`
	DueDate       time.Time         `json:"due_date"`
}

// NewInstallmentUpdatedEvent creates a new InstallmentUpdatedEvent
func NewInstallmentUpdatedEvent(inst *Installment) *InstallmentUpdatedEvent {
	return &InstallmentUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstallmentUpdated, AggregateTypeAccount, inst.AccountID),
		AccountID:       inst.AccountID,
		InstallmentID:   inst.ID,
		Status:          inst.Status,
		DueDate:         inst.DueDate,
	}
}

// AccountIDs implements AccountScoped
func (e *InstallmentUpdatedEvent) AccountIDs() []uuid.UUID { return []uuid.UUID{e.AccountID} }
