package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tourops/backend/internal/domain/shared"
)

// Account is what one client owes for one reservation. With an
// InstallmentCount of zero it runs in free-form mode and receives deliveries
// directly; otherwise its balance is split into installments.
type Account struct {
	shared.BaseAggregateRoot
	ReservationID    uuid.UUID
	ClientID         uuid.UUID
	TotalAmount      decimal.Decimal
	AmountPaid       decimal.Decimal
	BalanceDue       decimal.Decimal
	InstallmentCount int
	Status           AccountStatus
}

// NewAccount opens an account for a client on a reservation
func NewAccount(reservationID, clientID uuid.UUID, total decimal.Decimal, installmentCount int) (*Account, error) {
	if reservationID == uuid.Nil {
		return nil, shared.Validation("reservation id is required")
	}
	if clientID == uuid.Nil {
		return nil, shared.Validation("client id is required")
	}
	if total.IsNegative() {
		return nil, shared.InvalidAmount("total amount cannot be negative")
	}
	if installmentCount < 0 {
		return nil, shared.Validation("installment count cannot be negative")
	}

	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReservationID:     reservationID,
		ClientID:          clientID,
		TotalAmount:       total,
		AmountPaid:        decimal.Zero,
		BalanceDue:        total,
		InstallmentCount:  installmentCount,
		Status:            AccountStatusPending,
	}, nil
}

// IsFreeForm reports whether the account accepts deliveries instead of
// installment payments.
func (a *Account) IsFreeForm() bool {
	return a.InstallmentCount == 0
}

// ApplyDelta moves delta into amount_paid, recomputes balance_due and derives
// the status. Overpaying beyond Tolerance fails with INVALID_AMOUNT and leaves
// the account untouched.
func (a *Account) ApplyDelta(delta decimal.Decimal) error {
	newPaid := a.AmountPaid.Add(delta)
	if newPaid.IsNegative() {
		return shared.InvalidAmount("amount paid cannot become negative (delta %s)", delta.String())
	}
	if newPaid.GreaterThan(a.TotalAmount.Add(Tolerance)) {
		return shared.InvalidAmount("payment of %s exceeds account balance of %s", delta.String(), a.BalanceDue.String())
	}

	previous := a.Status
	a.AmountPaid = newPaid
	a.BalanceDue = clampBalance(a.TotalAmount, a.AmountPaid)
	a.deriveStatus()
	a.IncrementVersion()

	if a.Status == AccountStatusPaid && previous != AccountStatusPaid {
		a.AddDomainEvent(NewAccountSettledEvent(a))
	}
	return nil
}

// SetStatus applies an administrative status transition. Cascading effects on
// installments are the caller's responsibility.
func (a *Account) SetStatus(status AccountStatus) error {
	if !status.IsValid() {
		return shared.Validation("invalid account status: %s", status)
	}
	if a.Status == status {
		return nil
	}
	previous := a.Status
	a.Status = status
	a.IncrementVersion()
	a.AddDomainEvent(NewAccountStatusChangedEvent(a, previous))
	if status == AccountStatusPaid {
		a.AddDomainEvent(NewAccountSettledEvent(a))
	}
	return nil
}

// RecomputeFromInstallments rebuilds total_amount and amount_paid from the
// installment rows.
func (a *Account) RecomputeFromInstallments(installments []*Installment) {
	total := decimal.Zero
	paid := decimal.Zero
	for _, inst := range installments {
		total = total.Add(inst.Amount)
		paid = paid.Add(inst.AmountPaid)
	}

	previous := a.Status
	a.TotalAmount = total
	a.AmountPaid = paid
	a.BalanceDue = clampBalance(total, paid)
	a.InstallmentCount = len(installments)

	a.deriveStatus()
	// A raised total can reopen a settled account.
	if a.Status == AccountStatusPaid && a.BalanceDue.IsPositive() {
		if paid.IsPositive() {
			a.Status = AccountStatusInProgress
		} else {
			a.Status = AccountStatusPending
		}
	}
	a.IncrementVersion()

	if a.Status == AccountStatusPaid && previous != AccountStatusPaid {
		a.AddDomainEvent(NewAccountSettledEvent(a))
	}
}

// MarkOverdue flags the account as overdue unless it is already settled or
// cancelled. Returns true when the status changed.
func (a *Account) MarkOverdue() bool {
	if a.Status.IsTerminal() || a.Status == AccountStatusOverdue {
		return false
	}
	a.Status = AccountStatusOverdue
	a.IncrementVersion()
	return true
}

func (a *Account) deriveStatus() {
	switch {
	case a.Status == AccountStatusCancelled:
	case !a.BalanceDue.IsPositive():
		a.Status = AccountStatusPaid
	case a.AmountPaid.IsPositive() && a.AmountPaid.LessThan(a.TotalAmount):
		a.Status = AccountStatusInProgress
	}
}

func clampBalance(total, paid decimal.Decimal) decimal.Decimal {
	balance := total.Sub(paid)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}
