package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tourops/backend/internal/domain/shared"
)

// Installment is one scheduled slice of an account's debt
type Installment struct {
	shared.BaseEntity
	AccountID      uuid.UUID
	SequenceNumber int
	DueDate        time.Time
	Amount         decimal.Decimal
	AmountPaid     decimal.Decimal
	Status         InstallmentStatus
	PaymentMethod  PaymentMethod
	PaymentDate    *time.Time
	Observations   string
}

// InstallmentUpdate carries an administrative edit. Nil fields are left as is.
type InstallmentUpdate struct {
	DueDate      *time.Time
	Amount       *decimal.Decimal
	Status       *InstallmentStatus
	Observations *string
}

// NewInstallment creates a pending installment
func NewInstallment(accountID uuid.UUID, sequence int, dueDate time.Time, amount decimal.Decimal) (*Installment, error) {
	if accountID == uuid.Nil {
		return nil, shared.Validation("account id is required")
	}
	if sequence < 1 {
		return nil, shared.Validation("sequence number must start at 1")
	}
	if !amount.IsPositive() {
		return nil, shared.InvalidAmount("installment amount must be positive")
	}

	return &Installment{
		BaseEntity:     shared.NewBaseEntity(),
		AccountID:      accountID,
		SequenceNumber: sequence,
		DueDate:        dueDate,
		Amount:         amount,
		AmountPaid:     decimal.Zero,
		Status:         InstallmentStatusPending,
	}, nil
}

// Outstanding returns what is still owed on the installment
func (i *Installment) Outstanding() decimal.Decimal {
	remaining := i.Amount.Sub(i.AmountPaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsOutstanding reports whether the installment still accepts money
func (i *Installment) IsOutstanding() bool {
	return i.Status != InstallmentStatusCancelled && i.AmountPaid.LessThan(i.Amount)
}

// ApplyPayment applies amount to the installment and stamps the payment
// details. The amount may not exceed the outstanding balance.
func (i *Installment) ApplyPayment(amount decimal.Decimal, method PaymentMethod, paidAt time.Time) error {
	if !amount.IsPositive() {
		return shared.InvalidAmount("payment amount must be positive")
	}
	if i.Status == InstallmentStatusCancelled {
		return shared.Validation("installment %d is cancelled", i.SequenceNumber)
	}
	outstanding := i.Outstanding()
	if amount.GreaterThan(outstanding) {
		return shared.InvalidAmount("payment of %s exceeds outstanding %s on installment %d",
			amount.String(), outstanding.String(), i.SequenceNumber)
	}

	i.AmountPaid = i.AmountPaid.Add(amount)
	if i.AmountPaid.GreaterThanOrEqual(i.Amount) {
		i.Status = InstallmentStatusPaid
	} else {
		i.Status = InstallmentStatusPartiallyPaid
	}
	i.PaymentMethod = method
	i.PaymentDate = &paidAt
	i.Touch()
	return nil
}

// ChangeAmount sets a new face amount. It may not drop below what has
// already been paid.
func (i *Installment) ChangeAmount(newAmount decimal.Decimal) error {
	if !newAmount.IsPositive() {
		return shared.InvalidAmount("installment amount must be positive")
	}
	if newAmount.LessThan(i.AmountPaid) {
		return shared.Validation("installment amount %s cannot be below amount already paid %s",
			newAmount.String(), i.AmountPaid.String())
	}

	i.Amount = newAmount
	if i.Status != InstallmentStatusCancelled {
		switch {
		case i.AmountPaid.GreaterThanOrEqual(i.Amount):
			i.Status = InstallmentStatusPaid
		case i.AmountPaid.IsPositive():
			i.Status = InstallmentStatusPartiallyPaid
		case i.Status == InstallmentStatusPaid:
			i.Status = InstallmentStatusPending
		}
	}
	i.Touch()
	return nil
}

// Update applies an administrative edit
func (i *Installment) Update(u InstallmentUpdate) error {
	if u.Status != nil && !u.Status.IsValid() {
		return shared.Validation("invalid installment status: %s", *u.Status)
	}
	if u.Amount != nil {
		if err := i.ChangeAmount(*u.Amount); err != nil {
			return err
		}
	}
	if u.DueDate != nil {
		i.DueDate = *u.DueDate
	}
	if u.Status != nil {
		i.Status = *u.Status
	}
	if u.Observations != nil {
		i.Observations = *u.Observations
	}
	i.Touch()
	return nil
}

// MarkPaid force-settles the installment status without moving money. Used
// when an account is closed administratively.
func (i *Installment) MarkPaid() {
	i.Status = InstallmentStatusPaid
	i.Touch()
}

// MarkOverdue flags an unpaid installment whose due date passed.
// Returns true when the status changed.
func (i *Installment) MarkOverdue(asOf time.Time) bool {
	if i.Status != InstallmentStatusPending && i.Status != InstallmentStatusPartiallyPaid {
		return false
	}
	if !i.DueDate.Before(asOf) {
		return false
	}
	i.Status = InstallmentStatusOverdue
	i.Touch()
	return true
}

// SortOutstanding orders installments oldest debt first: due date ascending,
// then sequence number ascending.
func SortOutstanding(installments []*Installment) {
	sort.SliceStable(installments, func(a, b int) bool {
		ia, ib := installments[a], installments[b]
		if !ia.DueDate.Equal(ib.DueDate) {
			return ia.DueDate.Before(ib.DueDate)
		}
		return ia.SequenceNumber < ib.SequenceNumber
	})
}

// FilterOutstanding keeps installments that still owe money, in allocation order
func FilterOutstanding(installments []*Installment) []*Installment {
	out := make([]*Installment, 0, len(installments))
	for _, inst := range installments {
		if inst.IsOutstanding() {
			out = append(out, inst)
		}
	}
	SortOutstanding(out)
	return out
}

// ScheduleInstallments splits total into count installments due every
// interval months starting at firstDue. Cents that do not divide evenly go to
// the last installment.
func ScheduleInstallments(accountID uuid.UUID, total decimal.Decimal, count int, firstDue time.Time, intervalMonths int) ([]*Installment, error) {
	if count < 1 {
		return nil, shared.Validation("installment count must be at least 1")
	}
	if !total.IsPositive() {
		return nil, shared.InvalidAmount("total amount must be positive")
	}
	if intervalMonths < 1 {
		intervalMonths = 1
	}

	share := total.Div(decimal.NewFromInt(int64(count))).RoundDown(2)
	allocated := decimal.Zero
	schedule := make([]*Installment, 0, count)
	for n := 1; n <= count; n++ {
		amount := share
		if n == count {
			amount = total.Sub(allocated)
		}
		inst, err := NewInstallment(accountID, n, firstDue.AddDate(0, (n-1)*intervalMonths, 0), amount)
		if err != nil {
			return nil, err
		}
		allocated = allocated.Add(amount)
		schedule = append(schedule, inst)
	}
	return schedule, nil
}
