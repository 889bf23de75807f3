package ledger

import "github.com/shopspring/decimal"

// Tolerance is the rounding slack accepted when an account's paid amount is
// compared against its total.
var Tolerance = decimal.New(1, -2)

// AccountStatus represents the lifecycle status of an account
type AccountStatus string

const (
	AccountStatusPending    AccountStatus = "pending"     // Nothing paid yet
	AccountStatusInProgress AccountStatus = "in_progress" // 0 < amount_paid < total_amount
	AccountStatusPaid       AccountStatus = "paid"        // balance_due reached zero
	AccountStatusOverdue    AccountStatus = "overdue"     // At least one installment past due
	AccountStatusCancelled  AccountStatus = "cancelled"   // Reservation cancelled
)

// IsValid checks if the status is a valid AccountStatus
func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountStatusPending, AccountStatusInProgress, AccountStatusPaid,
		AccountStatusOverdue, AccountStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of AccountStatus
func (s AccountStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further payments are expected
func (s AccountStatus) IsTerminal() bool {
	return s == AccountStatusPaid || s == AccountStatusCancelled
}

// InstallmentStatus represents the status of a single installment
type InstallmentStatus string

const (
	InstallmentStatusPending       InstallmentStatus = "pending"
	InstallmentStatusPartiallyPaid InstallmentStatus = "partially_paid"
	InstallmentStatusPaid          InstallmentStatus = "paid"
	InstallmentStatusOverdue       InstallmentStatus = "overdue"
	InstallmentStatusCancelled     InstallmentStatus = "cancelled"
)

// IsValid checks if the status is a valid InstallmentStatus
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusPartiallyPaid, InstallmentStatusPaid,
		InstallmentStatusOverdue, InstallmentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InstallmentStatus
func (s InstallmentStatus) String() string {
	return string(s)
}

// CanApplyPayment returns true if money can still be applied in this status
func (s InstallmentStatus) CanApplyPayment() bool {
	return s != InstallmentStatusCancelled && s != InstallmentStatusPaid
}

// PaymentMethod is the instrument a client used to pay
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodDeposit      PaymentMethod = "deposit"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodECheck       PaymentMethod = "e_check"
	PaymentMethodOther        PaymentMethod = "other"
)

// AllPaymentMethods lists the accepted methods in display order
func AllPaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCreditCard, PaymentMethodDebitCard,
		PaymentMethodDeposit, PaymentMethodCheck, PaymentMethodECheck, PaymentMethodOther,
	}
}

// IsValid checks if the method is one of the accepted payment methods
func (m PaymentMethod) IsValid() bool {
	for _, known := range AllPaymentMethods() {
		if m == known {
			return true
		}
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// RequiresStructuredExtra reports whether the method carries instrument
// metadata (check number, bank) that must be a JSON object.
func (m PaymentMethod) RequiresStructuredExtra() bool {
	return m == PaymentMethodCheck || m == PaymentMethodECheck
}
