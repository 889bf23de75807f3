package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tourops/backend/internal/domain/shared"
)

// ReceiptPrefix prefixes every receipt number
const ReceiptPrefix = "REC-"

// FormatReceiptNumber renders a counter value as a receipt number
func FormatReceiptNumber(correlative int64) string {
	return fmt.Sprintf("%s%06d", ReceiptPrefix, correlative)
}

// Payment is an immutable receipt. Corrections are new records, never edits.
type Payment struct {
	ID            uuid.UUID
	ReceiptNumber string
	AccountID     uuid.UUID
	InstallmentID *uuid.UUID
	ClientID      uuid.UUID
	RecordedBy    uuid.UUID
	Amount        decimal.Decimal
	Method        PaymentMethod
	PaymentDate   time.Time
	Observations  string
	Extra         json.RawMessage
	AttachmentRef string
	CreatedAt     time.Time
}

// PaymentDraft is everything needed to record a payment except its receipt number
type PaymentDraft struct {
	AccountID     uuid.UUID
	InstallmentID *uuid.UUID
	ClientID      uuid.UUID
	RecordedBy    uuid.UUID
	Amount        decimal.Decimal
	Method        PaymentMethod
	PaymentDate   time.Time
	Observations  string
	Extra         json.RawMessage
	AttachmentRef string
}

// Validate checks the draft before a receipt number is spent on it
func (d PaymentDraft) Validate() error {
	if d.AccountID == uuid.Nil {
		return shared.Validation("account id is required")
	}
	if !d.Amount.IsPositive() {
		return shared.InvalidAmount("payment amount must be positive")
	}
	if !d.Method.IsValid() {
		return shared.Validation("unsupported payment method: %q", d.Method)
	}
	return ValidateExtra(d.Method, d.Extra)
}

// NewPayment builds the immutable payment for a validated draft
func NewPayment(d PaymentDraft, receiptNumber string) (*Payment, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if receiptNumber == "" {
		return nil, shared.Validation("receipt number is required")
	}
	paidAt := d.PaymentDate
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	return &Payment{
		ID:            uuid.New(),
		ReceiptNumber: receiptNumber,
		AccountID:     d.AccountID,
		InstallmentID: d.InstallmentID,
		ClientID:      d.ClientID,
		RecordedBy:    d.RecordedBy,
		Amount:        d.Amount,
		Method:        d.Method,
		PaymentDate:   paidAt,
		Observations:  d.Observations,
		Extra:         normalizeExtra(d.Extra),
		AttachmentRef: d.AttachmentRef,
		CreatedAt:     time.Now(),
	}, nil
}

// IsDelivery reports whether the payment went to a free-form account
func (p *Payment) IsDelivery() bool {
	return p.InstallmentID == nil
}

// ValidateExtra checks method-specific metadata. Any well-formed JSON is
// accepted, except that check and e_check require an object or nothing.
func ValidateExtra(method PaymentMethod, extra json.RawMessage) error {
	trimmed := bytes.TrimSpace(extra)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if !json.Valid(trimmed) {
		return shared.Validation("extra must be valid JSON")
	}
	if method.RequiresStructuredExtra() && trimmed[0] != '{' {
		return shared.Validation("extra must be an object for %s payments", method)
	}
	return nil
}

func normalizeExtra(extra json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(extra)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return json.RawMessage(trimmed)
}
