package ledger

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourops/backend/internal/domain/shared"
)

func TestFormatReceiptNumber(t *testing.T) {
	assert.Equal(t, "REC-000001", FormatReceiptNumber(1))
	assert.Equal(t, "REC-000123", FormatReceiptNumber(123))
	assert.Equal(t, "REC-1234567", FormatReceiptNumber(1234567))
}

func TestPaymentMethod(t *testing.T) {
	for _, m := range AllPaymentMethods() {
		assert.True(t, m.IsValid(), m)
	}
	assert.False(t, PaymentMethod("bitcoin").IsValid())
	assert.True(t, PaymentMethodCheck.RequiresStructuredExtra())
	assert.True(t, PaymentMethodECheck.RequiresStructuredExtra())
	assert.False(t, PaymentMethodCash.RequiresStructuredExtra())
}

func TestValidateExtra(t *testing.T) {
	tests := []struct {
		name    string
		method  PaymentMethod
		extra   string
		wantErr bool
	}{
		{"check with object", PaymentMethodCheck, `{"number":"0001234","bank":"Galicia"}`, false},
		{"check without extra", PaymentMethodCheck, ``, false},
		{"check with null", PaymentMethodECheck, `null`, false},
		{"check with array", PaymentMethodCheck, `["0001234"]`, true},
		{"e_check with string", PaymentMethodECheck, `"0001234"`, true},
		{"cash with scalar", PaymentMethodCash, `42`, false},
		{"malformed json", PaymentMethodCash, `{"number":`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExtra(tt.method, json.RawMessage(tt.extra))
			if tt.wantErr {
				assert.True(t, errors.Is(err, shared.ErrValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewPayment(t *testing.T) {
	installmentID := uuid.New()
	draft := PaymentDraft{
		AccountID:     uuid.New(),
		InstallmentID: &installmentID,
		ClientID:      uuid.New(),
		RecordedBy:    uuid.New(),
		Amount:        decimal.NewFromInt(250),
		Method:        PaymentMethodCheck,
		Extra:         json.RawMessage(` {"number":"77"} `),
	}

	p, err := NewPayment(draft, FormatReceiptNumber(7))
	require.NoError(t, err)
	assert.Equal(t, "REC-000007", p.ReceiptNumber)
	assert.JSONEq(t, `{"number":"77"}`, string(p.Extra))
	assert.False(t, p.IsDelivery())
	assert.False(t, p.PaymentDate.IsZero())

	t.Run("rejects unknown method", func(t *testing.T) {
		bad := draft
		bad.Method = "barter"
		_, err := NewPayment(bad, "REC-000008")
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		bad := draft
		bad.Amount = decimal.Zero
		_, err := NewPayment(bad, "REC-000008")
		assert.True(t, errors.Is(err, shared.ErrInvalidAmount))
	})
}
