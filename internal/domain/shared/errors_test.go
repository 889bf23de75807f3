package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NotFound("account", "a-1")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))

	wrapped := fmt.Errorf("loading: %w", InvalidAmount("amount %s exceeds outstanding", "10"))
	assert.True(t, errors.Is(wrapped, ErrInvalidAmount))
	assert.Equal(t, CodeInvalidAmount, CodeOf(wrapped))
}

func TestLedgerFailure(t *testing.T) {
	t.Run("wraps driver errors", func(t *testing.T) {
		cause := errors.New("lock timeout")
		err := LedgerFailure(cause)
		assert.True(t, errors.Is(err, ErrLedgerFailure))
		assert.True(t, errors.Is(err, cause))
		assert.Equal(t, "ledger operation failed", err.Error())
	})

	t.Run("passes domain errors through", func(t *testing.T) {
		orig := Conflict("installment already paid")
		assert.Same(t, orig, LedgerFailure(orig))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, LedgerFailure(nil))
	})
}
