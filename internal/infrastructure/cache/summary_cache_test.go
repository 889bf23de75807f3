package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourops/backend/internal/domain/ledger"
)

func sampleSummary() *ledger.AccountSummary {
	return &ledger.AccountSummary{
		AccountID:        uuid.New(),
		TotalAmount:      decimal.RequireFromString("1200.00"),
		AmountPaid:       decimal.RequireFromString("300.00"),
		BalanceDue:       decimal.RequireFromString("900.00"),
		InstallmentCount: 4,
		PaidCount:        1,
		PendingCount:     3,
		OverdueCount:     1,
		PercentPaid:      decimal.RequireFromString("25"),
	}
}

func TestInMemorySummaryCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemorySummaryCache(time.Minute)
	defer c.Close()

	summary := sampleSummary()

	_, ok, err := c.Get(ctx, summary.AccountID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, summary))
	got, ok, err := c.Get(ctx, summary.AccountID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, summary.BalanceDue.Equal(got.BalanceDue))
	assert.Equal(t, 1, got.OverdueCount)

	// mutation of the caller's value does not leak into the cache
	summary.PaidCount = 99
	got, _, _ = c.Get(ctx, summary.AccountID)
	assert.Equal(t, 1, got.PaidCount)

	other := sampleSummary()
	require.NoError(t, c.Set(ctx, other))
	require.NoError(t, c.Invalidate(ctx, summary.AccountID, other.AccountID))
	_, ok, _ = c.Get(ctx, other.AccountID)
	assert.False(t, ok)
}

func TestInMemorySummaryCache_TTL(t *testing.T) {
	ctx := context.Background()
	c := NewInMemorySummaryCache(10 * time.Millisecond)
	defer c.Close()

	summary := sampleSummary()
	require.NoError(t, c.Set(ctx, summary))
	time.Sleep(20 * time.Millisecond)

	_, ok, err := c.Get(ctx, summary.AccountID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("POST"), []byte("/installments/1/pay"), []byte(`{"amount":"100"}`))
	b := Fingerprint([]byte("POST"), []byte("/installments/1/pay"), []byte(`{"amount":"100"}`))
	c := Fingerprint([]byte("POST"), []byte("/installments/1/pay"), []byte(`{"amount":"101"}`))

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, Fingerprint([]byte("ab"), []byte("c")), Fingerprint([]byte("a"), []byte("bc")))
}
