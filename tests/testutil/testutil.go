// Package testutil holds fixtures and assertions shared by the ledger's
// integration tests: decimal and date literals, stable ids, polling helpers
// and a recording event handler.
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// NewTestUUID derives a stable UUID from seed
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(testNamespace, []byte(seed))
}

// TestUserID is the recorder used by tests that do not care who paid
func TestUserID() uuid.UUID {
	return NewTestUUID("test-user")
}

// Dec parses a decimal literal and panics on malformed input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Date returns midnight UTC of the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AssertDecimal compares by value, so "40" equals "40.00"
func AssertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) bool {
	t.Helper()
	if Dec(want).Equal(got) {
		return true
	}
	return assert.Fail(t, "decimal mismatch: want "+want+", got "+got.String(), msgAndArgs...)
}

// poll reports whether condition held before timeout
func poll(condition func() bool, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if condition() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}

// RequireEventually stops the test unless condition holds within timeout
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()
	if !poll(condition, timeout, interval) {
		require.Fail(t, "condition not met within "+timeout.String(), msgAndArgs...)
	}
}

// AssertNever fails if condition becomes true at any point during d
func AssertNever(t *testing.T, condition func() bool, d, interval time.Duration, msgAndArgs ...any) bool {
	t.Helper()
	if poll(condition, d, interval) {
		return assert.Fail(t, "condition unexpectedly became true", msgAndArgs...)
	}
	return true
}
