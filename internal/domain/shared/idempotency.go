package shared

import (
	"context"
	"time"
)

// IdempotencyState is the outcome of reserving an idempotency key
type IdempotencyState int

const (
	// IdempotencyReserved means the caller now owns the key and must run the request
	IdempotencyReserved IdempotencyState = iota
	// IdempotencyInFlight means another request with the same key is still running
	IdempotencyInFlight
	// IdempotencyCompleted means a stored response is available for replay
	IdempotencyCompleted
	// IdempotencyMismatch means the key was used with a different request body
	IdempotencyMismatch
)

// String returns the state name used in logs
func (s IdempotencyState) String() string {
	switch s {
	case IdempotencyReserved:
		return "reserved"
	case IdempotencyInFlight:
		return "in_flight"
	case IdempotencyCompleted:
		return "completed"
	case IdempotencyMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// IdempotentResponse is the response captured for a completed request
type IdempotentResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyRecord is what a store keeps under a key
type IdempotencyRecord struct {
	Fingerprint string              `json:"fingerprint"`
	Completed   bool                `json:"completed"`
	Response    *IdempotentResponse `json:"response,omitempty"`
}

// Resolve classifies a record found under a key for a request with the
// given fingerprint.
func (r IdempotencyRecord) Resolve(fingerprint string) (IdempotencyState, *IdempotentResponse) {
	switch {
	case r.Fingerprint != fingerprint:
		return IdempotencyMismatch, nil
	case !r.Completed:
		return IdempotencyInFlight, nil
	default:
		return IdempotencyCompleted, r.Response
	}
}

// IdempotencyStore remembers the outcome of mutating requests keyed by the
// client supplied Idempotency-Key.
type IdempotencyStore interface {
	// Reserve atomically claims key for a request with fingerprint. When the
	// key already exists the existing record is classified instead.
	Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (IdempotencyState, *IdempotentResponse, error)

	// Complete stores the final response under key
	Complete(ctx context.Context, key, fingerprint string, resp IdempotentResponse, ttl time.Duration) error

	// Release drops a reservation so the request can be retried
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a completed response is replayed. Default: 24 hours
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
