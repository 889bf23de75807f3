package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tourops/backend/internal/domain/shared"
)

const defaultIdempotencyPrefix = "ledger:idempotency:"

// RedisIdempotencyStore implements IdempotencyStore using Redis.
// It is suitable for deployments where several API instances share
// Idempotency-Key state.
type RedisIdempotencyStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisIdempotencyStore creates a store on an existing client. The client
// is owned by the caller and is not closed by Close.
func NewRedisIdempotencyStore(client redis.UniversalClient, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultIdempotencyPrefix
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Reserve claims key with SETNX. If the key exists its record is classified
// against fingerprint.
func (s *RedisIdempotencyStore) Reserve(
	ctx context.Context,
	key, fingerprint string,
	ttl time.Duration,
) (shared.IdempotencyState, *shared.IdempotentResponse, error) {
	pending, err := json.Marshal(shared.IdempotencyRecord{Fingerprint: fingerprint})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode idempotency record: %w", err)
	}

	// A record can expire between SETNX and GET; one retry covers that window.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, s.keyPrefix+key, pending, ttl).Result()
		if err != nil {
			return 0, nil, fmt.Errorf("failed to reserve idempotency key: %w", err)
		}
		if ok {
			return shared.IdempotencyReserved, nil, nil
		}

		raw, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return 0, nil, fmt.Errorf("failed to read idempotency key: %w", err)
		}

		var record shared.IdempotencyRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return 0, nil, fmt.Errorf("failed to decode idempotency record: %w", err)
		}
		state, resp := record.Resolve(fingerprint)
		return state, resp, nil
	}
	return shared.IdempotencyInFlight, nil, nil
}

// Complete overwrites the reservation with the final response
func (s *RedisIdempotencyStore) Complete(
	ctx context.Context,
	key, fingerprint string,
	resp shared.IdempotentResponse,
	ttl time.Duration,
) error {
	raw, err := json.Marshal(shared.IdempotencyRecord{
		Fingerprint: fingerprint,
		Completed:   true,
		Response:    &resp,
	})
	if err != nil {
		return fmt.Errorf("failed to encode idempotency record: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotent response: %w", err)
	}
	return nil
}

// Release deletes the key
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

// Close is a no-op; the shared client is closed by its owner
func (s *RedisIdempotencyStore) Close() error {
	return nil
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
