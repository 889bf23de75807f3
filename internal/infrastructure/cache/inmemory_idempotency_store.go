package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tourops/backend/internal/domain/shared"
)

// entry is a stored value with its expiration
type entry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e entry[T]) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// expiringMap is a mutex guarded map whose entries lapse after a TTL. A
// background goroutine sweeps expired entries until Close.
type expiringMap[T any] struct {
	mu        sync.RWMutex
	entries   map[string]entry[T]
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	now       func() time.Time
}

func newExpiringMap[T any](sweepEvery time.Duration) *expiringMap[T] {
	m := &expiringMap[T]{
		entries:  make(map[string]entry[T]),
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
	m.wg.Add(1)
	go m.cleanupLoop(sweepEvery)
	return m
}

func (m *expiringMap[T]) get(key string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok || e.expired(m.now()) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// setIfAbsent stores value unless a live entry exists, returning the live one.
func (m *expiringMap[T]) setIfAbsent(key string, value T, ttl time.Duration) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if e, ok := m.entries[key]; ok && !e.expired(now) {
		return e.value, false
	}
	m.entries[key] = entry[T]{value: value, expiresAt: now.Add(ttl)}
	return value, true
}

func (m *expiringMap[T]) set(key string, value T, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry[T]{value: value, expiresAt: m.now().Add(ttl)}
}

func (m *expiringMap[T]) delete(keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
}

func (m *expiringMap[T]) size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *expiringMap[T]) close() {
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.wg.Wait()
	})
}

func (m *expiringMap[T]) cleanupLoop(every time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *expiringMap[T]) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
		}
	}
}

// InMemoryIdempotencyStore implements IdempotencyStore in process memory.
// It is suitable for single-instance deployments and tests; state is not
// shared between API instances.
type InMemoryIdempotencyStore struct {
	records *expiringMap[shared.IdempotencyRecord]
}

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{
		records: newExpiringMap[shared.IdempotencyRecord](5 * time.Minute),
	}
}

// Reserve implements IdempotencyStore
func (s *InMemoryIdempotencyStore) Reserve(
	_ context.Context,
	key, fingerprint string,
	ttl time.Duration,
) (shared.IdempotencyState, *shared.IdempotentResponse, error) {
	existing, stored := s.records.setIfAbsent(key, shared.IdempotencyRecord{Fingerprint: fingerprint}, ttl)
	if stored {
		return shared.IdempotencyReserved, nil, nil
	}
	state, resp := existing.Resolve(fingerprint)
	return state, resp, nil
}

// Complete implements IdempotencyStore
func (s *InMemoryIdempotencyStore) Complete(
	_ context.Context,
	key, fingerprint string,
	resp shared.IdempotentResponse,
	ttl time.Duration,
) error {
	s.records.set(key, shared.IdempotencyRecord{
		Fingerprint: fingerprint,
		Completed:   true,
		Response:    &resp,
	}, ttl)
	return nil
}

// Release implements IdempotencyStore
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.records.delete(key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.records.close()
	return nil
}

// Size returns the number of entries in the store (for testing/monitoring)
func (s *InMemoryIdempotencyStore) Size() int {
	return s.records.size()
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
