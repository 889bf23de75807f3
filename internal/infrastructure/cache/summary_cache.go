package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	appledger "github.com/tourops/backend/internal/application/ledger"
	"github.com/tourops/backend/internal/domain/ledger"
)

const (
	defaultSummaryPrefix = "ledger:summary:"
	defaultSummaryTTL    = 30 * time.Second
)

// RedisSummaryCache stores account summaries as JSON with a short TTL. The
// TTL bounds staleness of the overdue counter, which changes with the clock
// and not only with writes.
type RedisSummaryCache struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewRedisSummaryCache creates a summary cache on an existing client
func NewRedisSummaryCache(client redis.UniversalClient, ttl time.Duration) *RedisSummaryCache {
	if ttl <= 0 {
		ttl = defaultSummaryTTL
	}
	return &RedisSummaryCache{
		client:    client,
		keyPrefix: defaultSummaryPrefix,
		ttl:       ttl,
	}
}

func (c *RedisSummaryCache) key(accountID uuid.UUID) string {
	return c.keyPrefix + accountID.String()
}

// Get returns the cached summary, or ok=false on a miss
func (c *RedisSummaryCache) Get(ctx context.Context, accountID uuid.UUID) (*ledger.AccountSummary, bool, error) {
	raw, err := c.client.Get(ctx, c.key(accountID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached summary: %w", err)
	}

	var summary ledger.AccountSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		// A corrupt entry is a miss; the next Set replaces it.
		return nil, false, nil
	}
	return &summary, true, nil
}

// Set stores summary under its account id
func (c *RedisSummaryCache) Set(ctx context.Context, summary *ledger.AccountSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := c.client.Set(ctx, c.key(summary.AccountID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}
	return nil
}

// Invalidate drops the summaries of the given accounts
func (c *RedisSummaryCache) Invalidate(ctx context.Context, accountIDs ...uuid.UUID) error {
	if len(accountIDs) == 0 {
		return nil
	}
	keys := make([]string, len(accountIDs))
	for i, id := range accountIDs {
		keys[i] = c.key(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate summaries: %w", err)
	}
	return nil
}

// InMemorySummaryCache is the single-instance fallback of RedisSummaryCache
type InMemorySummaryCache struct {
	summaries *expiringMap[ledger.AccountSummary]
	ttl       time.Duration
}

// NewInMemorySummaryCache creates an in-memory summary cache
func NewInMemorySummaryCache(ttl time.Duration) *InMemorySummaryCache {
	if ttl <= 0 {
		ttl = defaultSummaryTTL
	}
	return &InMemorySummaryCache{
		summaries: newExpiringMap[ledger.AccountSummary](time.Minute),
		ttl:       ttl,
	}
}

// Get implements SummaryCache
func (c *InMemorySummaryCache) Get(_ context.Context, accountID uuid.UUID) (*ledger.AccountSummary, bool, error) {
	summary, ok := c.summaries.get(accountID.String())
	if !ok {
		return nil, false, nil
	}
	return &summary, true, nil
}

// Set implements SummaryCache. The summary is copied.
func (c *InMemorySummaryCache) Set(_ context.Context, summary *ledger.AccountSummary) error {
	c.summaries.set(summary.AccountID.String(), *summary, c.ttl)
	return nil
}

// Invalidate implements SummaryCache
func (c *InMemorySummaryCache) Invalidate(_ context.Context, accountIDs ...uuid.UUID) error {
	keys := make([]string, len(accountIDs))
	for i, id := range accountIDs {
		keys[i] = id.String()
	}
	c.summaries.delete(keys...)
	return nil
}

// Close stops the background sweep
func (c *InMemorySummaryCache) Close() error {
	c.summaries.close()
	return nil
}

var (
	_ appledger.SummaryCache = (*RedisSummaryCache)(nil)
	_ appledger.SummaryCache = (*InMemorySummaryCache)(nil)
)
