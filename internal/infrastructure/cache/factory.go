package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appledger "github.com/tourops/backend/internal/application/ledger"
	"github.com/tourops/backend/internal/domain/shared"
	"github.com/tourops/backend/internal/infrastructure/config"
)

// Factory creates the ledger caches based on configuration. When Redis is
// disabled or unreachable it falls back to in-process implementations.
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	pingTimeout           time.Duration

	client redis.UniversalClient
	owned  bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when
// Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// WithClient injects an existing Redis client, bypassing connection setup
func WithClient(client redis.UniversalClient) FactoryOption {
	return func(f *Factory) {
		f.client = client
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		pingTimeout:           5 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// redisClient connects once and reuses the client for every store
func (f *Factory) redisClient() (redis.UniversalClient, error) {
	if f.client != nil {
		return f.client, nil
	}
	if !f.redisConfig.Enabled {
		return nil, fmt.Errorf("redis is disabled")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), f.pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	f.client = client
	f.owned = true
	return client, nil
}

func (f *Factory) fallback(what string, err error) error {
	if !f.allowInMemoryFallback {
		return fmt.Errorf("Redis required for %s but unavailable: %w", what, err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory "+what+". "+
		"State is not shared between API instances.",
		zap.Error(err),
	)
	return nil
}

// CreateIdempotencyStore returns a Redis store, or an in-memory store when
// fallback is allowed.
func (f *Factory) CreateIdempotencyStore() (shared.IdempotencyStore, error) {
	client, err := f.redisClient()
	if err == nil {
		f.logger.Info("using Redis idempotency store")
		return NewRedisIdempotencyStore(client, ""), nil
	}
	if ferr := f.fallback("idempotency store", err); ferr != nil {
		return nil, ferr
	}
	return NewInMemoryIdempotencyStore(), nil
}

// CreateSummaryCache returns a Redis summary cache, or an in-memory one when
// fallback is allowed.
func (f *Factory) CreateSummaryCache(ttl time.Duration) (appledger.SummaryCache, error) {
	client, err := f.redisClient()
	if err == nil {
		f.logger.Info("using Redis summary cache", zap.Duration("ttl", ttl))
		return NewRedisSummaryCache(client, ttl), nil
	}
	if ferr := f.fallback("summary cache", err); ferr != nil {
		return nil, ferr
	}
	return NewInMemorySummaryCache(ttl), nil
}

// Ping checks the Redis connection. It succeeds when the factory runs on
// the in-memory fallback.
func (f *Factory) Ping(ctx context.Context) error {
	if f.client == nil {
		return nil
	}
	return f.client.Ping(ctx).Err()
}

// Close closes the Redis client if the factory opened one
func (f *Factory) Close() error {
	if f.client == nil || !f.owned {
		return nil
	}
	return f.client.Close()
}
