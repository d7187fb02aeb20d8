package cache

import (
	"fmt"
	"time"

	"github.com/alexph/woocommerce-crowdstream/internal/domain/tracking"
	"github.com/alexph/woocommerce-crowdstream/internal/infrastructure/config"
	"go.uber.org/zap"
)

// TrackedFlagStoreFactory creates tracked flag stores based on configuration
type TrackedFlagStoreFactory struct {
	redisConfig      config.RedisConfig
	logger           *zap.Logger
	ttl              time.Duration
	allowMemFallback bool
}

// TrackedFlagStoreFactoryOption is a functional option for configuring the factory
type TrackedFlagStoreFactoryOption func(*TrackedFlagStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) TrackedFlagStoreFactoryOption {
	return func(f *TrackedFlagStoreFactory) {
		f.logger = logger
	}
}

// WithTTL sets how long marked flags are retained before the durable order
// meta must be re-read. Zero keeps flags indefinitely.
func WithTTL(ttl time.Duration) TrackedFlagStoreFactoryOption {
	return func(f *TrackedFlagStoreFactory) {
		f.ttl = ttl
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store
// when Redis is unavailable. Default is true (allow fallback).
func WithInMemoryFallback(allow bool) TrackedFlagStoreFactoryOption {
	return func(f *TrackedFlagStoreFactory) {
		f.allowMemFallback = allow
	}
}

// NewTrackedFlagStoreFactory creates a new factory
func NewTrackedFlagStoreFactory(cfg config.RedisConfig, opts ...TrackedFlagStoreFactoryOption) *TrackedFlagStoreFactory {
	f := &TrackedFlagStoreFactory{
		redisConfig:      cfg,
		logger:           zap.NewNop(),
		ttl:              24 * time.Hour,
		allowMemFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-based tracked flag store
func (f *TrackedFlagStoreFactory) CreateRedisStore() (tracking.TrackedFlagStore, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	store, err := NewRedisTrackedFlagStore(redisCfg, f.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis tracked flag store: %w", err)
	}

	return store, nil
}

// CreateInMemoryStore creates an in-memory tracked flag store.
// In-memory stores do not share state across process instances; with multiple
// instances the durable order meta still prevents duplicate checkout events.
func (f *TrackedFlagStoreFactory) CreateInMemoryStore() tracking.TrackedFlagStore {
	return NewInMemoryTrackedFlagStore(f.ttl)
}

// CreateStore creates a tracked flag store for the configured backend.
// The "redis" backend falls back to in-memory when Redis is unavailable and
// fallback is allowed.
func (f *TrackedFlagStoreFactory) CreateStore(backend string) (tracking.TrackedFlagStore, error) {
	if backend != "redis" {
		return f.CreateInMemoryStore(), nil
	}

	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("using Redis tracked flag store")
		return store, nil
	}

	if !f.allowMemFallback {
		return nil, fmt.Errorf("Redis required for tracked flags but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory tracked flag store",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}
