package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/alexph/woocommerce-crowdstream/internal/domain/tracking"
	"github.com/redis/go-redis/v9"
)

// trackedKeyPrefix namespaces the per-order tracked flags in Redis.
const trackedKeyPrefix = "order:tracked:"

// RedisTrackedFlagStore implements TrackedFlagStore using Redis. This is
// suitable for deployments where multiple instances render storefront pages
// and need to share which orders were already tracked.
type RedisTrackedFlagStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisTrackedFlagStore creates a new Redis-based tracked flag store.
// A zero ttl keeps flags until evicted by Redis itself.
func NewRedisTrackedFlagStore(cfg RedisConfig, ttl time.Duration) (*RedisTrackedFlagStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisTrackedFlagStore{
		client:    client,
		keyPrefix: trackedKeyPrefix,
		ttl:       ttl,
	}, nil
}

// NewRedisTrackedFlagStoreWithClient creates a store with an existing Redis
// client. This is useful for testing or when sharing a client across
// components.
func NewRedisTrackedFlagStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisTrackedFlagStore {
	if keyPrefix == "" {
		keyPrefix = trackedKeyPrefix
	}
	return &RedisTrackedFlagStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// MarkTracked records the order as tracked.
// Returns true if the order was newly marked, false if it was already marked.
// Uses SETNX (SET if Not eXists) for atomic operation.
func (s *RedisTrackedFlagStore) MarkTracked(ctx context.Context, orderID string) (bool, error) {
	key := s.keyPrefix + orderID

	result, err := s.client.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark order as tracked: %w", err)
	}

	return result, nil
}

// IsTracked reports whether the order is known to be tracked.
func (s *RedisTrackedFlagStore) IsTracked(ctx context.Context, orderID string) (bool, error) {
	key := s.keyPrefix + orderID

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if order is tracked: %w", err)
	}

	return exists > 0, nil
}

// Close closes the Redis client
func (s *RedisTrackedFlagStore) Close() error {
	return s.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (s *RedisTrackedFlagStore) GetClient() *redis.Client {
	return s.client
}

// Ensure RedisTrackedFlagStore implements TrackedFlagStore
var _ tracking.TrackedFlagStore = (*RedisTrackedFlagStore)(nil)
