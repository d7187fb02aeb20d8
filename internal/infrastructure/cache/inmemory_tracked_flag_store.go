package cache

import (
	"context"
	"sync"
	"time"

	"github.com/alexph/woocommerce-crowdstream/internal/domain/tracking"
)

// entry represents a marked order with optional expiration
type entry struct {
	expiresAt time.Time
}

// expired reports whether the entry's TTL has passed. Zero expiresAt means
// the entry never expires.
func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// InMemoryTrackedFlagStore implements TrackedFlagStore using an in-memory map.
// This is suitable for single-instance deployments and testing. An expired or
// evicted entry only costs a re-read of the durable order meta.
type InMemoryTrackedFlagStore struct {
	mu        sync.RWMutex
	entries   map[string]entry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryTrackedFlagStore creates a new in-memory tracked flag store.
// A zero ttl keeps entries until the process exits. With a positive ttl a
// background goroutine cleans up expired entries.
func NewInMemoryTrackedFlagStore(ttl time.Duration) *InMemoryTrackedFlagStore {
	store := &InMemoryTrackedFlagStore{
		entries:  make(map[string]entry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	if ttl > 0 {
		store.wg.Add(1)
		go store.cleanupLoop()
	}

	return store
}

// MarkTracked records the order as tracked.
// Returns true if the order was newly marked, false if it was already marked.
func (s *InMemoryTrackedFlagStore) MarkTracked(ctx context.Context, orderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if e, exists := s.entries[orderID]; exists && !e.expired(now) {
		return false, nil // Already marked
	}

	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = now.Add(s.ttl)
	}
	s.entries[orderID] = entry{expiresAt: expiresAt}

	return true, nil
}

// IsTracked reports whether the order is known to be tracked.
func (s *InMemoryTrackedFlagStore) IsTracked(ctx context.Context, orderID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[orderID]
	if !exists {
		return false, nil
	}
	if e.expired(time.Now()) {
		return false, nil // Expired, the durable meta is re-read
	}

	return true, nil
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times.
func (s *InMemoryTrackedFlagStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (s *InMemoryTrackedFlagStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired entries from the store
func (s *InMemoryTrackedFlagStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for orderID, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, orderID)
		}
	}
}

// Size returns the number of entries in the store (for testing/monitoring)
func (s *InMemoryTrackedFlagStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure InMemoryTrackedFlagStore implements TrackedFlagStore
var _ tracking.TrackedFlagStore = (*InMemoryTrackedFlagStore)(nil)
