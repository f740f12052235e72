// Package cache provides a small in-memory key/value cache with per-instance
// TTL semantics. Each consumer owns its own instance; entries expire lazily
// on read, so no background sweeper is required for correctness.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Cache is the capability a consumer needs from a cache. The in-memory TTL
// implementation below is the only variant today; a persistent-store variant
// can be added without changing call sites.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
}

type entry[V any] struct {
	value     V
	createdAt time.Time
	expiresAt time.Time
}

// Memory is a concurrency-safe TTL cache backed by a map. There is no
// capacity bound beyond TTL expiry: an unbounded key space (e.g. arbitrary
// coordinate pairs) can grow the cache without limit, which is an accepted
// limitation for this service.
type Memory[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	ttl     time.Duration
	clock   clockwork.Clock
}

// NewMemory creates a Memory cache whose entries live for ttl.
func NewMemory[V any](ttl time.Duration, clock clockwork.Clock) *Memory[V] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Memory[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns the value for key if it is still live. An expired entry is
// evicted on read.
func (m *Memory[V]) Get(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !m.clock.Now().Before(e.expiresAt) {
		delete(m.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, overwriting any existing entry and resetting
// its expiry window.
func (m *Memory[V]) Set(key string, value V) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry[V]{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(m.ttl),
	}
}

// ClearExpired removes all expired entries and reports how many were
// evicted. Lazy expiry already keeps reads correct; this only reclaims
// memory for keys that are never read again.
func (m *Memory[V]) ClearExpired() int {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	var evicted int
	for key, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of entries currently held, including any that have
// expired but not yet been evicted.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
