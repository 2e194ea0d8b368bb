// Package cache provides a keyed TTL cache with combined
// recency/frequency eviction.
//
// Entries age from creation: a hit increments the entry's hit count but
// never refreshes its creation time, so even a constantly-reused entry
// expires on schedule and forces a periodic re-resolution. A read of an
// expired entry is a miss and purges the entry.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Default configuration constants.
const (
	// DefaultCapacity is the default maximum number of entries.
	DefaultCapacity = 256

	// DefaultTTL is the default entry lifetime.
	DefaultTTL = 30 * time.Second

	// ageWeight scales an entry's age (in seconds) against its hit count
	// in the eviction score: score = hitCount - ageWeight*ageSeconds.
	// The entry with the lowest score is evicted first.
	ageWeight = 10.0
)

// Option configures a Cache.
type Option func(*config)

type config struct {
	now func() time.Time
}

// WithClock replaces the cache's time source. Tests use it to step
// through TTL expiry without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// entry holds one cached value with its bookkeeping.
type entry[V any] struct {
	value     V
	createdAt time.Time
	hitCount  int
}

// Cache is a string-keyed TTL cache. All reads and writes are serialized
// through a single mutex: the cache is the only state shared between
// concurrent resolution requests, and one synchronization point keeps the
// invariants easy to reason about. Nothing inside the cache ever calls
// out, so the lock is never held across external latency.
//
// Cache is safe for concurrent use.
type Cache[V any] struct {
	mu       sync.Mutex
	entries  map[string]*entry[V]
	capacity int
	ttl      time.Duration
	now      func() time.Time

	// Statistics (atomic for lock-free reads)
	hits        atomic.Uint64
	misses      atomic.Uint64
	evictions   atomic.Uint64
	expirations atomic.Uint64
}

// New creates a cache with the given capacity and TTL.
// Non-positive capacity or TTL select the defaults.
func New[V any](capacity int, ttl time.Duration, opts ...Option) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cfg := config{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Cache[V]{
		entries:  make(map[string]*entry[V]),
		capacity: capacity,
		ttl:      ttl,
		now:      cfg.now,
	}
}

// Get retrieves a cached value. A present entry older than the TTL is
// purged and reported as a miss. A hit increments the entry's hit count
// without refreshing its creation time.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	if c.now().Sub(e.createdAt) > c.ttl {
		delete(c.entries, key)
		c.expirations.Add(1)
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	e.hitCount++
	c.hits.Add(1)
	return e.value, true
}

// Store inserts a value with a fresh creation time and zero hit count.
// Storing over an existing key replaces the entry outright. At capacity,
// the entry with the lowest score (hitCount - 10*ageSeconds) is evicted
// first; expired entries encountered during the scan are purged as well.
func (c *Cache[V]) Store(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.capacity {
		c.evictLowest(now)
	}
	c.entries[key] = &entry[V]{value: value, createdAt: now}
}

// evictLowest removes expired entries and, if still at capacity, the
// single entry with the lowest eviction score. Called with c.mu held.
func (c *Cache[V]) evictLowest(now time.Time) {
	for key, e := range c.entries {
		if now.Sub(e.createdAt) > c.ttl {
			delete(c.entries, key)
			c.expirations.Add(1)
		}
	}
	if len(c.entries) < c.capacity {
		return
	}
	var (
		worstKey   string
		worstScore float64
		first      = true
	)
	for key, e := range c.entries {
		score := float64(e.hitCount) - ageWeight*now.Sub(e.createdAt).Seconds()
		if first || score < worstScore {
			worstKey = key
			worstScore = score
			first = false
		}
	}
	if !first {
		delete(c.entries, worstKey)
		c.evictions.Add(1)
	}
}

// Delete removes an entry. Returns true if the entry was present.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[V])
}

// Len returns the current number of entries, including any not yet
// purged expired ones.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the maximum number of entries.
func (c *Cache[V]) Capacity() int { return c.capacity }

// TTL returns the entry lifetime.
func (c *Cache[V]) TTL() time.Duration { return c.ttl }

// Stats holds point-in-time cache statistics.
type Stats struct {
	Len         int
	Capacity    int
	Hits        uint64
	Misses      uint64
	HitRate     float64
	Evictions   uint64
	Expirations uint64
}

// Stats returns current cache statistics.
func (c *Cache[V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Len:         c.Len(),
		Capacity:    c.capacity,
		Hits:        hits,
		Misses:      misses,
		HitRate:     hitRate,
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
	}
}

// ResetStats resets all statistics counters to zero.
func (c *Cache[V]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
	c.expirations.Store(0)
}
