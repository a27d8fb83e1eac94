package query

import (
	"context"
	"sync"
	"time"

	"github.com/hindibooks/storefront/internal/api/metrics"
)

// Entry is the last fetched value for a key.
type Entry struct {
	Key        Key
	Value      any
	FetchedAt  time.Time
	StaleAfter time.Duration
}

// Stale reports whether the entry is older than window.
func (e Entry) Stale(now time.Time, window time.Duration) bool {
	return now.Sub(e.FetchedAt) > window
}

// Cache is a request-keyed store of fetched values. Entries are replaced
// wholesale, never mutated in place.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time

	// generations counts invalidations per family. A fetch that started
	// under an older generation must not write its result back.
	generations map[string]uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// NewCache returns an empty cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		entries:     make(map[string]Entry),
		now:         time.Now,
		generations: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the entry for key, fresh or stale.
func (c *Cache) Get(key Key) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key.String()]
	return e, ok
}

// Set stores value under key, stamping it with the current time.
func (c *Cache) Set(key Key, value any, staleAfter time.Duration) Entry {
	e, _ := c.set(key, value, staleAfter, 0, false)
	return e
}

// Generation returns the invalidation counter of family.
func (c *Cache) Generation(family string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generations[family]
}

// SetIfGeneration stores value only if key's family has not been invalidated
// since gen was read. It reports whether the value was stored.
func (c *Cache) SetIfGeneration(key Key, value any, staleAfter time.Duration, gen uint64) bool {
	_, ok := c.set(key, value, staleAfter, gen, true)
	return ok
}

func (c *Cache) set(key Key, value any, staleAfter time.Duration, gen uint64, checkGen bool) (Entry, bool) {
	e := Entry{
		Key:        key,
		Value:      value,
		FetchedAt:  c.now(),
		StaleAfter: staleAfter,
	}

	c.mu.Lock()
	if checkGen && c.generations[key.Family()] != gen {
		c.mu.Unlock()
		return Entry{}, false
	}
	c.entries[key.String()] = e
	n := len(c.entries)
	c.mu.Unlock()

	metrics.CacheEntries.Set(float64(n))
	return e, true
}

// Invalidate removes a single entry and reports whether it existed.
func (c *Cache) Invalidate(key Key) bool {
	c.mu.Lock()
	_, ok := c.entries[key.String()]
	delete(c.entries, key.String())
	c.generations[key.Family()]++
	n := len(c.entries)
	c.mu.Unlock()

	if ok {
		metrics.CacheInvalidationsTotal.WithLabelValues(key.Family()).Inc()
	}
	metrics.CacheEntries.Set(float64(n))
	return ok
}

// InvalidateFamily removes every entry of the given family and returns how
// many were dropped.
func (c *Cache) InvalidateFamily(family string) int {
	c.mu.Lock()
	c.generations[family]++
	removed := 0
	for k, e := range c.entries {
		if e.Key.Family() == family {
			delete(c.entries, k)
			removed++
		}
	}
	n := len(c.entries)
	c.mu.Unlock()

	metrics.CacheInvalidationsTotal.WithLabelValues(family).Add(float64(removed))
	metrics.CacheEntries.Set(float64(n))
	return removed
}

// Prune drops entries that have been stale for longer than retention.
func (c *Cache) Prune(retention time.Duration) int {
	now := c.now()

	c.mu.Lock()
	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.FetchedAt) > e.StaleAfter+retention {
			delete(c.entries, k)
			removed++
		}
	}
	n := len(c.entries)
	c.mu.Unlock()

	metrics.CacheEntries.Set(float64(n))
	return removed
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RunJanitor prunes the cache every interval until ctx is cancelled.
func (c *Cache) RunJanitor(ctx context.Context, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Prune(retention)
		}
	}
}
