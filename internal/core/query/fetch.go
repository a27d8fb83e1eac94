package query

import (
	"context"
	"time"

	"github.com/hindibooks/storefront/internal/api/metrics"
)

// Fetcher loads the value for one key from the backend.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Fetch serves key from c while its entry is younger than staleAfter. A
// missing or stale entry is refetched synchronously and replaced. Freshness
// is judged by the caller's window, not the one the entry was stored with.
// A failed fetch returns the error and leaves the cache untouched, and a
// fetch overtaken by an invalidation of its family is returned but not
// stored.
func Fetch[T any](ctx context.Context, c *Cache, key Key, staleAfter time.Duration, fetch Fetcher[T]) (T, error) {
	result := "miss"
	if e, ok := c.Get(key); ok {
		if v, typed := e.Value.(T); typed && !e.Stale(c.now(), staleAfter) {
			metrics.CacheLookupsTotal.WithLabelValues(key.Family(), "hit").Inc()
			return v, nil
		}
		result = "stale"
	}
	metrics.CacheLookupsTotal.WithLabelValues(key.Family(), result).Inc()

	gen := c.Generation(key.Family())
	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.SetIfGeneration(key, v, staleAfter, gen)
	return v, nil
}
