package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCache() (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	return NewCache(WithClock(clock.Now)), clock
}

func countingFetcher(value string, calls *int) Fetcher[string] {
	return func(context.Context) (string, error) {
		*calls++
		return value, nil
	}
}

func TestFetch_FreshEntryServedWithoutNetwork(t *testing.T) {
	c, clock := newTestCache()
	key := NewKey("books", "categories", nil)
	calls := 0

	v, err := Fetch(context.Background(), c, key, time.Minute, countingFetcher("first", &calls))
	require.NoError(t, err)
	assert.Equal(t, "first", v)

	clock.Advance(59 * time.Second)
	v, err = Fetch(context.Background(), c, key, time.Minute, countingFetcher("second", &calls))
	require.NoError(t, err)
	assert.Equal(t, "first", v)
	assert.Equal(t, 1, calls)
}

func TestFetch_StaleEntryRefetched(t *testing.T) {
	c, clock := newTestCache()
	key := NewKey("cart", "items", nil)
	calls := 0

	_, err := Fetch(context.Background(), c, key, 30*time.Second, countingFetcher("old", &calls))
	require.NoError(t, err)

	clock.Advance(31 * time.Second)
	v, err := Fetch(context.Background(), c, key, 30*time.Second, countingFetcher("new", &calls))
	require.NoError(t, err)
	assert.Equal(t, "new", v)
	assert.Equal(t, 2, calls)

	e, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, clock.Now(), e.FetchedAt)
}

func TestFetch_ZeroWindowAlwaysRefetchesAfterTimePasses(t *testing.T) {
	c, clock := newTestCache()
	key := NewKey("books", "detail", map[string]string{"id": "1"})
	calls := 0

	_, _ = Fetch(context.Background(), c, key, 0, countingFetcher("a", &calls))
	clock.Advance(time.Millisecond)
	_, _ = Fetch(context.Background(), c, key, 0, countingFetcher("b", &calls))

	assert.Equal(t, 2, calls)
}

func TestFetch_ErrorLeavesEntryUntouched(t *testing.T) {
	c, clock := newTestCache()
	key := NewKey("books", "list", nil)
	calls := 0

	_, err := Fetch(context.Background(), c, key, time.Minute, countingFetcher("kept", &calls))
	require.NoError(t, err)
	before, _ := c.Get(key)

	clock.Advance(2 * time.Minute)
	boom := errors.New("boom")
	_, err = Fetch(context.Background(), c, key, time.Minute, func(context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)

	after, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestFetch_MissingKeyAlwaysFetches(t *testing.T) {
	c, _ := newTestCache()
	calls := 0

	_, _ = Fetch(context.Background(), c, NewKey("books", "list", map[string]string{"page": "1"}), time.Hour, countingFetcher("p1", &calls))
	_, _ = Fetch(context.Background(), c, NewKey("books", "list", map[string]string{"page": "2"}), time.Hour, countingFetcher("p2", &calls))

	assert.Equal(t, 2, calls)
}

func TestCache_InvalidateForcesRefetch(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("cart", "items", nil)
	calls := 0

	_, _ = Fetch(context.Background(), c, key, time.Hour, countingFetcher("x", &calls))
	assert.True(t, c.Invalidate(key))
	assert.False(t, c.Invalidate(key))

	_, _ = Fetch(context.Background(), c, key, time.Hour, countingFetcher("y", &calls))
	assert.Equal(t, 2, calls)
}

func TestCache_InvalidateFamily(t *testing.T) {
	c, _ := newTestCache()
	c.Set(NewKey("cart", "items", nil), 1, time.Hour)
	c.Set(NewKey("cart", "count", nil), 2, time.Hour)
	c.Set(NewKey("books", "list", nil), 3, time.Hour)

	removed := c.InvalidateFamily("cart")

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get(NewKey("books", "list", nil))
	assert.True(t, ok)
}

func TestCache_Prune(t *testing.T) {
	c, clock := newTestCache()
	c.Set(NewKey("cart", "items", nil), 1, 30*time.Second)
	c.Set(NewKey("books", "list", nil), 2, 10*time.Minute)

	clock.Advance(6 * time.Minute)
	removed := c.Prune(5 * time.Minute)

	assert.Equal(t, 1, removed)
	_, ok := c.Get(NewKey("books", "list", nil))
	assert.True(t, ok)
}

func TestCache_RunJanitorStopsOnCancel(t *testing.T) {
	c := NewCache()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.RunJanitor(ctx, time.Millisecond, time.Minute)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestFetch_InvalidationDuringFetchIsNotOverwritten(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("cart", "items", nil)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan string)
	go func() {
		v, _ := Fetch(context.Background(), c, key, 30*time.Second, func(context.Context) (string, error) {
			close(started)
			<-release
			return "before add", nil
		})
		done <- v
	}()

	<-started
	c.InvalidateFamily("cart")
	close(release)
	assert.Equal(t, "before add", <-done, "overtaken fetch still returns its value")

	_, ok := c.Get(key)
	assert.False(t, ok, "overtaken fetch must not repopulate the cache")

	calls := 0
	v, err := Fetch(context.Background(), c, key, 30*time.Second, countingFetcher("after add", &calls))
	require.NoError(t, err)
	assert.Equal(t, "after add", v)
	assert.Equal(t, 1, calls)
}

func TestFetch_OtherFamilyInvalidationKeepsResult(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("books", "categories", nil)

	_, err := Fetch(context.Background(), c, key, time.Minute, func(context.Context) (string, error) {
		c.InvalidateFamily("cart")
		return "kept", nil
	})
	require.NoError(t, err)

	_, ok := c.Get(key)
	assert.True(t, ok)
}

func TestFetch_FreshnessUsesCallerWindow(t *testing.T) {
	c, clock := newTestCache()
	key := NewKey("books", "list", map[string]string{"page": "1", "per_page": "8"})
	calls := 0

	_, err := Fetch(context.Background(), c, key, 10*time.Minute, countingFetcher("featured", &calls))
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	_, err = Fetch(context.Background(), c, key, 10*time.Minute, countingFetcher("featured", &calls))
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "still fresh for the 10m reader")

	v, err := Fetch(context.Background(), c, key, 5*time.Minute, countingFetcher("list", &calls))
	require.NoError(t, err)
	assert.Equal(t, "list", v)
	assert.Equal(t, 2, calls, "stale for the 5m reader")
}
