package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCache[T any](t *testing.T, kind Kind, durable DurableStore) (*Cache[T], *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	c := New[T](kind, durable, zerolog.Nop()).WithClock(clock.Now)
	return c, clock
}

func TestCacheTTLBoundary(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		advance func(ttl time.Duration) time.Duration
		wantHit bool
	}{
		{
			name:    "fresh just under TTL",
			kind:    KindDictionary,
			advance: func(ttl time.Duration) time.Duration { return ttl - time.Second },
			wantHit: true,
		},
		{
			name:    "stale exactly at TTL",
			kind:    KindDictionary,
			advance: func(ttl time.Duration) time.Duration { return ttl },
			wantHit: false,
		},
		{
			name:    "stale just over TTL",
			kind:    KindStats,
			advance: func(ttl time.Duration) time.Duration { return ttl + time.Second },
			wantHit: false,
		},
		{
			name:    "settings window is 30 minutes",
			kind:    KindSettings,
			advance: func(time.Duration) time.Duration { return 29 * time.Minute },
			wantHit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, clock := newTestCache[string](t, tt.kind, nil)
			c.Put("k", "v")
			clock.Advance(tt.advance(tt.kind.TTL()))

			got, hit := c.Get("k")
			assert.Equal(t, tt.wantHit, hit)
			if tt.wantHit {
				assert.Equal(t, "v", got)
			}
		})
	}
}

func TestCacheDurableRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	type rate struct {
		Operation   string  `json:"operation"`
		Key         string  `json:"key"`
		NormPerHour float64 `json:"normPerHour"`
	}

	c1, clock := newTestCache[[]rate](t, KindDictionary, store)
	want := []rate{{Operation: "A", Key: "5", NormPerHour: 10}}
	c1.Put("rates", want)

	// A second cache over the same store simulates a process restart: memory
	// is cold but the durable mirror is warm.
	c2 := New[[]rate](KindDictionary, store, zerolog.Nop()).WithClock(clock.Now)
	got, hit := c2.Get("rates")
	require.True(t, hit)
	assert.Equal(t, want, got)

	// Once the mirror entry ages out it no longer hydrates.
	clock.Advance(KindDictionary.TTL() + time.Minute)
	c3 := New[[]rate](KindDictionary, store, zerolog.Nop()).WithClock(clock.Now)
	_, hit = c3.Get("rates")
	assert.False(t, hit)
}

func TestCacheGetStaleIgnoresTTL(t *testing.T) {
	store := NewMemoryStore()
	c, clock := newTestCache[string](t, KindDictionary, store)
	c.Put("volumes", "old")
	clock.Advance(time.Hour)

	_, hit := c.Get("volumes")
	assert.False(t, hit)

	got, ok := c.GetStale("volumes")
	require.True(t, ok)
	assert.Equal(t, "old", got)
}

func TestCacheSurvivesDurableFailures(t *testing.T) {
	store := NewMemoryStore()
	store.FailWrites = errors.New("quota exceeded")

	c, _ := newTestCache[string](t, KindSettings, store)
	c.Put("k", "v")

	// The in-memory path still works; the durable store just stays empty.
	got, hit := c.Get("k")
	require.True(t, hit)
	assert.Equal(t, "v", got)
	assert.Equal(t, 0, store.Len())
}

func TestCacheInvalidate(t *testing.T) {
	store := NewMemoryStore()
	c, _ := newTestCache[string](t, KindStats, store)
	c.Put("user|2025-06-01", "snapshot")
	c.Put("user|2025-06-02", "snapshot2")

	c.Invalidate("user|2025-06-01")
	_, hit := c.Get("user|2025-06-01")
	assert.False(t, hit)
	_, hit = c.Get("user|2025-06-02")
	assert.True(t, hit)

	// Idempotent.
	c.Invalidate("user|2025-06-01")

	c.InvalidateAll()
	_, hit = c.Get("user|2025-06-02")
	assert.False(t, hit)
	assert.Equal(t, 0, store.Len())
}

func TestCacheInFlightGuard(t *testing.T) {
	c, _ := newTestCache[string](t, KindDictionary, nil)

	require.True(t, c.TryBeginFetch())
	assert.False(t, c.TryBeginFetch())
	c.EndFetch()
	assert.True(t, c.TryBeginFetch())
	c.EndFetch()
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	store, err := OpenBadgerStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put("dict_rates", []byte(`{"a":1}`)))
	got, err := store.Get("dict_rates")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put("dict_volumes", []byte(`[]`)))
	require.NoError(t, store.Put("stats_user|2025-06-01", []byte(`{}`)))
	require.NoError(t, store.DeletePrefix("dict_"))

	_, err = store.Get("dict_rates")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get("stats_user|2025-06-01")
	assert.NoError(t, err)
}
