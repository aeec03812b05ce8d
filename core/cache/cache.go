// Package cache implements the time-keyed read-through cache shared by the
// dictionary, settings, salary and stats layers: an in-memory map per kind
// with a durable mirror that survives restarts.
package cache

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Entry is a cached payload with its capture time.
type Entry[T any] struct {
	Value     T
	FetchedAt time.Time
}

// durableEntry is the JSON shape mirrored into the durable store.
type durableEntry struct {
	Value     json.RawMessage `json:"value"`
	FetchedAt int64           `json:"fetchedAt"` // unix milliseconds
}

// Cache is a TTL cache for one kind of data. Values hydrate from the durable
// mirror on a memory miss; writes are mirrored best-effort. A single
// in-flight flag per cache collapses concurrent network refreshes of the
// same kind; distinct keys of one kind may still race, which is acceptable
// because puts are idempotent last-write-wins.
type Cache[T any] struct {
	kind    Kind
	ttl     time.Duration
	now     func() time.Time
	durable DurableStore
	log     zerolog.Logger

	mu       sync.Mutex
	entries  map[string]Entry[T]
	fetching atomic.Bool
}

// New creates a cache for the kind, using the kind's default TTL.
// durable may be nil, in which case the cache is memory-only.
func New[T any](kind Kind, durable DurableStore, log zerolog.Logger) *Cache[T] {
	return &Cache[T]{
		kind:    kind,
		ttl:     kind.TTL(),
		now:     time.Now,
		durable: durable,
		log:     log.With().Str("cache", string(kind)).Logger(),
		entries: make(map[string]Entry[T]),
	}
}

// WithClock replaces the time source. Tests use this to step through TTL
// boundaries deterministically.
func (c *Cache[T]) WithClock(now func() time.Time) *Cache[T] {
	c.now = now
	return c
}

func (c *Cache[T]) fresh(e Entry[T]) bool {
	return c.now().Sub(e.FetchedAt) < c.ttl
}

// Get returns the cached value for key if present and fresh. On a memory
// miss it attempts to hydrate from the durable mirror; a stale durable entry
// is discarded.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.fresh(e) {
		c.mu.Unlock()
		return e.Value, true
	}
	c.mu.Unlock()

	e, ok := c.loadDurable(key)
	if !ok || !c.fresh(e) {
		var zero T
		return zero, false
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return e.Value, true
}

// GetStale returns the cached value for key regardless of TTL, preferring
// memory over the durable mirror. Used as the network-failure fallback for
// dictionary loads, where old data beats no data.
func (c *Cache[T]) GetStale(key string) (T, bool) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return e.Value, true
	}
	c.mu.Unlock()

	if e, ok := c.loadDurable(key); ok {
		return e.Value, true
	}
	var zero T
	return zero, false
}

// Put stores value under key with fetchedAt = now and mirrors it to the
// durable store. Mirror failures are logged and swallowed.
func (c *Cache[T]) Put(key string, value T) {
	e := Entry[T]{Value: value, FetchedAt: c.now()}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()

	if c.durable == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("failed to encode cache entry for durable mirror")
		return
	}
	data, err := json.Marshal(durableEntry{Value: raw, FetchedAt: e.FetchedAt.UnixMilli()})
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("failed to encode cache envelope")
		return
	}
	if err := c.durable.Put(c.kind.StorageKey(key), data); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("durable mirror write failed")
	}
}

// Invalidate removes key from memory and from the durable mirror. Idempotent.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	if c.durable == nil {
		return
	}
	if err := c.durable.Delete(c.kind.StorageKey(key)); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("durable mirror delete failed")
	}
}

// InvalidateAll clears every entry of this kind from memory and the durable
// mirror.
func (c *Cache[T]) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]Entry[T])
	c.mu.Unlock()

	if c.durable == nil {
		return
	}
	if err := c.durable.DeletePrefix(c.kind.StoragePrefix()); err != nil {
		c.log.Warn().Err(err).Msg("durable mirror clear failed")
	}
}

// Len reports how many entries are currently held in memory.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TryBeginFetch acquires the per-kind in-flight flag. When it returns false
// another refresh of this kind is already running and the caller should wait
// or serve stale data instead of issuing a duplicate network call.
func (c *Cache[T]) TryBeginFetch() bool {
	return c.fetching.CompareAndSwap(false, true)
}

// EndFetch releases the in-flight flag.
func (c *Cache[T]) EndFetch() {
	c.fetching.Store(false)
}

func (c *Cache[T]) loadDurable(key string) (Entry[T], bool) {
	if c.durable == nil {
		return Entry[T]{}, false
	}
	data, err := c.durable.Get(c.kind.StorageKey(key))
	if err != nil {
		if err != ErrNotFound {
			c.log.Warn().Err(err).Str("key", key).Msg("durable mirror read failed")
		}
		return Entry[T]{}, false
	}
	var de durableEntry
	if err := json.Unmarshal(data, &de); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("corrupt durable cache entry")
		return Entry[T]{}, false
	}
	var value T
	if err := json.Unmarshal(de.Value, &value); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("corrupt durable cache payload")
		return Entry[T]{}, false
	}
	return Entry[T]{Value: value, FetchedAt: time.UnixMilli(de.FetchedAt)}, true
}
