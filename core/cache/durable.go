package cache

import "errors"

// ErrNotFound is returned by DurableStore.Get for an absent key.
var ErrNotFound = errors.New("durable store: key not found")

// DurableStore is the persistent mirror beneath the in-memory caches. It is
// an optimization, not a correctness requirement: callers are expected to
// log and discard its errors. Implementations must be safe for concurrent
// use.
type DurableStore interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	DeletePrefix(prefix string) error
	Close() error
}
