package cache

import "time"

// Kind identifies a cache family. Each family has its own TTL window and its
// own prefix in the durable store, so clearing one family never touches
// another.
type Kind string

const (
	KindDictionary Kind = "dict"
	KindSettings   Kind = "settings"
	KindStats      Kind = "stats"
	KindSalary     Kind = "salary"
)

// TTL returns the freshness window for the kind.
func (k Kind) TTL() time.Duration {
	switch k {
	case KindSettings:
		return 30 * time.Minute
	case KindStats, KindSalary:
		return 10 * time.Minute
	default:
		return 5 * time.Minute
	}
}

// StorageKey builds the durable-store key for an entry of this kind.
func (k Kind) StorageKey(key string) string {
	return string(k) + "_" + key
}

// StoragePrefix is the durable-store prefix covering every entry of the kind.
func (k Kind) StoragePrefix() string {
	return string(k) + "_"
}
