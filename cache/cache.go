// Package cache implements the in-memory high-frequency k-mer cache: a
// lookup structure populated from the analysis engine's high-frequency
// key set, consulted by the index-key extractor to filter out
// high-frequency k-mers before emitting inverted-index keys.
package cache

// Cache answers membership queries against the high-frequency k-mer set.
// Implementations must be safe for concurrent read-only use by multiple
// index-build workers.
type Cache interface {
	Contains(kmerInt uint64) bool
	Close() error
}

// MapCache is the serial, single-process variant: a plain Go map. It is
// the natural choice when the high-frequency set and the index-build
// workers live in the same process and no cross-process sharing is
// needed.
var _ Cache = (*MapCache)(nil)

type MapCache struct {
	set map[uint64]struct{}
}

// NewMapCache builds a MapCache from the given high-frequency k-mer
// integers.
func NewMapCache(kmerInts []uint64) *MapCache {
	set := make(map[uint64]struct{}, len(kmerInts))
	for _, k := range kmerInts {
		set[k] = struct{}{}
	}
	return &MapCache{set: set}
}

func (c *MapCache) Contains(kmerInt uint64) bool {
	_, ok := c.set[kmerInt]
	return ok
}

func (c *MapCache) Close() error { return nil }
