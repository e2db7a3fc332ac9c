package resolver

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/address-resolver/internal/normalizer"
)

// DefaultCacheSize bounds the resolution cache. Entries are small (a key
// and up to maxResults candidate references), so a few thousand covers the
// hot set of a typical form-validation workload.
const DefaultCacheSize = 4096

// resultCache memoizes ranked resolution results keyed by the normalized
// two-line input plus the store's load generation. Reloading the dataset
// changes the generation, which orphans every stale key; the LRU policy
// then evicts them under capacity pressure without an explicit sweep.
// lru.Cache is internally locked, and the critical section is O(1) pointer
// bookkeeping only.
type resultCache struct {
	entries *lru.Cache[string, []MatchCandidate]
}

func newResultCache(capacity int) (*resultCache, error) {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	entries, err := lru.New[string, []MatchCandidate](capacity)
	if err != nil {
		return nil, fmt.Errorf("creating result cache: %w", err)
	}
	return &resultCache{entries: entries}, nil
}

// key derives the cache key. Normalizing both lines makes "Damstraat 1,
// AMSTERDAM" and "damstraat 1 amsterdam" share an entry.
func (c *resultCache) key(line1, line2 string, generation uint64) string {
	return fmt.Sprintf("%s\x1f%s\x1f%d",
		normalizer.NormalizeName(line1), normalizer.NormalizeName(line2), generation)
}

func (c *resultCache) get(key string) ([]MatchCandidate, bool) {
	return c.entries.Get(key)
}

// put is idempotent: re-computing and re-writing the same key is safe, so
// an abandoned resolution never leaves the cache inconsistent.
func (c *resultCache) put(key string, value []MatchCandidate) {
	c.entries.Add(key, value)
}

func (c *resultCache) len() int { return c.entries.Len() }
