package metrics

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
)

// DefaultCacheEntries bounds the result cache when no size is configured.
const DefaultCacheEntries = 64

// Cache memoizes pipeline outputs by input digest. A nil *Cache caches
// nothing. Cached values are shared and must not be mutated by callers.
type Cache struct {
	mu   sync.Mutex
	lru  *lru.Cache
	hits int
	miss int
}

// NewCache returns an LRU cache holding at most entries results.
func NewCache(entries int) *Cache {
	if entries <= 0 {
		entries = DefaultCacheEntries
	}
	return &Cache{lru: lru.New(entries)}
}

func (c *Cache) get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lru.Get(key)
	if ok {
		c.hits++
	} else {
		c.miss++
	}
	return v, ok
}

func (c *Cache) put(key string, v any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, v)
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	if c == nil {
		return 0, 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.miss
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// cacheKey digests both tables and every input that changes the output.
func cacheKey(kind string, ds Dataset, q Query) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\n", kind)
	ds.Cases.Digest(h)
	if ds.Hearings != nil {
		fmt.Fprint(h, "hearings\n")
		ds.Hearings.Digest(h)
	}
	years := append([]int(nil), q.Years...)
	sort.Ints(years)
	fmt.Fprintf(h, "%+v|%v|%s", q.Params, years, q.Today.Format(time.DateOnly))
	return hex.EncodeToString(h.Sum(nil))
}

