package expr

import "github.com/puzpuzpuz/xsync/v4"

// Cache memoizes parsed expressions by source text.
// Parse failures are cached too so a broken filter is reported identically
// by every check that uses it.
//
// Thread-safety: Cache is safe for concurrent use.
type Cache struct {
	entries *xsync.Map[string, cacheEntry]
}

type cacheEntry struct {
	expr *Expression
	err  error
}

// NewCache creates an empty expression cache.
func NewCache() *Cache {
	return &Cache{entries: xsync.NewMap[string, cacheEntry]()}
}

// Parse returns the cached parse of text, parsing it on first use.
func (c *Cache) Parse(text string) (*Expression, error) {
	if entry, ok := c.entries.Load(text); ok {
		return entry.expr, entry.err
	}
	e, err := Parse(text)
	c.entries.Store(text, cacheEntry{expr: e, err: err})
	return e, err
}

// Len returns the number of distinct expressions seen.
func (c *Cache) Len() int {
	return c.entries.Size()
}
