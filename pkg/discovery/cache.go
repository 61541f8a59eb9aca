package discovery

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache keeps successful discovery results by identifier for a fixed TTL.
// Failures are never cached.
type Cache struct {
	cache *gocache.Cache
}

// NewCache creates a cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{cache: gocache.New(ttl, 2*ttl)}
}

// Get returns the cached result for identifier.
func (c *Cache) Get(identifier string) (*Result, bool) {
	v, found := c.cache.Get(identifier)
	if !found {
		return nil, false
	}
	result, ok := v.(*Result)
	return result, ok
}

// Set stores result under identifier with the default TTL.
func (c *Cache) Set(identifier string, result *Result) {
	c.cache.SetDefault(identifier, result)
}

// Delete removes the entry for identifier.
func (c *Cache) Delete(identifier string) {
	c.cache.Delete(identifier)
}

// Flush removes all entries.
func (c *Cache) Flush() {
	c.cache.Flush()
}

// Len returns the number of entries, including expired ones not yet evicted.
func (c *Cache) Len() int {
	return c.cache.ItemCount()
}
