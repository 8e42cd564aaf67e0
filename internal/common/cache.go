package common

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache is an in-process TTL store for values that are expensive to look up
// on every request, such as the identity behind a session.
type Cache struct {
	store *cache.Cache
}

func NewCache(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{store: cache.New(defaultTTL, cleanupInterval)}
}

// Set stores value under key. A ttl of zero uses the cache default.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	c.store.Set(key, value, ttl)
}

// CacheGet returns the value stored under key when it exists and has type T.
// A value of another type is evicted and reported as a miss.
func CacheGet[T any](c *Cache, key string) (T, bool) {
	var zero T

	raw, ok := c.store.Get(key)
	if !ok {
		return zero, false
	}

	v, ok := raw.(T)
	if !ok {
		c.store.Delete(key)
		return zero, false
	}

	return v, true
}

func CacheKeyUser(id int) string {
	return "user:" + strconv.Itoa(id)
}
