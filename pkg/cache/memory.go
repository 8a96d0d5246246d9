package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache backs the Cache contract with an in-process store. It is the
// default when no Redis URL is configured and the store used by tests.
type MemoryCache struct {
	store *gocache.Cache
	mu    sync.Mutex // serializes read-modify-write in Increment
}

var _ Cache = &MemoryCache{}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		store: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	value, found := c.store.Get(key)
	if !found {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}

func (c *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.store.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

func (c *MemoryCache) Increment(_ context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if current, found := c.store.Get(key); found {
		if str, ok := current.(string); ok {
			parsed, err := strconv.ParseInt(str, 10, 64)
			if err == nil {
				next := parsed + delta
				// Keep the original expiry by re-setting with the same TTL
				// window; go-cache does not expose the remaining TTL, so the
				// window restarts. Acceptable for counters scoped to a fixed
				// hour/day key.
				c.store.Set(key, strconv.FormatInt(next, 10), ttl)
				return next, nil
			}
		}
	}

	c.store.Set(key, strconv.FormatInt(delta, 10), ttl)
	return delta, nil
}
