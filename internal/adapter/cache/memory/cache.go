package memory

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"taskapp/internal/core/domain"
	"taskapp/internal/core/port"
)

// Cache is the in-process CacheRepository, backed by go-cache. It is the
// default when no Redis address is configured.
type Cache struct {
	store *gocache.Cache
}

func NewCache() port.CacheRepository {
	return &Cache{
		store: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.store.Set(key, value, ttl)
	return nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	value, found := c.store.Get(key)

	if !found {
		return nil, &domain.NotFoundError{Resource: "cache entry"}
	}

	return value.([]byte), nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

func (c *Cache) DeleteByPrefix(ctx context.Context, prefix string) error {
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
		}
	}

	return nil
}

func (c *Cache) Close() error {
	c.store.Flush()
	return nil
}
