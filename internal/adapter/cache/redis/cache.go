package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"taskapp/internal/core/domain"
	"taskapp/internal/core/port"
)

// Cache is the Redis-backed CacheRepository, used when REDIS_URL is set
// so avatar responses survive restarts and are shared between replicas.
type Cache struct {
	client *goredis.Client
}

func NewCache(ctx context.Context, url string) (port.CacheRepository, error) {
	opts, err := goredis.ParseURL(url)

	if err != nil {
		return nil, err
	}

	client := goredis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &Cache{client: client}, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, key).Bytes()

	if errors.Is(err, goredis.Nil) {
		return nil, &domain.NotFoundError{Resource: "cache entry"}
	}

	if err != nil {
		return nil, err
	}

	return value, nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *Cache) DeleteByPrefix(ctx context.Context, prefix string) error {
	var cursor uint64

	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", 100).Result()

		if err != nil {
			return err
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}

		if next == 0 {
			return nil
		}

		cursor = next
	}
}

func (c *Cache) Close() error {
	return c.client.Close()
}
