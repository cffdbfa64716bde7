// internal/retriever/cache.go
package retriever

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pcaf-advisor/internal/common/config"
)

// CollectionCache memoizes resolved collection identifiers in Redis.
// Misses and infrastructure failures are equivalent: the caller resolves
// upstream and tries to repopulate.
type CollectionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCollectionCache creates the cache from config.
func NewCollectionCache(cfg config.CacheConfig) *CollectionCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return &CollectionCache{
		client: rdb,
		ttl:    time.Duration(cfg.TTL) * time.Second,
	}
}

// NewCollectionCacheWithClient wraps an existing client (tests).
func NewCollectionCacheWithClient(client *redis.Client, ttl time.Duration) *CollectionCache {
	return &CollectionCache{client: client, ttl: ttl}
}

func cacheKey(collection string) string {
	return fmt.Sprintf("advisor:collection:%s", collection)
}

// Get returns the cached identifier for a collection name.
func (c *CollectionCache) Get(ctx context.Context, collection string) (string, bool) {
	val, err := c.client.Get(ctx, cacheKey(collection)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores a resolved identifier with the configured TTL.
func (c *CollectionCache) Set(ctx context.Context, collection, id string) error {
	return c.client.Set(ctx, cacheKey(collection), id, c.ttl).Err()
}

// Ping tests the Redis connection.
func (c *CollectionCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *CollectionCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
