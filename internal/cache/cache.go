// Package cache implements the read-through cache every pipeline stage
// consults before doing expensive work (LLM calls, DB scans).
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"github.com/kasioon/search-gateway/internal/config"
	"github.com/kasioon/search-gateway/internal/logger"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

func secondsToDuration(s int64) time.Duration {
	return time.Duration(s) * time.Second
}

// RedisCache is the Redis-backed interfaces.Cache implementation
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    map[interfaces.TTLClass]int64 // seconds
}

// NewCache builds the Cache implementation selected by config: a real
// Redis client, or a no-op stand-in when caching is disabled. The choice
// is made once at container-build time, not on every call.
func NewCache(cfg *config.Config) (interfaces.Cache, error) {
	if cfg.Cache == nil || cfg.Cache.Disabled {
		logger.Infof(context.Background(), "cache disabled, using no-op implementation")
		return &noopCache{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.Address,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})

	return &RedisCache{
		client: client,
		prefix: cfg.Cache.Prefix,
		ttl: map[interfaces.TTLClass]int64{
			interfaces.TTLIntent:    int64(cfg.Cache.TTL.Intent.Seconds()),
			interfaces.TTLQueryPlan: int64(cfg.Cache.TTL.QueryPlan.Seconds()),
			interfaces.TTLSearch:    int64(cfg.Cache.TTL.Search.Seconds()),
			interfaces.TTLCatalog:   int64(cfg.Cache.TTL.Catalog.Seconds()),
			interfaces.TTLStats:    int64(cfg.Cache.TTL.Stats.Seconds()),
		},
	}, nil
}

// buildKey namespaces the caller's key and hashes it to a fixed-width,
// 128-bit non-cryptographic digest: two independently salted xxhash
// sums concatenated, never a cryptographic hash (the key is not secret).
func (c *RedisCache) buildKey(namespace, key string) string {
	h1 := xxhash.Sum64String("a:" + key)
	h2 := xxhash.Sum64String("b:" + key)
	return fmt.Sprintf("%s:%s:%016x%016x", c.prefix, namespace, h1, h2)
}

func (c *RedisCache) Get(ctx context.Context, namespace, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, c.buildKey(namespace, key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, namespace, key string, value any, class interfaces.TTLClass) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	seconds, ok := c.ttl[class]
	if !ok || seconds <= 0 {
		seconds = 300
	}
	return c.client.Set(ctx, c.buildKey(namespace, key), raw, secondsToDuration(seconds)).Err()
}

func (c *RedisCache) Delete(ctx context.Context, namespace, key string) error {
	return c.client.Del(ctx, c.buildKey(namespace, key)).Err()
}

// DeletePattern scans and removes every key matching namespace:pattern*,
// used when the catalog refreshes and stale search/query-plan entries
// must be invalidated in bulk.
func (c *RedisCache) DeletePattern(ctx context.Context, namespace, pattern string) error {
	match := fmt.Sprintf("%s:%s:%s*", c.prefix, namespace, pattern)
	iter := c.client.Scan(ctx, 0, match, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// noopCache satisfies interfaces.Cache without ever retaining anything;
// every Get reports a miss so callers fall through to the live path.
type noopCache struct{}

func (n *noopCache) Get(context.Context, string, string, any) (bool, error) { return false, nil }
func (n *noopCache) Set(context.Context, string, string, any, interfaces.TTLClass) error { return nil }
func (n *noopCache) Delete(context.Context, string, string) error { return nil }
func (n *noopCache) DeletePattern(context.Context, string, string) error { return nil }
