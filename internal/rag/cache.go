package rag

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mohdibrahimai/HELMSMAN/internal/model"
)

// Cache is the subset of cache behaviour the retrieval layer needs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache implements Cache using go-redis v9. A missing key returns
// (nil, nil).
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache wraps an existing Redis client.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return val, err
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

const cacheKeyPrefix = "helmsman:retrieve:"

// CachedRetriever caches retrieval results per query. Cache failures are
// logged and fall through to the inner retriever, so a flaky cache never
// changes results, only latency.
type CachedRetriever struct {
	inner Source
	cache Cache
	ttl   time.Duration
}

// NewCachedRetriever wraps a retriever with a cache. ttl <= 0 defaults to
// one hour.
func NewCachedRetriever(inner Source, cache Cache, ttl time.Duration) *CachedRetriever {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedRetriever{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachedRetriever) Retrieve(ctx context.Context, query string) ([]model.Snippet, error) {
	key := cacheKeyPrefix + query

	if data, err := c.cache.Get(ctx, key); err != nil {
		log.Printf("retrieval cache get failed, falling through: %v", err)
	} else if data != nil {
		var snippets []model.Snippet
		if err := json.Unmarshal(data, &snippets); err == nil {
			return snippets, nil
		}
		log.Printf("retrieval cache entry for %q is corrupt, refetching", query)
	}

	snippets, err := c.inner.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(snippets); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			log.Printf("retrieval cache set failed: %v", err)
		}
	}
	return snippets, nil
}
