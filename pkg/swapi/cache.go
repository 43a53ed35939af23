package swapi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores fetched documents by URL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// MemoryCache is a process-local Cache that lives for one import run.
type MemoryCache struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{docs: make(map[string][]byte)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[key]
	return doc, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[key] = value
	return nil
}

// redisKeyPrefix namespaces every cached document.
const redisKeyPrefix = "holocron:swapi:"

// RedisCache holds the documents of one import run in Redis. Keys are scoped
// to the run, so a later run never reads documents an earlier one stored.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache creates a Redis-backed cache for the run identified by run.
// Entries expire after ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration, run string) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: redisKeyPrefix + run + ":"}
}

func (c *RedisCache) key(url string) string {
	return c.prefix + url
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	doc, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return doc, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, c.key(key), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Clear deletes every document this run stored and returns how many keys
// were removed.
func (c *RedisCache) Clear(ctx context.Context) (int, error) {
	var removed int
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := c.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, fmt.Errorf("redis del: %w", err)
		}
		removed += int(n)
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan: %w", err)
	}
	return removed, nil
}

// CachedSource consults a Cache before delegating to the wrapped Source.
// Only successful fetches are cached. Cache failures are logged and bypassed.
type CachedSource struct {
	next   Source
	cache  Cache
	logger *zap.Logger

	mu     sync.Mutex
	hits   int
	misses int
}

var _ Source = (*CachedSource)(nil)

// NewCachedSource wraps next with cache.
func NewCachedSource(next Source, cache Cache, logger *zap.Logger) *CachedSource {
	return &CachedSource{next: next, cache: cache, logger: logger.Named("swapi-cache")}
}

func (s *CachedSource) Get(ctx context.Context, url string) ([]byte, error) {
	doc, ok, err := s.cache.Get(ctx, url)
	if err != nil {
		s.logger.Warn("Cache read failed", zap.String("url", url), zap.Error(err))
	}
	if ok {
		s.record(true)
		return doc, nil
	}

	s.record(false)
	doc, err = s.next.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, url, doc); err != nil {
		s.logger.Warn("Cache write failed", zap.String("url", url), zap.Error(err))
	}
	return doc, nil
}

func (s *CachedSource) record(hit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hit {
		s.hits++
	} else {
		s.misses++
	}
}

// Stats returns cache hits and misses so far.
func (s *CachedSource) Stats() (hits, misses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses
}
