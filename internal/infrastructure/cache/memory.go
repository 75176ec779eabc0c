package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-process price cache used when Redis is not configured.
// Values are stored JSON-encoded so both caches behave the same for callers.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates an in-process cache that purges expired entries every cleanupInterval
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value from cache
func (c *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	val, ok := c.store.Get(key)
	if !ok {
		return ErrCacheMiss
	}

	data, ok := val.([]byte)
	if !ok {
		return fmt.Errorf("unexpected cached type %T", val)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	return nil
}

// SetWithTTL stores a value in cache with the given TTL
func (c *MemoryCache) SetWithTTL(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	c.store.Set(key, data, ttl)
	return nil
}

// HealthCheck always succeeds for the in-process cache
func (c *MemoryCache) HealthCheck(_ context.Context) error {
	return nil
}

// ItemCount returns the number of entries, including expired ones not yet purged
func (c *MemoryCache) ItemCount() int {
	return c.store.ItemCount()
}
