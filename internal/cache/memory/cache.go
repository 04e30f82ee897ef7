// Package memory provides an in-memory cache implementation.
// This is suitable for single-node deployments where Redis is not available.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/taskdeck/taskdeck/internal/repository"
)

// Cache implements repository.Cache using in-memory storage.
// This is NOT suitable for distributed deployments: each instance
// keeps its own counters.
type Cache struct {
	mu    sync.Mutex
	items map[string]*cacheItem
}

// cacheItem represents a single cached item.
type cacheItem struct {
	value     []byte
	expiresAt time.Time
	noExpiry  bool
}

// isExpired checks if the item has expired.
func (i *cacheItem) isExpired() bool {
	if i.noExpiry {
		return false
	}
	return time.Now().After(i.expiresAt)
}

// NewCache creates a new in-memory cache.
func NewCache() *Cache {
	return &Cache{
		items: make(map[string]*cacheItem),
	}
}

// get returns a live item, pruning it if expired. Caller holds the lock.
func (c *Cache) get(key string) (*cacheItem, bool) {
	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if item.isExpired() {
		delete(c.items, key)
		return nil, false
	}
	return item, true
}

// Get retrieves a value by key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.get(key)
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return item.value, nil
}

// Set stores a value with an optional TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &cacheItem{
		value:     value,
		expiresAt: time.Now().Add(ttl),
		noExpiry:  ttl == 0,
	}
	return nil
}

// Delete removes a value by key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Increment atomically increments an integer value.
func (c *Cache) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var current int64
	if item, ok := c.get(key); ok {
		parsed, err := strconv.ParseInt(string(item.value), 10, 64)
		if err == nil {
			current = parsed
		}
	}

	current += delta
	encoded := []byte(strconv.FormatInt(current, 10))

	if item, ok := c.get(key); ok {
		item.value = encoded
	} else {
		c.items[key] = &cacheItem{value: encoded, noExpiry: true}
	}
	return current, nil
}

// Expire sets or updates the TTL for a key.
func (c *Cache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.get(key)
	if !ok {
		return repository.ErrCacheMiss
	}
	item.expiresAt = time.Now().Add(ttl)
	item.noExpiry = ttl == 0
	return nil
}

// Ensure Cache implements repository.Cache.
var _ repository.Cache = (*Cache)(nil)
