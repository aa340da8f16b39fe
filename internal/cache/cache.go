package cache

import (
	"sync"
	"time"
)

// Item is a cached value with an optional expiry.
type Item[V any] struct {
	Value     V         `json:"value"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the item has expired at now. A zero expiry never
// expires.
func (i *Item[V]) IsExpired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// Cache is a thread-safe map with per-item TTL. Expired items are evicted
// lazily on access, so no background goroutine is needed.
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]*Item[V]
	ttl   time.Duration
	now   func() time.Time
}

// New creates a cache. A ttl of zero keeps items until they are replaced or
// deleted.
func New[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]*Item[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves a live item.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	item, ok := c.Item(key)
	if !ok {
		var zero V
		return zero, false
	}
	return item.Value, true
}

// Item retrieves a live item with its timestamps.
func (c *Cache[K, V]) Item(key K) (Item[V], bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return Item[V]{}, false
	}
	if item.IsExpired(c.now()) {
		c.mu.Lock()
		// re-check under the write lock; a concurrent Set may have replaced it
		if cur, ok := c.items[key]; ok && cur == item {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return Item[V]{}, false
	}
	return *item, true
}

// Set stores a value, replacing any previous one.
func (c *Cache[K, V]) Set(key K, value V) {
	now := c.now()
	item := &Item[V]{Value: value, StoredAt: now}
	if c.ttl > 0 {
		item.ExpiresAt = now.Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = item
}

// Delete removes an item.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Clear removes all items.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*Item[V])
}

// Prune evicts every expired item and returns how many were removed.
func (c *Cache[K, V]) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, item := range c.items {
		if item.IsExpired(now) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

// Keys returns the keys of live items in no particular order.
func (c *Cache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	keys := make([]K, 0, len(c.items))
	for k, item := range c.items {
		if !item.IsExpired(now) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Size returns the number of stored items, expired ones included.
func (c *Cache[K, V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Stats returns cache statistics
func (c *Cache[K, V]) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	totalItems := len(c.items)
	expiredItems := 0
	for _, item := range c.items {
		if item.IsExpired(now) {
			expiredItems++
		}
	}

	return map[string]interface{}{
		"total_items":   totalItems,
		"expired_items": expiredItems,
		"active_items":  totalItems - expiredItems,
		"ttl_seconds":   c.ttl.Seconds(),
	}
}
