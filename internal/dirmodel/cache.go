package dirmodel

import (
	"sort"
	"sync"
	"time"
)

// cacheEntry holds a listing with the directory metadata it was read under.
type cacheEntry[T any] struct {
	data       T
	modTime    time.Time
	size       int64
	lastAccess time.Time
}

// Cache is a thread-safe LRU keyed by path and invalidated when the path's
// size or modification time changes.
type Cache[T any] struct {
	entries map[string]cacheEntry[T]
	mu      sync.Mutex
	maxSize int
}

// NewCache creates a cache holding at most maxSize entries.
func NewCache[T any](maxSize int) *Cache[T] {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Cache[T]{
		entries: make(map[string]cacheEntry[T]),
		maxSize: maxSize,
	}
}

// Get returns cached data if the metadata still matches.
func (c *Cache[T]) Get(key string, size int64, modTime time.Time) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	entry, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if entry.size != size || !entry.modTime.Equal(modTime) {
		delete(c.entries, key)
		return zero, false
	}

	entry.lastAccess = time.Now()
	c.entries[key] = entry
	return entry.data, true
}

// Set stores data under key with the metadata it was read under.
func (c *Cache[T]) Set(key string, data T, size int64, modTime time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry[T]{
		data:       data,
		modTime:    modTime,
		size:       size,
		lastAccess: time.Now(),
	}
	c.evictOldestLocked()
}

// Delete removes an entry.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// DeleteIf removes entries whose key matches pred.
func (c *Cache[T]) DeleteIf(pred func(key string) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if pred(key) {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldestLocked drops least recently used entries over capacity.
// Must be called with lock held.
func (c *Cache[T]) evictOldestLocked() {
	excess := len(c.entries) - c.maxSize
	if excess <= 0 {
		return
	}

	type keyAccess struct {
		key        string
		lastAccess time.Time
	}
	order := make([]keyAccess, 0, len(c.entries))
	for key, entry := range c.entries {
		order = append(order, keyAccess{key, entry.lastAccess})
	}
	sort.Slice(order, func(i, j int) bool {
		return order[i].lastAccess.Before(order[j].lastAccess)
	})
	for i := range excess {
		delete(c.entries, order[i].key)
	}
}
