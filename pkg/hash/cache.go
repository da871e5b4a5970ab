package hash

import (
	"container/list"
	"context"
	"os"
	"sync"
	"time"
)

// DefaultCacheSize is the maximum number of cached hash entries
const DefaultCacheSize = 4096

// DefaultCacheTTL bounds how long a cached hash is trusted even when the
// file's size and mtime still match.
const DefaultCacheTTL = 5 * time.Minute

type cacheKey struct {
	path    string
	size    int64
	modTime int64
}

type cacheEntry struct {
	key      cacheKey
	hash     string
	cachedAt time.Time
}

// Cache memoizes file hashes keyed by path, size and mtime so repeated
// drift checks over an unchanged tree skip re-reading content. Entries are
// evicted least-recently-used past maxEntries and expire after ttl; a file
// touched in any way (size or mtime change) misses the cache naturally.
type Cache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	order      *list.List
	entries    map[cacheKey]*list.Element
}

// NewCache creates a hash cache with the given bounds. Non-positive values
// fall back to the defaults.
func NewCache(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		maxEntries: maxEntries,
		ttl:        ttl,
		order:      list.New(),
		entries:    make(map[cacheKey]*list.Element),
	}
}

func (c *Cache) get(key cacheKey) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return "", false
	}
	entry := elem.Value.(*cacheEntry)
	if time.Since(entry.cachedAt) > c.ttl {
		c.order.Remove(elem)
		delete(c.entries, key)
		return "", false
	}
	c.order.MoveToFront(elem)
	return entry.hash, true
}

func (c *Cache) put(key cacheKey, hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.hash = hash
		entry.cachedAt = time.Now()
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&cacheEntry{key: key, hash: hash, cachedAt: time.Now()})
	c.entries[key] = elem

	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

// Len returns the number of live entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// CachedHasher wraps a Hasher with a Cache. Stat failures bypass the cache
// so the underlying hasher reports the real error.
type CachedHasher struct {
	inner Hasher
	cache *Cache
}

// NewCachedHasher wraps inner with the given cache
func NewCachedHasher(inner Hasher, cache *Cache) *CachedHasher {
	return &CachedHasher{inner: inner, cache: cache}
}

// HashFile returns the cached hash when the file's size and mtime are
// unchanged, hashing and recording it otherwise
func (h *CachedHasher) HashFile(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return h.inner.HashFile(ctx, path)
	}

	key := cacheKey{path: path, size: info.Size(), modTime: info.ModTime().UnixNano()}
	if hash, ok := h.cache.get(key); ok {
		return hash, nil
	}

	hash, err := h.inner.HashFile(ctx, path)
	if err != nil {
		return "", err
	}
	h.cache.put(key, hash)
	return hash, nil
}
