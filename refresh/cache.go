package refresh

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/easel"
)

// DefaultMaxThumbs is the default thumbnail cache budget in entries.
// Thumbnails are small and uniform, so the budget counts entries rather
// than bytes.
const DefaultMaxThumbs = 1024

// ThumbCache is an LRU cache of rendered layer thumbnails, keyed by
// layer id and versioned by the layer's change counter. A lookup whose
// version no longer matches is a miss: counters are never reused, so a
// matching version proves the cached pixels are current.
//
// ThumbCache is safe for concurrent use and keeps atomic counters for
// statistics.
type ThumbCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*cacheEntry
	lru     *list.List // front = most recent
	max     int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// cacheEntry is one cached thumbnail with metadata.
type cacheEntry struct {
	id       uuid.UUID
	thumb    *easel.Surface
	version  uint64
	element  *list.Element
	lastUsed time.Time
}

// ThumbCacheStats contains cache statistics for monitoring.
type ThumbCacheStats struct {
	// Entries is the number of cached thumbnails.
	Entries int
	// MaxEntries is the entry budget.
	MaxEntries int
	// Hits is the number of version-matched lookups.
	Hits uint64
	// Misses is the number of absent or stale lookups.
	Misses uint64
	// HitRate is the cache hit rate (0.0 to 1.0).
	HitRate float64
	// Evictions is the number of entries evicted or invalidated.
	Evictions uint64
}

// NewThumbCache creates a thumbnail cache with the given entry budget.
// A non-positive budget selects DefaultMaxThumbs.
func NewThumbCache(maxEntries int) *ThumbCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxThumbs
	}
	return &ThumbCache{
		entries: make(map[uuid.UUID]*cacheEntry),
		lru:     list.New(),
		max:     maxEntries,
	}
}

// Get retrieves the cached thumbnail for a layer when its version
// matches the layer's current change counter. On a hit the entry moves
// to the front of the LRU order.
func (c *ThumbCache) Get(id uuid.UUID, version uint64) (*easel.Surface, bool) {
	c.mu.Lock()
	entry, ok := c.entries[id]
	if !ok || entry.version != version {
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}
	c.lru.MoveToFront(entry.element)
	entry.lastUsed = time.Now()
	thumb := entry.thumb
	c.mu.Unlock()

	c.hits.Add(1)
	return thumb, true
}

// Put stores a thumbnail for a layer at the given version, replacing
// any previous entry for the same layer. Least recently used entries
// are evicted when the budget is exceeded.
func (c *ThumbCache) Put(id uuid.UUID, thumb *easel.Surface, version uint64) {
	if thumb == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[id]; ok {
		c.lru.Remove(existing.element)
		delete(c.entries, id)
	}
	for len(c.entries) >= c.max {
		c.evictOldest()
	}

	entry := &cacheEntry{
		id:       id,
		thumb:    thumb,
		version:  version,
		lastUsed: time.Now(),
	}
	entry.element = c.lru.PushFront(entry)
	c.entries[id] = entry
}

// Invalidate removes the entry for one layer, typically after the layer
// is deleted.
func (c *ThumbCache) Invalidate(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[id]; ok {
		c.lru.Remove(entry.element)
		delete(c.entries, id)
		c.evictions.Add(1)
	}
}

// InvalidateAll clears the cache.
func (c *ThumbCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := uint64(len(c.entries))
	c.entries = make(map[uuid.UUID]*cacheEntry)
	c.lru.Init()
	if evicted > 0 {
		c.evictions.Add(evicted)
	}
}

// Version returns the cached version for a layer, if present.
func (c *ThumbCache) Version(id uuid.UUID) (uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.entries[id]; ok {
		return entry.version, true
	}
	return 0, false
}

// EntryCount returns the number of cached thumbnails.
func (c *ThumbCache) EntryCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns current cache statistics.
func (c *ThumbCache) Stats() ThumbCacheStats {
	c.mu.RLock()
	entries := len(c.entries)
	max := c.max
	c.mu.RUnlock()

	hits := c.hits.Load()
	misses := c.misses.Load()
	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return ThumbCacheStats{
		Entries:    entries,
		MaxEntries: max,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
		Evictions:  c.evictions.Load(),
	}
}

// evictOldest drops the least recently used entry. Must be called with
// c.mu held.
func (c *ThumbCache) evictOldest() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	entry := elem.Value.(*cacheEntry)
	c.lru.Remove(elem)
	delete(c.entries, entry.id)
	c.evictions.Add(1)
}
