package shapefile

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// LayerCache manages loaded layers with LRU eviction policy.
//
// The cache stores decoded layers in memory and evicts least-recently-used
// layers when the memory limit is exceeded. Memory use is estimated from
// feature and vertex counts.
//
// Example:
//
//	cache := shapefile.NewLayerCache(256 * 1024 * 1024)
//
//	layer, err := cache.Get("roads", func() (*shapefile.Layer, error) {
//	    return parser.Parse(shp, dbf)
//	})
type LayerCache struct {
	maxMemory  int64 // Maximum memory in bytes, 0 for unlimited
	usedMemory int64
	layers     map[string]*cacheEntry
	lru        *list.List // Most recent at front
	mu         sync.RWMutex
}

// cacheEntry tracks a cached layer and its metadata
type cacheEntry struct {
	name         string
	layer        *Layer
	memorySize   int64
	element      *list.Element // Position in LRU list
	lastAccessed time.Time
	accessCount  int
}

// NewLayerCache creates a new cache with the specified memory limit in bytes.
//
// The limit is enforced approximately. Set to 0 for unlimited cache size.
func NewLayerCache(maxMemoryBytes int64) *LayerCache {
	return &LayerCache{
		maxMemory: maxMemoryBytes,
		layers:    make(map[string]*cacheEntry),
		lru:       list.New(),
	}
}

// Get retrieves a layer from cache or loads it using the provided loader function.
//
// The loader is only called on a cache miss. A loaded layer too large for
// the cache is returned without being cached.
func (c *LayerCache) Get(name string, loader func() (*Layer, error)) (*Layer, error) {
	c.mu.Lock()
	if entry, ok := c.layers[name]; ok {
		entry.lastAccessed = time.Now()
		entry.accessCount++
		c.lru.MoveToFront(entry.element)
		c.mu.Unlock()
		return entry.layer, nil
	}
	c.mu.Unlock()

	layer, err := loader()
	if err != nil {
		return nil, fmt.Errorf("load layer %s: %w", name, err)
	}

	// A layer that cannot be cached is still returned.
	_ = c.Add(name, layer)
	return layer, nil
}

// Add adds a layer to the cache.
//
// If the cache is at capacity, least-recently-used layers are evicted to make room.
// Returns error if the layer is larger than the memory limit.
func (c *LayerCache) Add(name string, layer *Layer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	memSize := estimateLayerMemory(layer)

	if entry, ok := c.layers[name]; ok {
		c.usedMemory += memSize - entry.memorySize
		entry.layer = layer
		entry.memorySize = memSize
		entry.lastAccessed = time.Now()
		entry.accessCount++
		c.lru.MoveToFront(entry.element)
		c.evictOver(entry)
		return nil
	}

	if c.maxMemory > 0 && memSize > c.maxMemory {
		return fmt.Errorf("layer too large for cache (%d bytes > %d bytes max)",
			memSize, c.maxMemory)
	}

	if c.maxMemory > 0 {
		for c.usedMemory+memSize > c.maxMemory && c.lru.Len() > 0 {
			c.evictLRU()
		}
	}

	entry := &cacheEntry{
		name:         name,
		layer:        layer,
		memorySize:   memSize,
		lastAccessed: time.Now(),
		accessCount:  1,
	}
	entry.element = c.lru.PushFront(entry)
	c.layers[name] = entry
	c.usedMemory += memSize

	return nil
}

// evictOver evicts least-recently-used layers other than keep until usage
// fits the limit. Must be called with c.mu locked.
func (c *LayerCache) evictOver(keep *cacheEntry) {
	if c.maxMemory <= 0 {
		return
	}
	for c.usedMemory > c.maxMemory {
		elem := c.lru.Back()
		if elem == nil || elem.Value.(*cacheEntry) == keep {
			return
		}
		c.evictLRU()
	}
}

// evictLRU removes the least recently used layer from cache.
// Must be called with c.mu locked.
func (c *LayerCache) evictLRU() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}

	entry := elem.Value.(*cacheEntry)
	c.lru.Remove(elem)
	delete(c.layers, entry.name)
	c.usedMemory -= entry.memorySize
}

// Remove explicitly removes a layer from the cache.
func (c *LayerCache) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.layers[name]; ok {
		c.lru.Remove(entry.element)
		delete(c.layers, name)
		c.usedMemory -= entry.memorySize
	}
}

// Clear removes all layers from the cache.
func (c *LayerCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.layers = make(map[string]*cacheEntry)
	c.lru.Init()
	c.usedMemory = 0
}

// Stats returns cache statistics.
func (c *LayerCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	totalAccess := 0
	for _, entry := range c.layers {
		totalAccess += entry.accessCount
	}

	return CacheStats{
		LayerCount:  len(c.layers),
		UsedMemory:  c.usedMemory,
		MaxMemory:   c.maxMemory,
		TotalAccess: totalAccess,
	}
}

// CacheStats holds cache performance metrics.
type CacheStats struct {
	LayerCount  int   // Number of layers currently cached
	UsedMemory  int64 // Estimated memory usage in bytes
	MaxMemory   int64 // Maximum memory limit in bytes
	TotalAccess int   // Total number of accesses across all cached layers
}

// estimateLayerMemory estimates memory usage for a layer.
//
// This is approximate and based on:
//   - Base overhead: ~1KB per layer
//   - Feature overhead: ~256 bytes per feature plus ~64 bytes per property
//   - Vertices: 32 bytes per decoded point plus 16 bytes per GeoJSON position
func estimateLayerMemory(layer *Layer) int64 {
	if layer == nil {
		return 0
	}

	size := int64(1024)
	for _, rec := range layer.records {
		if rec.Shape != nil {
			size += int64(len(rec.Shape.Vertices())) * (32 + 16)
		}
	}
	if layer.collection != nil {
		for _, feature := range layer.collection.Features {
			size += 256 + int64(len(feature.properties))*64
		}
	}
	return size
}
