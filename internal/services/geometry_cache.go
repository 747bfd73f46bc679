package services

import (
	"sync"
	"sync/atomic"
	"time"
)

// GeometryCache holds simplified display geometry keyed by track and
// tolerance so repeated viewport loads skip the Douglas-Peucker pass.
// Entries are derived data only; invalidation on track delete is enough.
type GeometryCache struct {
	data        sync.Map // map[string][]byte
	metadata    sync.Map // map[string]*geometryCacheEntry
	maxSize     int64
	currentSize int64
	ttl         time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

type geometryCacheEntry struct {
	Size      int64
	CreatedAt time.Time

	// unix nanos; written on every Get while evictLRU reads concurrently
	lastAccess atomic.Int64
}

// NewGeometryCache creates the cache and starts its expiry sweep.
func NewGeometryCache(maxSizeBytes int64, ttl time.Duration) *GeometryCache {
	gc := &GeometryCache{
		maxSize: maxSizeBytes,
		ttl:     ttl,
	}

	go gc.cleanupExpired()

	return gc
}

// Store caches one simplified geometry payload, evicting least recently
// used entries until it fits.
func (gc *GeometryCache) Store(key string, data []byte) {
	size := int64(len(data))
	if size > gc.maxSize {
		return
	}
	for atomic.LoadInt64(&gc.currentSize)+size > gc.maxSize {
		if !gc.evictLRU() {
			return
		}
	}

	entry := &geometryCacheEntry{
		Size:      size,
		CreatedAt: time.Now(),
	}
	entry.lastAccess.Store(entry.CreatedAt.UnixNano())
	gc.data.Store(key, data)
	gc.metadata.Store(key, entry)
	atomic.AddInt64(&gc.currentSize, size)
}

// Get returns the cached payload for key, if present.
func (gc *GeometryCache) Get(key string) ([]byte, bool) {
	if value, ok := gc.data.Load(key); ok {
		if meta, ok := gc.metadata.Load(key); ok {
			meta.(*geometryCacheEntry).lastAccess.Store(time.Now().UnixNano())
		}
		gc.hits.Add(1)
		return value.([]byte), true
	}
	gc.misses.Add(1)
	return nil, false
}

// InvalidatePrefix drops all entries whose key starts with prefix. Used when
// a track is deleted or reprocessed.
func (gc *GeometryCache) InvalidatePrefix(prefix string) {
	gc.data.Range(func(k, _ interface{}) bool {
		key := k.(string)
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			gc.remove(key)
		}
		return true
	})
}

// Stats returns hit/miss counters for diagnostics.
func (gc *GeometryCache) Stats() (hits, misses int64, sizeBytes int64) {
	return gc.hits.Load(), gc.misses.Load(), atomic.LoadInt64(&gc.currentSize)
}

func (gc *GeometryCache) remove(key string) {
	if meta, ok := gc.metadata.LoadAndDelete(key); ok {
		atomic.AddInt64(&gc.currentSize, -meta.(*geometryCacheEntry).Size)
	}
	gc.data.Delete(key)
}

// evictLRU removes the least recently accessed entry. Returns false when
// there is nothing left to evict.
func (gc *GeometryCache) evictLRU() bool {
	var oldestKey string
	var oldestAccess int64

	gc.metadata.Range(func(k, v interface{}) bool {
		access := v.(*geometryCacheEntry).lastAccess.Load()
		if oldestKey == "" || access < oldestAccess {
			oldestKey = k.(string)
			oldestAccess = access
		}
		return true
	})

	if oldestKey == "" {
		return false
	}
	gc.remove(oldestKey)
	return true
}

func (gc *GeometryCache) cleanupExpired() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-gc.ttl)
		gc.metadata.Range(func(k, v interface{}) bool {
			if v.(*geometryCacheEntry).CreatedAt.Before(cutoff) {
				gc.remove(k.(string))
			}
			return true
		})
	}
}
