package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"framecheck/internal/models"
)

// DefaultCacheTTL is how long an estimate stays valid for a hit
const DefaultCacheTTL = time.Hour

// CacheEntry is a previously computed estimate
type CacheEntry struct {
	FPS       int
	Timestamp time.Time
}

// FPSCache stores estimates by key. Implementations must be safe for
// concurrent use: the estimation service reads and writes it from every
// in-flight request.
type FPSCache interface {
	// Get returns the entry for key if it is still within its TTL
	Get(key string) (CacheEntry, bool)
	// Set creates or overwrites the entry for key, stamped with the current time
	Set(key string, fps int)
}

// CacheStats are the counters of a MemoryCache
type CacheStats struct {
	Entries int
	Hits    uint64
	Misses  uint64
	Stale   uint64
}

// CacheKey joins the request fields in a fixed order and lower-cases the
// result, so keys compare case-insensitively but stay order-sensitive
func CacheKey(hw models.HardwareProfile, game, resolution, quality string) string {
	return strings.ToLower(strings.Join([]string{hw.CPU, hw.GPU, hw.RAM, game, resolution, quality}, "|"))
}

// MemoryCache is the in-process FPSCache. Staleness is judged at read time
// only; a stale entry stays in the map until it is overwritten, evicted by
// the optional size bound or purged by the optional sweeper.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]CacheEntry
	ttl        time.Duration
	maxEntries int // 0 means unbounded
	now        func() time.Time
	telemetry  *Telemetry

	hits   atomic.Uint64
	misses atomic.Uint64
	stale  atomic.Uint64
}

// CacheOption configures a MemoryCache
type CacheOption func(*MemoryCache)

// WithMaxEntries bounds the cache; inserting past the bound evicts the
// entry with the oldest timestamp
func WithMaxEntries(n int) CacheOption {
	return func(mc *MemoryCache) {
		if n > 0 {
			mc.maxEntries = n
		}
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) CacheOption {
	return func(mc *MemoryCache) {
		if now != nil {
			mc.now = now
		}
	}
}

// WithCacheTelemetry reports lookups and size to Prometheus
func WithCacheTelemetry(t *Telemetry) CacheOption {
	return func(mc *MemoryCache) {
		mc.telemetry = t
	}
}

// NewMemoryCache creates an empty cache. A non-positive ttl falls back to
// DefaultCacheTTL.
func NewMemoryCache(ttl time.Duration, opts ...CacheOption) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	mc := &MemoryCache{
		entries: make(map[string]CacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(mc)
	}
	return mc
}

// isFresh checks an entry against the TTL
func (mc *MemoryCache) isFresh(entry CacheEntry) bool {
	return mc.now().Sub(entry.Timestamp) < mc.ttl
}

// Get returns a fresh entry. Stale entries count as misses and are left in place.
func (mc *MemoryCache) Get(key string) (CacheEntry, bool) {
	mc.mu.RLock()
	entry, ok := mc.entries[key]
	mc.mu.RUnlock()

	if !ok {
		mc.misses.Add(1)
		mc.telemetry.cacheLookup("miss")
		return CacheEntry{}, false
	}
	if !mc.isFresh(entry) {
		mc.stale.Add(1)
		mc.telemetry.cacheLookup("stale")
		return CacheEntry{}, false
	}

	mc.hits.Add(1)
	mc.telemetry.cacheLookup("hit")
	return entry, true
}

// Peek is Get without touching the lookup counters
func (mc *MemoryCache) Peek(key string) (CacheEntry, bool) {
	mc.mu.RLock()
	entry, ok := mc.entries[key]
	mc.mu.RUnlock()

	if !ok || !mc.isFresh(entry) {
		return CacheEntry{}, false
	}
	return entry, true
}

// Set stores fps under key with the current timestamp
func (mc *MemoryCache) Set(key string, fps int) {
	mc.mu.Lock()
	if _, exists := mc.entries[key]; !exists && mc.maxEntries > 0 && len(mc.entries) >= mc.maxEntries {
		mc.evictOldestLocked()
	}
	mc.entries[key] = CacheEntry{FPS: fps, Timestamp: mc.now()}
	size := len(mc.entries)
	mc.mu.Unlock()

	mc.telemetry.cacheSize(size)
}

// evictOldestLocked drops the entry with the oldest timestamp. Caller holds mu.
func (mc *MemoryCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range mc.entries {
		if oldestKey == "" || entry.Timestamp.Before(oldest) {
			oldestKey = key
			oldest = entry.Timestamp
		}
	}
	if oldestKey != "" {
		delete(mc.entries, oldestKey)
	}
}

// Len returns the number of stored entries, stale ones included
func (mc *MemoryCache) Len() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.entries)
}

// Stats returns the cache counters
func (mc *MemoryCache) Stats() CacheStats {
	return CacheStats{
		Entries: mc.Len(),
		Hits:    mc.hits.Load(),
		Misses:  mc.misses.Load(),
		Stale:   mc.stale.Load(),
	}
}

// PurgeExpired removes every entry past its TTL and returns how many were removed
func (mc *MemoryCache) PurgeExpired() int {
	mc.mu.Lock()
	removed := 0
	for key, entry := range mc.entries {
		if !mc.isFresh(entry) {
			delete(mc.entries, key)
			removed++
		}
	}
	size := len(mc.entries)
	mc.mu.Unlock()

	mc.telemetry.cacheSize(size)
	return removed
}

// StartSweeper purges expired entries every interval until ctx is done.
// A non-positive interval disables the sweeper.
func (mc *MemoryCache) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := mc.PurgeExpired(); removed > 0 {
					log.Printf("[CACHE] Purged %d expired estimates", removed)
				}
			}
		}
	}()

	log.Printf("[CACHE] Sweeper started (interval: %v)", interval)
}
