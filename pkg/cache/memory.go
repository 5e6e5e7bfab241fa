package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	value    interface{}
	expireAt time.Time
	lastUsed time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return now.After(e.expireAt)
}

// MemoryCache is the in-process Service backend. Capacity is bounded and the
// least recently used entry is evicted when the cache is full.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	maxSize int
	cleanup *time.Ticker
}

// NewMemoryCache starts a cache with a background sweep for expired entries.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:         1000,
		CleanupInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		entries: make(map[string]*memoryEntry),
		maxSize: cfg.MaxSize,
		cleanup: time.NewTicker(cfg.CleanupInterval),
	}
	go mc.sweepExpired()
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	now := time.Now()
	if expiration <= 0 {
		// Entries without a TTL still age out eventually.
		expiration = 7 * 24 * time.Hour
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if len(mc.entries) >= mc.maxSize {
		mc.evictOldest()
	}
	mc.entries[key] = &memoryEntry{
		value:    value,
		expireAt: now.Add(expiration),
		lastUsed: now,
	}
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	now := time.Now()

	mc.mu.Lock()
	defer mc.mu.Unlock()

	entry, ok := mc.entries[key]
	if !ok {
		return ErrCacheMiss
	}
	if entry.expired(now) {
		delete(mc.entries, key)
		return ErrCacheMiss
	}
	entry.lastUsed = now

	switch d := dest.(type) {
	case *string:
		if s, ok := entry.value.(string); ok {
			*d = s
			return nil
		}
	case *interface{}:
		*d = entry.value
		return nil
	}

	// Typed dests go through JSON, matching the Redis backend's contract.
	data, err := json.Marshal(entry.value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for _, key := range keys {
		delete(mc.entries, key)
	}
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	now := time.Now()

	mc.mu.RLock()
	defer mc.mu.RUnlock()

	for _, key := range keys {
		if entry, ok := mc.entries[key]; ok && !entry.expired(now) {
			return true, nil
		}
	}
	return false, nil
}

// Close stops the background sweep. Entries stay readable until the cache is
// garbage collected.
func (mc *MemoryCache) Close() error {
	if mc.cleanup != nil {
		mc.cleanup.Stop()
	}
	return nil
}

// evictOldest drops the least recently used entry. Caller holds mc.mu.
func (mc *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	for key, entry := range mc.entries {
		if oldestKey == "" || entry.lastUsed.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.lastUsed
		}
	}
	if oldestKey != "" {
		delete(mc.entries, oldestKey)
	}
}

func (mc *MemoryCache) sweepExpired() {
	for range mc.cleanup.C {
		now := time.Now()
		mc.mu.Lock()
		for key, entry := range mc.entries {
			if entry.expired(now) {
				delete(mc.entries, key)
			}
		}
		mc.mu.Unlock()
	}
}
