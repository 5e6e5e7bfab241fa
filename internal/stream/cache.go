package stream

import (
	"sync"
	"time"

	"MarketPulse/internal/domain/models"
)

// Cache is the last-value store for streamed data, keyed (symbol, dataType).
// The stream client is the only writer; any number of goroutines read. Entries
// live until Clear, so memory grows with the number of distinct pairs seen.
type Cache struct {
	mu   sync.RWMutex
	data map[string]map[models.DataType]models.CacheEntry
	now  func() time.Time
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]map[models.DataType]models.CacheEntry),
		now:  time.Now,
	}
}

// Put stores md as the latest value for its (symbol, dataType) pair.
func (c *Cache) Put(md *models.MarketData) {
	entry := models.CacheEntry{
		Symbol:     md.Symbol,
		DataType:   md.DataType,
		Data:       md.Data,
		ReceivedAt: c.now(),
	}
	c.mu.Lock()
	byType, ok := c.data[md.Symbol]
	if !ok {
		byType = make(map[models.DataType]models.CacheEntry)
		c.data[md.Symbol] = byType
	}
	byType[md.DataType] = entry
	c.mu.Unlock()
}

// Get returns the latest entry for (symbol, dataType), if any.
func (c *Cache) Get(symbol string, dt models.DataType) (models.CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.data[symbol][dt]
	return e, ok
}

// AllForSymbol returns every data type seen for symbol.
func (c *Cache) AllForSymbol(symbol string) map[models.DataType]models.CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	byType, ok := c.data[symbol]
	if !ok {
		return nil
	}
	out := make(map[models.DataType]models.CacheEntry, len(byType))
	for dt, e := range byType {
		out[dt] = e
	}
	return out
}

// All returns a copy of the full symbol → dataType → entry mapping.
func (c *Cache) All() map[string]map[models.DataType]models.CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]map[models.DataType]models.CacheEntry, len(c.data))
	for sym, byType := range c.data {
		inner := make(map[models.DataType]models.CacheEntry, len(byType))
		for dt, e := range byType {
			inner[dt] = e
		}
		out[sym] = inner
	}
	return out
}

// IsStale reports whether (symbol, dataType) has no entry or one older than maxAge.
func (c *Cache) IsStale(symbol string, dt models.DataType, maxAge time.Duration) bool {
	c.mu.RLock()
	e, ok := c.data[symbol][dt]
	c.mu.RUnlock()
	if !ok {
		return true
	}
	return c.now().Sub(e.ReceivedAt) > maxAge
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.data = make(map[string]map[models.DataType]models.CacheEntry)
	c.mu.Unlock()
}

// Len returns the number of (symbol, dataType) entries held.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, byType := range c.data {
		n += len(byType)
	}
	return n
}
