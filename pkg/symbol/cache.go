package symbol

import (
	"sync"
)

// Cache records resolver-service responses for the lifetime of the process.
// Implementations must be safe for concurrent use. The stored value is a
// pure function of the key, so concurrent Put calls for the same key may
// simply overwrite each other.
type Cache interface {
	Get(rawID string) (string, bool)
	Put(rawID, symbol string)
	Len() int
}

// MemoryCache is the default Cache backed by a mutex-guarded map.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]string),
	}
}

// Get returns the cached symbol for rawID.
func (c *MemoryCache) Get(rawID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sym, ok := c.entries[rawID]
	return sym, ok
}

// Put stores a resolved symbol. Overwrites are idempotent.
func (c *MemoryCache) Put(rawID, symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[rawID] = symbol
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
