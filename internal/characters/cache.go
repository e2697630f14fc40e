package characters

import (
	"sync"
	"time"
)

// Entry is one cached upstream response: the validator the source sent, the
// raw payload bytes, the decoded form of those bytes, and when it was
// fetched. Payload and Value always describe the same response, so a
// revalidated entry can be served without re-parsing.
type Entry struct {
	ETag      string
	Payload   []byte
	Value     any
	FetchedAt time.Time
}

// Cache is the injectable read/refresh contract used by RemoteProvider.
// Load must never observe a partially written entry; Swap replaces the whole
// entry atomically.
type Cache interface {
	Load(key string) (Entry, bool)
	Swap(key string, entry Entry)
}

// MemoryCache is the in-process Cache. Reads take a shared lock; a refresh
// swaps the complete entry under the write lock, so concurrent readers see
// either the old or the new entry, never a mix.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Entry)}
}

func (c *MemoryCache) Load(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	return entry, ok
}

func (c *MemoryCache) Swap(key string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry
}
