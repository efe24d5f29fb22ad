package engine

import (
	"strings"
	"sync"
	"time"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// docCache holds per-document read results for a bounded time. It has its
// own lock so cache hits never touch the engine lock.
type docCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	doc types.Document
	at  time.Time
}

func newDocCache(ttl time.Duration) *docCache {
	return &docCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func cacheKey(col, id string) string {
	return col + ":" + id
}

// get returns a clone of the cached document, or nil on miss or expiry.
func (c *docCache) get(col, id string) types.Document {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[cacheKey(col, id)]
	if !ok {
		return nil
	}
	if c.ttl > 0 && c.now().Sub(entry.at) > c.ttl {
		delete(c.entries, cacheKey(col, id))
		return nil
	}
	return entry.doc.Clone()
}

// put stores a clone of doc.
func (c *docCache) put(col string, doc types.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(col, doc.ID())] = cacheEntry{doc: doc.Clone(), at: c.now()}
}

// invalidateCollection drops every entry of one collection. Mutations call
// this instead of tracking individual ids; the cache refills on read.
func (c *docCache) invalidateCollection(col string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := col + ":"
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// reset drops everything. Used by import and rollback.
func (c *docCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
}
