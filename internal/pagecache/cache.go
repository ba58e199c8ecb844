// Package pagecache holds previously extracted page markdown in memory.
//
// Entries are keyed by (document ID, page number) and live for the life of
// the process. Nothing is evicted automatically; entries disappear only
// through explicit invalidation. Two concurrent callers that miss on the
// same key may both pay for extraction and both write the result - the last
// write wins, which is acceptable because extraction output for a key is
// interchangeable across runs.
package pagecache

import "sync"

// Key identifies one cached page extraction.
type Key struct {
	DocID string
	Page  int
}

// Cache maps (document ID, page number) to extracted page markdown.
// A single instance is constructed at process start and shared by every
// component that reads or writes page extractions.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]string
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[Key]string)}
}

// Get returns the cached markdown for a page, if present.
func (c *Cache) Get(docID string, page int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	content, ok := c.entries[Key{DocID: docID, Page: page}]
	return content, ok
}

// Put stores markdown for a page, overwriting any existing entry.
func (c *Cache) Put(docID string, page int, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[Key{DocID: docID, Page: page}] = content
}

// Invalidate removes all entries for one document and returns the number
// of entries removed.
func (c *Cache) Invalidate(docID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k := range c.entries {
		if k.DocID == docID {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// InvalidateAll removes every entry and returns the prior entry count.
func (c *Cache) InvalidateAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := len(c.entries)
	c.entries = make(map[Key]string)
	return removed
}

// Size returns the current entry count.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
