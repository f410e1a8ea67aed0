package dataset

import (
	"sync"
)

// recordCache is an insert-only map of bounded size.
// Entries are never evicted; once full, new keys are not stored.
type recordCache struct {
	mu       sync.RWMutex
	records  map[int]*flowRecord
	capacity int
}

func newRecordCache(capacity int) *recordCache {
	return &recordCache{
		records:  make(map[int]*flowRecord),
		capacity: capacity,
	}
}

func (c *recordCache) get(i int) (*flowRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.records[i]
	return r, ok
}

// add stores r and reports whether it is cached. Existing key is overwritten.
func (c *recordCache) add(i int, r *flowRecord) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[i]; !ok && len(c.records) >= c.capacity {
		return false
	}
	c.records[i] = r
	return true
}

func (c *recordCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
