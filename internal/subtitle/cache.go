package subtitle

import "container/list"

// DefaultCacheCapacity bounds the subtitle cache when the caller does not
// choose a size.
const DefaultCacheCapacity = 50

// Cache is a capacity-bounded subtitle store with true LRU eviction: both
// reads and writes refresh an entry's recency. Hit and miss counters are
// kept for observability only.
//
// Not safe for concurrent use; the decoder serializes access.
type Cache struct {
	capacity int
	order    *list.List // front = most recently used; values are *Subtitle
	byID     map[string]*list.Element

	hits   int64
	misses int64
}

// NewCache creates a cache holding at most capacity entries. Non-positive
// capacities fall back to the default.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		byID:     make(map[string]*list.Element, capacity),
	}
}

// Put stores a subtitle, refreshing recency when the ID is already present.
// Inserting beyond capacity evicts the least-recently-accessed entry.
func (c *Cache) Put(s *Subtitle) {
	if s == nil || s.ID == "" {
		return
	}
	if el, ok := c.byID[s.ID]; ok {
		el.Value = s
		c.order.MoveToFront(el)
		return
	}
	c.byID[s.ID] = c.order.PushFront(s)
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.byID, oldest.Value.(*Subtitle).ID)
	}
}

// Get looks up a subtitle by ID, refreshing its recency on a hit.
func (c *Cache) Get(id string) (*Subtitle, bool) {
	el, ok := c.byID[id]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.order.MoveToFront(el)
	return el.Value.(*Subtitle), true
}

// Len returns the number of cached entries.
func (c *Cache) Len() int { return c.order.Len() }

// CacheStats is a read-only snapshot of the cache counters.
type CacheStats struct {
	Size     int   `json:"size"`
	Capacity int   `json:"capacity"`
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
}

// Stats returns the current cache counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Size:     c.order.Len(),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
	}
}

// Reset drops every entry and zeroes the counters.
func (c *Cache) Reset() {
	c.order.Init()
	c.byID = make(map[string]*list.Element, c.capacity)
	c.hits = 0
	c.misses = 0
}
