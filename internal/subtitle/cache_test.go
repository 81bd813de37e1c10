package subtitle

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSub(id string, start int64) *Subtitle {
	return &Subtitle{ID: id, StartTimeMs: start, EndTimeMs: start + 2000, Text: "texte " + id}
}

func TestCacheBound(t *testing.T) {
	c := NewCache(3)
	for i := 0; i < 4; i++ {
		c.Put(makeSub(fmt.Sprintf("s%d", i), int64(i)*1000))
	}
	assert.Equal(t, 3, c.Len(), "capacity+1 inserts must leave capacity entries")

	_, ok := c.Get("s0")
	assert.False(t, ok, "oldest entry should have been evicted")
	for _, id := range []string{"s1", "s2", "s3"} {
		_, ok := c.Get(id)
		assert.True(t, ok, "entry %s should survive", id)
	}
}

func TestCacheLRUNotFIFO(t *testing.T) {
	c := NewCache(2)
	c.Put(makeSub("a", 0))
	c.Put(makeSub("b", 1000))

	// Touch "a" so "b" becomes least recently used.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put(makeSub("c", 2000))
	_, ok = c.Get("b")
	assert.False(t, ok, "least-recently-accessed entry must be evicted, not oldest-inserted")
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestCacheCounters(t *testing.T) {
	c := NewCache(0) // default capacity
	c.Put(makeSub("a", 0))

	c.Get("a")
	c.Get("a")
	c.Get("missing")

	st := c.Stats()
	assert.Equal(t, DefaultCacheCapacity, st.Capacity)
	assert.Equal(t, 1, st.Size)
	assert.Equal(t, int64(2), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
}

func TestCachePutRefreshesExisting(t *testing.T) {
	c := NewCache(2)
	c.Put(makeSub("a", 0))
	c.Put(makeSub("b", 1000))
	// Re-putting "a" refreshes it; inserting "c" must now evict "b".
	c.Put(makeSub("a", 0))
	c.Put(makeSub("c", 2000))

	_, ok := c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCacheIgnoresInvalid(t *testing.T) {
	c := NewCache(2)
	c.Put(nil)
	c.Put(&Subtitle{}) // no ID
	assert.Equal(t, 0, c.Len())
}

func TestCacheReset(t *testing.T) {
	c := NewCache(2)
	c.Put(makeSub("a", 0))
	c.Get("a")
	c.Get("zz")

	c.Reset()
	st := c.Stats()
	assert.Equal(t, 0, st.Size)
	assert.Equal(t, int64(0), st.Hits)
	assert.Equal(t, int64(0), st.Misses)
}
