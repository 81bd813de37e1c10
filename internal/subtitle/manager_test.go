package subtitle

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addCue(m *Manager, id string, start, end int64) *Subtitle {
	s := &Subtitle{ID: id, StartTimeMs: start, EndTimeMs: end, Text: "texte " + id}
	m.Add(s)
	return s
}

func TestActiveAtCorrectness(t *testing.T) {
	m := NewManager()
	a := addCue(m, "a", 0, 2000)
	b := addCue(m, "b", 2000, 4000)

	assert.Same(t, a, m.ActiveAt(1000))
	assert.Same(t, b, m.ActiveAt(2000), "half-open windows hand over exactly at the boundary")
	assert.Nil(t, m.ActiveAt(5000))
}

func TestActiveAtCheapPath(t *testing.T) {
	m := NewManager()
	a := addCue(m, "a", 0, 2000)

	require.Same(t, a, m.ActiveAt(100))
	// While the active cue still covers the time, repeated queries return
	// it without rescanning (observable via unchanged history).
	assert.Same(t, a, m.ActiveAt(1500))
	assert.Equal(t, 0, m.Stats().HistoryLen)

	// Expiry pushes the cue into history.
	assert.Nil(t, m.ActiveAt(3000))
	assert.Equal(t, 1, m.Stats().HistoryLen)
}

func TestActiveAtOutOfOrderInsertion(t *testing.T) {
	m := NewManager()
	late := addCue(m, "late", 4000, 6000)
	early := addCue(m, "early", 0, 2000)

	assert.Same(t, early, m.ActiveAt(500))
	assert.Same(t, late, m.ActiveAt(4500))
}

func TestAddDeduplicatesByID(t *testing.T) {
	m := NewManager()
	addCue(m, "a", 0, 2000)
	addCue(m, "a", 0, 2000) // same cue decoded from a later frame
	assert.Equal(t, 1, m.Stats().QueueLen)
}

func TestHistoryBounded(t *testing.T) {
	m := NewManager()
	for i := int64(0); i < 30; i++ {
		addCue(m, fmt.Sprintf("h%d", i), i*1000, i*1000+500)
	}
	// Walk time forward so every cue activates then expires.
	for i := int64(0); i < 30; i++ {
		m.ActiveAt(i*1000 + 100)
		m.ActiveAt(i*1000 + 600)
	}
	assert.LessOrEqual(t, m.Stats().HistoryLen, 20)
}

func TestCleanupPurgesExpired(t *testing.T) {
	m := NewManager()
	addCue(m, "old", 0, 1000)
	addCue(m, "recent", 9000, 12000)

	purged := m.Cleanup(15000) // cutoff = 5000: "old" (end 1000) goes
	assert.Equal(t, 1, purged)
	assert.Equal(t, 1, m.Stats().QueueLen)

	// A purged cue can be re-added; its ID is no longer tracked as queued.
	addCue(m, "old", 0, 1000)
	assert.Equal(t, 2, m.Stats().QueueLen)
}

func TestCleanupNeverRaises(t *testing.T) {
	m := NewManager()
	assert.Equal(t, 0, m.Cleanup(0))
	assert.Nil(t, m.ActiveAt(123))
}

func TestManagerReset(t *testing.T) {
	m := NewManager()
	addCue(m, "a", 0, 2000)
	m.ActiveAt(100)

	m.Reset()
	st := m.Stats()
	assert.Equal(t, 0, st.QueueLen)
	assert.Equal(t, 0, st.HistoryLen)
	assert.Empty(t, st.ActiveID)
	assert.Nil(t, m.ActiveAt(100))
}
