package subtitle

import "sort"

// Manager answers "what subtitle is active right now". It keeps a queue of
// decoded cues sorted by start time, one active slot, and a short history
// of cues that finished displaying.
//
// The active slot is revalidated cheaply on every query: while the current
// cue still covers the playback time the queue is not rescanned.
//
// Not safe for concurrent use; the decoder serializes access.
type Manager struct {
	queue   []*Subtitle // sorted by StartTimeMs
	queued  map[string]bool
	active  *Subtitle
	history []*Subtitle

	// CleanupThresholdMs is the age past its end time after which a queued
	// cue is purged.
	CleanupThresholdMs int64
}

const (
	// DefaultCleanupThresholdMs purges cues ten seconds after they expire.
	DefaultCleanupThresholdMs = 10000
	historyCap                = 20
)

// NewManager creates an empty Manager with the default cleanup threshold.
func NewManager() *Manager {
	return &Manager{
		queued:             make(map[string]bool),
		CleanupThresholdMs: DefaultCleanupThresholdMs,
	}
}

// Add enqueues a finalized cue, keeping the queue sorted by start time.
// Cues already queued (same ID) are ignored; re-decoding the same cue from
// a later frame is the common case, not an error.
func (m *Manager) Add(s *Subtitle) {
	if s == nil || s.ID == "" || m.queued[s.ID] {
		return
	}
	i := sort.Search(len(m.queue), func(i int) bool {
		return m.queue[i].StartTimeMs > s.StartTimeMs
	})
	m.queue = append(m.queue, nil)
	copy(m.queue[i+1:], m.queue[i:])
	m.queue[i] = s
	m.queued[s.ID] = true
}

// ActiveAt returns the cue covering the given playback time, or nil — a
// frequent, entirely normal outcome. The previous active cue is pushed into
// the bounded history when it is replaced or expires.
func (m *Manager) ActiveAt(tMs int64) *Subtitle {
	if m.active != nil && m.active.ActiveAt(tMs) {
		return m.active
	}

	var next *Subtitle
	for _, s := range m.queue {
		if s.StartTimeMs > tMs {
			break // sorted queue: nothing later can be active
		}
		if s.ActiveAt(tMs) {
			next = s
			break
		}
	}

	if m.active != nil && m.active != next {
		m.history = append(m.history, m.active)
		if len(m.history) > historyCap {
			m.history = m.history[len(m.history)-historyCap:]
		}
	}
	m.active = next
	return m.active
}

// Cleanup purges queued cues whose end time is older than the cleanup
// threshold relative to the given playback time. This bounds queue memory
// over long sessions independently of cache eviction.
func (m *Manager) Cleanup(tMs int64) int {
	cutoff := tMs - m.CleanupThresholdMs
	kept := m.queue[:0]
	purged := 0
	for _, s := range m.queue {
		if s.EndTimeMs < cutoff {
			delete(m.queued, s.ID)
			purged++
			continue
		}
		kept = append(kept, s)
	}
	m.queue = kept
	return purged
}

// ManagerStats is a read-only snapshot for observability.
type ManagerStats struct {
	QueueLen   int    `json:"queue_len"`
	HistoryLen int    `json:"history_len"`
	ActiveID   string `json:"active_id,omitempty"`
}

// Stats returns the current queue counters.
func (m *Manager) Stats() ManagerStats {
	st := ManagerStats{QueueLen: len(m.queue), HistoryLen: len(m.history)}
	if m.active != nil {
		st.ActiveID = m.active.ID
	}
	return st
}

// Reset clears the queue, the active slot and the history.
func (m *Manager) Reset() {
	m.queue = nil
	m.queued = make(map[string]bool)
	m.active = nil
	m.history = nil
}
