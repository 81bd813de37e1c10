package timing

import (
	"time"

	"github.com/overlaylab/stegosub/internal/monitoring"
	"github.com/overlaylab/stegosub/internal/timeutil"
)

// State is the synchronizer lifecycle state.
type State int

const (
	// Uninitialized means no timing record has been accepted yet.
	Uninitialized State = iota
	// Tracking means a base timestamp is established and history is
	// accumulating.
	Tracking
)

// String returns the lowercase state name.
func (s State) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "uninitialized"
}

const (
	// historyCap bounds the rolling sample window.
	historyCap = 10
	// frameJumpGap is the largest frame-number gap treated as continuous
	// playback. Camera decode misses frames routinely, so small gaps are
	// normal; bigger ones flag a seek or corruption.
	frameJumpGap = 2
	// DriftWarnMs is the drift magnitude past which updates are flagged.
	DriftWarnMs = 500
)

// sample is one accepted timing record with its arrival wall time.
type sample struct {
	frameNumber uint32
	timestampMs uint32
	receivedAt  time.Time
}

// Synchronizer tracks embedded-time versus wall-clock drift over a rolling
// window of accepted timing records. It detects drift and frame jumps but
// does not correct playback timing; that stays with the caller.
//
// Not safe for concurrent use; the decoder serializes access.
type Synchronizer struct {
	clock timeutil.Clock

	state         State
	baseTimestamp int64 // first embedded timestamp, -1 until tracking
	lastFrame     int64 // last accepted frame number, -1 until tracking

	history [historyCap]sample
	head    int
	size    int
}

// NewSynchronizer creates a Synchronizer in the uninitialized state. A nil
// clock falls back to the real clock.
func NewSynchronizer(clock timeutil.Clock) *Synchronizer {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	s := &Synchronizer{clock: clock}
	s.Reset()
	return s
}

// Update reports what the synchronizer noticed about one accepted record.
type Update struct {
	FrameJump    bool
	JumpSize     int64
	DriftMs      int64
	DriftWarning bool
}

// Observe feeds an accepted record into the synchronizer and reports what
// it noticed. Warnings never halt processing.
func (s *Synchronizer) Observe(rec *Record) Update {
	var up Update

	if s.state == Uninitialized {
		s.state = Tracking
		s.baseTimestamp = int64(rec.TimestampMs)
	} else if gap := int64(rec.FrameNumber) - s.lastFrame; gap > frameJumpGap {
		up.FrameJump = true
		up.JumpSize = gap
		monitoring.Debugf("timing: frame jump of %d (frame %d -> %d), likely seek or corruption",
			gap, s.lastFrame, rec.FrameNumber)
	}
	s.lastFrame = int64(rec.FrameNumber)

	s.history[s.head] = sample{
		frameNumber: rec.FrameNumber,
		timestampMs: rec.TimestampMs,
		receivedAt:  s.clock.Now(),
	}
	s.head = (s.head + 1) % historyCap
	if s.size < historyCap {
		s.size++
	}

	up.DriftMs = s.drift()
	if up.DriftMs > DriftWarnMs || up.DriftMs < -DriftWarnMs {
		up.DriftWarning = true
		monitoring.Debugf("timing: drift %dms over %d samples", up.DriftMs, s.size)
	}
	return up
}

// drift compares the embedded-timestamp span of the window against its
// wall-clock span. Positive drift means embedded time is running ahead of
// wall time.
func (s *Synchronizer) drift() int64 {
	if s.size < 2 {
		return 0
	}
	newest := s.history[(s.head-1+historyCap)%historyCap]
	oldest := s.history[(s.head-s.size+historyCap)%historyCap]

	embedded := int64(newest.timestampMs) - int64(oldest.timestampMs)
	wall := newest.receivedAt.Sub(oldest.receivedAt).Milliseconds()
	return embedded - wall
}

// State returns the current lifecycle state.
func (s *Synchronizer) State() State { return s.state }

// Stats is a read-only snapshot for observability.
type Stats struct {
	State         string `json:"state"`
	BaseTimestamp int64  `json:"base_timestamp_ms"`
	LastFrame     int64  `json:"last_frame"`
	WindowSize    int    `json:"window_size"`
	DriftMs       int64  `json:"drift_ms"`
}

// Stats returns a snapshot of the synchronizer state.
func (s *Synchronizer) Stats() Stats {
	return Stats{
		State:         s.state.String(),
		BaseTimestamp: s.baseTimestamp,
		LastFrame:     s.lastFrame,
		WindowSize:    s.size,
		DriftMs:       s.drift(),
	}
}

// Reset clears the synchronizer back to its initial state: no base
// timestamp, no last frame, empty history.
func (s *Synchronizer) Reset() {
	s.state = Uninitialized
	s.baseTimestamp = -1
	s.lastFrame = -1
	s.head = 0
	s.size = 0
	s.history = [historyCap]sample{}
}
