package decoder

import (
	"sync"

	"github.com/overlaylab/stegosub/internal/subtitle"
	"github.com/overlaylab/stegosub/internal/timing"
)

// Stats tracks decode counters with thread-safe operations. Counters are
// observational only and never gate pipeline behaviour.
type Stats struct {
	mu sync.Mutex

	total     int64
	succeeded int64
	failed    int64
	byKind    map[FailureKind]int64

	// Rolling average computed incrementally: avg += (x - avg) / n.
	avgDecodeMs  float64
	lastDecodeMs float64
}

func newStats() *Stats {
	return &Stats{byKind: make(map[FailureKind]int64)}
}

func (s *Stats) recordSuccess(decodeMs float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	s.succeeded++
	s.observe(decodeMs)
}

func (s *Stats) recordFailure(kind FailureKind, decodeMs float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	s.failed++
	s.byKind[kind]++
	s.observe(decodeMs)
}

// observe folds one decode time into the rolling average. Callers hold mu.
func (s *Stats) observe(decodeMs float64) {
	s.lastDecodeMs = decodeMs
	s.avgDecodeMs += (decodeMs - s.avgDecodeMs) / float64(s.total)
}

func (s *Stats) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = 0
	s.succeeded = 0
	s.failed = 0
	s.byKind = make(map[FailureKind]int64)
	s.avgDecodeMs = 0
	s.lastDecodeMs = 0
}

// Snapshot is the exported, JSON-ready view of the decoder counters plus
// the pass-through stats of the cache, timing manager and synchronizer.
type Snapshot struct {
	TotalFrames     int64                 `json:"total_frames"`
	Succeeded       int64                 `json:"succeeded"`
	Failed          int64                 `json:"failed"`
	FailuresByStage map[string]int64      `json:"failures_by_stage,omitempty"`
	AvgDecodeMs     float64               `json:"avg_decode_ms"`
	LastDecodeMs    float64               `json:"last_decode_ms"`
	Cache           subtitle.CacheStats   `json:"cache"`
	Queue           subtitle.ManagerStats `json:"queue"`
	Sync            timing.Stats          `json:"sync"`
}

// GetStats assembles a read-only snapshot of every component's counters.
func (d *Decoder) GetStats() Snapshot {
	d.stats.mu.Lock()
	snap := Snapshot{
		TotalFrames:  d.stats.total,
		Succeeded:    d.stats.succeeded,
		Failed:       d.stats.failed,
		AvgDecodeMs:  d.stats.avgDecodeMs,
		LastDecodeMs: d.stats.lastDecodeMs,
	}
	if len(d.stats.byKind) > 0 {
		snap.FailuresByStage = make(map[string]int64, len(d.stats.byKind))
		for k, v := range d.stats.byKind {
			snap.FailuresByStage[string(k)] = v
		}
	}
	d.stats.mu.Unlock()

	snap.Cache = d.cache.Stats()
	snap.Queue = d.manager.Stats()
	snap.Sync = d.sync.Stats()
	return snap
}
