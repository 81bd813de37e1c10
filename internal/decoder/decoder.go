// Package decoder orchestrates the per-frame pipeline that turns a camera
// frame plus detected markers into cached, time-addressable subtitles.
//
// This package is the composition root: it owns the cache, the timing
// manager and the synchronizer as explicit fields (no package globals), and
// it imports from every stage package while none of them import it.
//
// A Decoder is not reentrant: the transient warped-frame and region buffers
// are exclusively owned for the duration of one DecodeFrame call, so the
// detection loop must skip frames while a decode is in flight rather than
// queue them.
package decoder

import (
	"fmt"

	"github.com/overlaylab/stegosub/internal/decompress"
	"github.com/overlaylab/stegosub/internal/frame"
	"github.com/overlaylab/stegosub/internal/geometry"
	"github.com/overlaylab/stegosub/internal/integrity"
	"github.com/overlaylab/stegosub/internal/lsb"
	"github.com/overlaylab/stegosub/internal/marker"
	"github.com/overlaylab/stegosub/internal/monitoring"
	"github.com/overlaylab/stegosub/internal/perspective"
	"github.com/overlaylab/stegosub/internal/region"
	"github.com/overlaylab/stegosub/internal/subtitle"
	"github.com/overlaylab/stegosub/internal/timeutil"
	"github.com/overlaylab/stegosub/internal/timing"
)

// FailureKind tags the pipeline stage a decode failed at. Every failure is
// local to its frame; the caller simply tries again with the next one.
type FailureKind string

const (
	FailureNone          FailureKind = ""
	FailureInput         FailureKind = "input"
	FailureGeometry      FailureKind = "geometry"
	FailureExtraction    FailureKind = "extraction"
	FailureIntegrity     FailureKind = "integrity"
	FailureDecompression FailureKind = "decompression"
	FailureParse         FailureKind = "parse"
)

// DecodeResult is the structured outcome of one DecodeFrame call.
type DecodeResult struct {
	Success      bool               `json:"success"`
	Subtitle     *subtitle.Subtitle `json:"subtitle,omitempty"`
	FrameNumber  uint32             `json:"frame_number,omitempty"`
	TimestampMs  uint32             `json:"timestamp_ms,omitempty"`
	DecodeTimeMs float64            `json:"decode_time_ms"`
	// Partial marks subtitles recovered through truncated-prefix
	// decompression so the UI can render them distinctly.
	Partial bool        `json:"partial,omitempty"`
	Kind    FailureKind `json:"error_kind,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Observer receives every decode outcome, success or failure. Used by the
// optional session recorder; must not block.
type Observer interface {
	ObserveDecode(DecodeResult)
}

// Config carries construction-time decoder options. The zero value is
// usable.
type Config struct {
	// CacheCapacity bounds the subtitle cache; 0 uses the default.
	CacheCapacity int
	// CleanupThresholdMs overrides the queue purge age; 0 uses the default.
	CleanupThresholdMs int64
	// Clock supplies wall time; nil uses the real clock.
	Clock timeutil.Clock
	// Observer, when set, receives every decode outcome.
	Observer Observer
}

// Decoder sequences the per-frame pipeline and owns all decoding state.
type Decoder struct {
	vision   perspective.Vision
	clock    timeutil.Clock
	observer Observer

	cache   *subtitle.Cache
	manager *subtitle.Manager
	sync    *timing.Synchronizer
	stats   *Stats
}

// New creates a Decoder bound to the given vision capability.
func New(vision perspective.Vision, cfg Config) *Decoder {
	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	manager := subtitle.NewManager()
	if cfg.CleanupThresholdMs > 0 {
		manager.CleanupThresholdMs = cfg.CleanupThresholdMs
	}
	return &Decoder{
		vision:   vision,
		clock:    clock,
		observer: cfg.Observer,
		cache:    subtitle.NewCache(cfg.CacheCapacity),
		manager:  manager,
		sync:     timing.NewSynchronizer(clock),
		stats:    newStats(),
	}
}

// Ready reports whether the decoder can attempt decodes: the vision
// capability must be present. Its absence is reported once by the caller,
// not retried per frame.
func (d *Decoder) Ready() error {
	if d.vision == nil {
		return fmt.Errorf("vision capability not available")
	}
	return nil
}

// DecodeFrame runs the full pipeline over one camera frame. Every stage can
// short-circuit into a structured failure carrying the stage tag, a
// human-readable reason and the elapsed time; the transient region buffers
// are released on every exit path.
func (d *Decoder) DecodeFrame(f *frame.RGBA, t *perspective.Transform, corners *marker.OrderedCorners) DecodeResult {
	start := d.clock.Now()

	fail := func(kind FailureKind, err error) DecodeResult {
		res := DecodeResult{
			Kind:         kind,
			Error:        err.Error(),
			DecodeTimeMs: float64(d.clock.Since(start).Microseconds()) / 1000,
		}
		d.stats.recordFailure(kind, res.DecodeTimeMs)
		monitoring.Debugf("decode failed at %s: %v", kind, err)
		d.notify(res)
		return res
	}

	// Stage: input validation. Reject before touching pixels.
	if err := f.Validate(); err != nil {
		return fail(FailureInput, err)
	}
	if t == nil {
		return fail(FailureInput, fmt.Errorf("missing perspective transform"))
	}
	if err := t.Validate(); err != nil {
		return fail(FailureInput, err)
	}

	// Stage: marker validation.
	validation := marker.Validate(corners, f.Width, f.Height)
	if !validation.Valid {
		return fail(FailureGeometry, fmt.Errorf("marker validation: %v", validation.Errors))
	}
	// An unreasonable transform skips the frame; detection continues.
	if !t.ReasonableForDetection() {
		return fail(FailureGeometry, fmt.Errorf("transform unreasonable (scale %.2f, rotation %.1f)",
			t.ScaleFactor(), t.RotationAngle()))
	}

	// Stage: frontal warp and region extraction.
	warped, err := perspective.WarpToFrontal(f, t)
	if err != nil {
		return fail(FailureExtraction, err)
	}
	regions, err := region.Extract(warped)
	if err != nil {
		frame.Put(warped) // Extract only takes ownership on success
		return fail(FailureExtraction, err)
	}
	defer regions.Release()

	// Stage: timing strip.
	timingBytes, err := lsb.UnpackN(regions.Timing, timing.RecordSize)
	if err != nil {
		return fail(FailureExtraction, err)
	}
	rec, err := timing.ParseRecord(timingBytes)
	if err != nil {
		return fail(FailureIntegrity, err)
	}
	d.sync.Observe(rec)

	// Stage: subtitle band.
	bandBytes, err := lsb.Unpack(regions.Subtitle)
	if err != nil {
		return fail(FailureExtraction, err)
	}
	payload, err := integrity.ParseSubtitleBlock(bandBytes)
	if err != nil {
		return fail(FailureIntegrity, err)
	}
	if a := integrity.AnalyzeBytes(payload); a.Suspect {
		// Advisory only; the checksum already vouched for the payload.
		monitoring.Debugf("subtitle payload flagged suspect: %s", a.Reason)
	}

	// Stage: decompression with fallback, then structural check.
	inflated, err := decompress.Decompress(payload)
	if err != nil {
		return fail(FailureDecompression, err)
	}
	if err := integrity.ValidateSubtitleStructure(inflated.Text); err != nil {
		return fail(FailureIntegrity, err)
	}

	// Stage: parse, validate, format.
	sub, err := subtitle.Parse(inflated.Text, int64(rec.TimestampMs))
	if err != nil {
		return fail(FailureParse, err)
	}
	if err := sub.Validate(); err != nil {
		return fail(FailureParse, err)
	}
	sub.Finalize()

	// Stage: cache and enqueue, then bound queue memory.
	d.cache.Put(sub)
	d.manager.Add(sub)
	d.manager.Cleanup(int64(rec.TimestampMs))

	res := DecodeResult{
		Success:      true,
		Subtitle:     sub,
		FrameNumber:  rec.FrameNumber,
		TimestampMs:  rec.TimestampMs,
		Partial:      inflated.Partial,
		DecodeTimeMs: float64(d.clock.Since(start).Microseconds()) / 1000,
	}
	d.stats.recordSuccess(res.DecodeTimeMs)
	d.notify(res)
	return res
}

// DetectAndDecode runs the full detection-plus-decode path for callers that
// do not drive the vision capability themselves: corner candidates are
// scored, the best set above the accept threshold picked, a transform
// estimated onto the canonical marker positions, and the frame decoded.
func (d *Decoder) DetectAndDecode(f *frame.RGBA) DecodeResult {
	start := d.clock.Now()
	fail := func(kind FailureKind, err error) DecodeResult {
		res := DecodeResult{
			Kind:         kind,
			Error:        err.Error(),
			DecodeTimeMs: float64(d.clock.Since(start).Microseconds()) / 1000,
		}
		d.stats.recordFailure(kind, res.DecodeTimeMs)
		d.notify(res)
		return res
	}

	if err := d.Ready(); err != nil {
		return fail(FailureInput, err)
	}
	if err := f.Validate(); err != nil {
		return fail(FailureInput, err)
	}

	best := marker.SelectBest(d.vision.DetectCandidateCorners(f), f.Width, f.Height)
	if best == nil {
		return fail(FailureGeometry, fmt.Errorf("no marker detection above accept threshold"))
	}

	src := [4]geometry.Point{
		best.Corners.TopLeft.Point,
		best.Corners.TopRight.Point,
		best.Corners.BottomRight.Point,
		best.Corners.BottomLeft.Point,
	}
	dst := CanonicalMarkerPositions(f.Width, f.Height)
	t, err := d.vision.EstimateTransform(src, dst)
	if err != nil {
		return fail(FailureGeometry, fmt.Errorf("estimate transform: %w", err))
	}
	return d.DecodeFrame(f, t, best.Corners)
}

// CanonicalMarkerPositions returns where the four marker centres sit in a
// frontal frame of the given size, per the embedding layout.
func CanonicalMarkerPositions(width, height int) [4]geometry.Point {
	inset := float64(marker.MarkerInsetPx)
	w := float64(width)
	h := float64(height)
	return [4]geometry.Point{
		{X: inset, Y: inset},
		{X: w - inset, Y: inset},
		{X: w - inset, Y: h - inset},
		{X: inset, Y: h - inset},
	}
}

func (d *Decoder) notify(res DecodeResult) {
	if d.observer != nil {
		d.observer.ObserveDecode(res)
	}
}

// ActiveSubtitle returns the subtitle covering the given playback time, or
// nil. Queried on demand by the render loop, independently of decode
// cadence.
func (d *Decoder) ActiveSubtitle(currentTimeMs int64) *subtitle.Subtitle {
	return d.manager.ActiveAt(currentTimeMs)
}

// Lookup fetches a cached subtitle by ID.
func (d *Decoder) Lookup(id string) (*subtitle.Subtitle, bool) {
	return d.cache.Get(id)
}

// Reset returns every component to its initial state. Never call it
// concurrently with a decode.
func (d *Decoder) Reset() {
	d.cache.Reset()
	d.manager.Reset()
	d.sync.Reset()
	d.stats.reset()
}
