// Package marker validates candidate corner-marker detections before the
// decoder trusts them for perspective correction.
//
// The external vision layer hands over four candidate corner points per
// frame. This package decides whether those points describe a plausible
// marker rectangle, scores the detection, and picks the best of several
// candidate sets. It never touches pixels.
package marker

import (
	"fmt"
	"math"

	"github.com/overlaylab/stegosub/internal/geometry"
)

// Embedded marker layout constants. These describe the coded patterns the
// encoder stamps into each frame; detection itself happens in the external
// vision layer but callers need the geometry to seed their search windows.
const (
	MarkerSizePx  = 20 // each corner marker is 20x20 pixels
	MarkerInsetPx = 60 // marker centres sit 60px in from each frame edge
)

// Corner identifies the logical role of a detected marker.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomRight
	BottomLeft
)

// String returns the lowercase name of the corner role.
func (c Corner) String() string {
	switch c {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomRight:
		return "bottom-right"
	case BottomLeft:
		return "bottom-left"
	}
	return "unknown"
}

// CornerPoint is a candidate marker location with detector confidence.
// Recomputed every frame, never persisted.
type CornerPoint struct {
	geometry.Point
	Strength float64 // detector confidence, nominally [0, 1]
	Corner   Corner
}

// OrderedCorners holds four corner points in canonical clockwise order.
// Entries may be nil when the detector missed a corner; validation treats
// that as a hard failure.
type OrderedCorners struct {
	TopLeft     *CornerPoint
	TopRight    *CornerPoint
	BottomRight *CornerPoint
	BottomLeft  *CornerPoint
}

// points returns the corner positions in canonical order. Callers must have
// established that all four are present.
func (oc *OrderedCorners) points() [4]geometry.Point {
	return [4]geometry.Point{
		oc.TopLeft.Point,
		oc.TopRight.Point,
		oc.BottomRight.Point,
		oc.BottomLeft.Point,
	}
}

// all returns the corner points in canonical order, nils included.
func (oc *OrderedCorners) all() [4]*CornerPoint {
	return [4]*CornerPoint{oc.TopLeft, oc.TopRight, oc.BottomRight, oc.BottomLeft}
}

// ValidationResult reports the outcome of the geometric plausibility checks.
// Score only ever multiplies downward as checks run; it never recovers.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
	Score    float64
}

// Validation thresholds. The angle check invalidates past 40 degrees while
// the size check only ever warns; that asymmetry is deliberate, observed
// behaviour (a small rectangle still decodes when the warp is good, a badly
// skewed one does not).
const (
	strengthRatioWarn = 2.0  // (max-min)/avg strength above this warns
	angleWarnDeg      = 25.0 // interior angle deviation from 90 that warns
	angleInvalidDeg   = 40.0 // deviation that invalidates the detection
	parallelWarnDeg   = 20.0 // opposite-side angle above this warns
	sizeMinFraction   = 0.15 // rectangle must span >= 15% of frame dimension
	sizeMaxFraction   = 0.95 // and <= 95% of it

	scoreStrengthPenalty = 0.9
	scoreAngleWarn       = 0.95
	scoreAngleInvalid    = 0.6
	scoreSizePenalty     = 0.9
	scorePerWarning      = 0.98 // quality score decay per warning

	// AcceptThreshold is the minimum quality score SelectBest will accept.
	AcceptThreshold = 0.5
)

// Validate runs the ordered plausibility checks against four detected
// corners and the frame dimensions. It is a pure function: it never panics
// and always returns a structured result, falling back to an invalid
// zero-score result if a check misbehaves.
func Validate(corners *OrderedCorners, frameWidth, frameHeight int) (result ValidationResult) {
	result = ValidationResult{Valid: true, Score: 1.0}

	defer func() {
		if r := recover(); r != nil {
			result = ValidationResult{
				Valid:  false,
				Errors: []string{fmt.Sprintf("validation aborted: %v", r)},
				Score:  0,
			}
		}
	}()

	// Check 1: all four corners present.
	if corners == nil {
		return ValidationResult{Valid: false, Errors: []string{"no corners supplied"}, Score: 0}
	}
	for i, cp := range corners.all() {
		if cp == nil {
			return ValidationResult{
				Valid:  false,
				Errors: []string{fmt.Sprintf("missing %s corner", Corner(i))},
				Score:  0,
			}
		}
	}

	// Check 2: all corners inside the frame.
	w := float64(frameWidth)
	h := float64(frameHeight)
	for i, cp := range corners.all() {
		if cp.X < 0 || cp.X >= w || cp.Y < 0 || cp.Y >= h {
			result.Valid = false
			result.Score = 0
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s corner (%.1f, %.1f) outside frame %dx%d",
					Corner(i), cp.X, cp.Y, frameWidth, frameHeight))
			return result
		}
	}

	// Check 3: detector strength consistency. Wildly uneven confidences
	// usually mean one "corner" is a false positive.
	minS, maxS, sumS := math.Inf(1), math.Inf(-1), 0.0
	for _, cp := range corners.all() {
		minS = math.Min(minS, cp.Strength)
		maxS = math.Max(maxS, cp.Strength)
		sumS += cp.Strength
	}
	if avg := sumS / 4; avg > 0 && (maxS-minS)/avg > strengthRatioWarn {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("inconsistent corner strengths (min %.2f, max %.2f)", minS, maxS))
		result.Score *= scoreStrengthPenalty
	}

	// Check 4: interior angles. A frontal marker rectangle has four ~90
	// degree corners; perspective skews them, but only so far.
	pts := corners.points()
	maxDeviation := 0.0
	for i := 0; i < 4; i++ {
		prev := pts[(i+3)%4]
		next := pts[(i+1)%4]
		angle := geometry.InteriorAngle(prev, pts[i], next)
		if dev := math.Abs(angle - 90); dev > maxDeviation {
			maxDeviation = dev
		}
	}
	switch {
	case maxDeviation > angleInvalidDeg:
		result.Valid = false
		result.Score *= scoreAngleInvalid
		result.Errors = append(result.Errors,
			fmt.Sprintf("corner angle deviates %.1f degrees from rectangular", maxDeviation))
	case maxDeviation > angleWarnDeg:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("corner angle deviation %.1f degrees", maxDeviation))
		result.Score *= scoreAngleWarn
	}

	// Opposite sides of the projected rectangle should stay near parallel.
	top := pts[1].Sub(pts[0])
	bottom := pts[2].Sub(pts[3])
	left := pts[3].Sub(pts[0])
	right := pts[2].Sub(pts[1])
	if a := geometry.VectorAngle(top, bottom); a > parallelWarnDeg {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("horizontal sides diverge by %.1f degrees", a))
	}
	if a := geometry.VectorAngle(left, right); a > parallelWarnDeg {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("vertical sides diverge by %.1f degrees", a))
	}

	// Check 5: size reasonableness. Warning only.
	quadW, quadH := geometry.QuadSize(pts[0], pts[1], pts[2], pts[3])
	if quadW < w*sizeMinFraction || quadW > w*sizeMaxFraction ||
		quadH < h*sizeMinFraction || quadH > h*sizeMaxFraction {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("rectangle %.0fx%.0f outside plausible bounds for %dx%d frame",
				quadW, quadH, frameWidth, frameHeight))
		result.Score *= scoreSizePenalty
	}

	return result
}

// QualityScore combines the validation score with the mean detector
// confidence and a per-warning decay, clamped to [0, 1]. Invalid detections
// score 0.
func QualityScore(corners *OrderedCorners, result ValidationResult) float64 {
	if !result.Valid || corners == nil {
		return 0
	}
	sum := 0.0
	for _, cp := range corners.all() {
		if cp == nil {
			return 0
		}
		sum += cp.Strength
	}
	score := result.Score * (sum / 4) * math.Pow(scorePerWarning, float64(len(result.Warnings)))
	return math.Max(0, math.Min(1, score))
}

// Candidate pairs a corner set with its computed quality, as produced by
// SelectBest.
type Candidate struct {
	Corners *OrderedCorners
	Result  ValidationResult
	Quality float64
}

// SelectBest validates and scores every candidate corner set for one frame
// and returns the highest-quality one, or nil when no candidate clears the
// accept threshold. Returning nil instead of a low-confidence guess keeps
// garbage out of the warp stage; the next frame is at most 33ms away.
func SelectBest(candidates []*OrderedCorners, frameWidth, frameHeight int) *Candidate {
	var best *Candidate
	for _, c := range candidates {
		result := Validate(c, frameWidth, frameHeight)
		q := QualityScore(c, result)
		if best == nil || q > best.Quality {
			best = &Candidate{Corners: c, Result: result, Quality: q}
		}
	}
	if best == nil || best.Quality <= AcceptThreshold {
		return nil
	}
	return best
}
