// Package perspective validates and applies the 3x3 projective transforms
// that map detected marker quadrilaterals back to a frontal view.
//
// Matrix estimation from point correspondences belongs to the external
// vision layer (see Vision); this package gates its output and performs the
// frontal warp.
package perspective

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/overlaylab/stegosub/internal/frame"
	"github.com/overlaylab/stegosub/internal/geometry"
	"github.com/overlaylab/stegosub/internal/marker"
)

// Transform gate thresholds. A transform outside these bounds is either
// degenerate (never usable) or unreasonable (plausibly a misdetection; the
// frame is skipped rather than failed).
const (
	DeterminantEpsilon = 1e-6 // |det| below this is degenerate
	EntryMagnitudeMax  = 1e6  // any larger entry marks the matrix unstable

	MaxRotationDeg = 60.0

	// Detection accepts a wider scale envelope than rendering: finding the
	// screen across a room is fine, but rendering overlays through an
	// extreme warp produces garbage.
	DetectScaleMin = 0.1
	DetectScaleMax = 10.0
	RenderScaleMin = 0.3
	RenderScaleMax = 3.0
)

// Transform is a 3x3 projective matrix in row-major order with derived
// scalars cached at construction. One Transform is owned per frame and never
// shared across decodes.
type Transform struct {
	M [9]float64

	scale    float64
	rotation float64 // degrees
}

// New builds a Transform from a row-major 3x3 matrix and caches its derived
// scale and rotation.
func New(m [9]float64) *Transform {
	t := &Transform{M: m}
	t.scale = scaleFactor(m)
	t.rotation = rotationAngle(m)
	return t
}

// scaleFactor is the mean L2 norm of the two rows of the linear part.
func scaleFactor(m [9]float64) float64 {
	sx := math.Hypot(m[0], m[1])
	sy := math.Hypot(m[3], m[4])
	return (sx + sy) / 2
}

// rotationAngle derives the in-plane rotation estimate in degrees from the
// linear part's cross term.
func rotationAngle(m [9]float64) float64 {
	return math.Atan2(m[3], m[0]) * 180 / math.Pi
}

// ScaleFactor returns the cached scale estimate.
func (t *Transform) ScaleFactor() float64 { return t.scale }

// RotationAngle returns the cached rotation estimate in degrees.
func (t *Transform) RotationAngle() float64 { return t.rotation }

// Validate rejects degenerate or numerically unstable transforms: non-finite
// entries, near-zero determinant, or entries beyond the magnitude bound.
// A transform that fails Validate must never reach the warp step.
func (t *Transform) Validate() error {
	if t == nil {
		return fmt.Errorf("nil transform")
	}
	for i, v := range t.M {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("transform entry %d is not finite", i)
		}
		if math.Abs(v) > EntryMagnitudeMax {
			return fmt.Errorf("transform entry %d magnitude %.3g exceeds bound", i, v)
		}
	}
	d := mat.Det(mat.NewDense(3, 3, t.M[:]))
	if math.Abs(d) < DeterminantEpsilon {
		return fmt.Errorf("transform is degenerate (det %.3g)", d)
	}
	return nil
}

// ReasonableForDetection reports whether the transform's scale and rotation
// are plausible for locating the screen. An unreasonable transform skips the
// frame; it is not an error.
func (t *Transform) ReasonableForDetection() bool {
	return t.scale >= DetectScaleMin && t.scale <= DetectScaleMax &&
		math.Abs(t.rotation) < MaxRotationDeg
}

// ReasonableForRendering applies the tighter envelope used before trusting a
// transform for overlay placement.
func (t *Transform) ReasonableForRendering() bool {
	return t.scale >= RenderScaleMin && t.scale <= RenderScaleMax &&
		math.Abs(t.rotation) < MaxRotationDeg
}

// Apply maps a point through the projective transform, including the
// homogeneous divide. Points at infinity (w ~ 0) map to the origin.
func (t *Transform) Apply(p geometry.Point) geometry.Point {
	x := t.M[0]*p.X + t.M[1]*p.Y + t.M[2]
	y := t.M[3]*p.X + t.M[4]*p.Y + t.M[5]
	w := t.M[6]*p.X + t.M[7]*p.Y + t.M[8]
	if math.Abs(w) < 1e-12 {
		return geometry.Point{}
	}
	return geometry.Point{X: x / w, Y: y / w}
}

// inverse returns the inverse transform, or an error when the matrix cannot
// be inverted.
func (t *Transform) inverse() (*Transform, error) {
	var inv mat.Dense
	if err := inv.Inverse(mat.NewDense(3, 3, t.M[:])); err != nil {
		return nil, fmt.Errorf("invert transform: %w", err)
	}
	var m [9]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m[r*3+c] = inv.At(r, c)
		}
	}
	return New(m), nil
}

// WarpToFrontal resamples src into a new buffer of the same size under the
// inverse mapping implied by t (which maps camera coordinates to frontal
// coordinates). Pixels that map outside the source are filled with the
// transparent-black sentinel so downstream extraction sees them as noise
// rather than valid data. The transform must already have passed Validate.
func WarpToFrontal(src *frame.RGBA, t *Transform) (out *frame.RGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("warp panicked: %v", r)
		}
	}()

	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("warp source: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("warp: nil transform")
	}
	inv, err := t.inverse()
	if err != nil {
		return nil, err
	}

	out = frame.Get(src.Width, src.Height)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			srcPt := inv.Apply(geometry.Point{X: float64(x), Y: float64(y)})
			sx := int(math.Round(srcPt.X))
			sy := int(math.Round(srcPt.Y))
			if sx < 0 || sx >= src.Width || sy < 0 || sy >= src.Height {
				continue // sentinel fill: transparent black
			}
			si := src.Offset(sx, sy)
			di := out.Offset(x, y)
			copy(out.Pix[di:di+frame.BytesPerPixel], src.Pix[si:si+frame.BytesPerPixel])
		}
	}
	return out, nil
}

// Vision is the external capability that supplies corner candidates and
// estimated transforms. The core never re-implements corner detection or
// matrix estimation; it validates, scores and consumes these outputs.
type Vision interface {
	// DetectCandidateCorners scans a frame for marker corner candidates.
	// Each returned set is one hypothesis for the four corner roles.
	DetectCandidateCorners(f *frame.RGBA) []*marker.OrderedCorners

	// EstimateTransform computes the projective transform mapping the four
	// source points onto the four destination points.
	EstimateTransform(src, dst [4]geometry.Point) (*Transform, error)
}
