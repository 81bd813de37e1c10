// Package geometry provides the planar point primitives used by marker
// validation and perspective scoring: distances, interior angles, centroids
// and canonical corner ordering.
package geometry

import (
	"math"
	"sort"
)

// Point is a 2D position in frame pixel coordinates. The origin is the top
// left of the frame with y growing downward, matching the camera buffer
// layout.
type Point struct {
	X float64
	Y float64
}

// Sub returns the vector p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Norm returns the Euclidean length of p treated as a vector.
func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Centroid returns the arithmetic mean of the given points. It returns the
// zero point for an empty slice.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var c Point
	for _, p := range points {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(points))
	return Point{X: c.X / n, Y: c.Y / n}
}

// InteriorAngle returns the angle in degrees at vertex b formed by the
// segments b→a and b→c. Degenerate inputs (coincident points) return 0.
func InteriorAngle(a, b, c Point) float64 {
	v1 := a.Sub(b)
	v2 := c.Sub(b)
	n1 := v1.Norm()
	n2 := v2.Norm()
	if n1 == 0 || n2 == 0 {
		return 0
	}
	cos := (v1.X*v2.X + v1.Y*v2.Y) / (n1 * n2)
	// Clamp against float error before acos.
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// VectorAngle returns the absolute angle in degrees between the direction
// vectors u and v, folded into [0, 90] so that anti-parallel vectors count
// as parallel. Used for opposite-side parallelism checks where orientation
// of traversal is irrelevant.
func VectorAngle(u, v Point) float64 {
	nu := u.Norm()
	nv := v.Norm()
	if nu == 0 || nv == 0 {
		return 0
	}
	cos := math.Abs(u.X*v.X+u.Y*v.Y) / (nu * nv)
	cos = math.Min(1, cos)
	return math.Acos(cos) * 180 / math.Pi
}

// OrderClockwise places four arbitrary points into canonical clockwise order
// starting at the top-left: top-left, top-right, bottom-right, bottom-left.
// Ordering is by angle around the centroid, then rotated so the point in the
// upper-left quadrant comes first. The input slice must hold exactly four
// points; fewer or more returns nil.
func OrderClockwise(points []Point) []Point {
	if len(points) != 4 {
		return nil
	}
	c := Centroid(points)

	ordered := make([]Point, 4)
	copy(ordered, points)
	// atan2 with screen-space y (down is positive) sorts clockwise when
	// ascending.
	sort.Slice(ordered, func(i, j int) bool {
		ai := math.Atan2(ordered[i].Y-c.Y, ordered[i].X-c.X)
		aj := math.Atan2(ordered[j].Y-c.Y, ordered[j].X-c.X)
		return ai < aj
	})

	// Rotate so the first entry is the top-left corner: the point whose
	// x+y sum is smallest sits closest to the frame origin.
	start := 0
	best := ordered[0].X + ordered[0].Y
	for i := 1; i < 4; i++ {
		if s := ordered[i].X + ordered[i].Y; s < best {
			best = s
			start = i
		}
	}
	out := make([]Point, 4)
	for i := 0; i < 4; i++ {
		out[i] = ordered[(start+i)%4]
	}
	return out
}

// QuadSize returns the width and height of the quadrilateral described by
// four corners in canonical order (tl, tr, br, bl). Width is the mean of the
// top and bottom side lengths, height the mean of the left and right sides.
func QuadSize(tl, tr, br, bl Point) (width, height float64) {
	width = (Distance(tl, tr) + Distance(bl, br)) / 2
	height = (Distance(tl, bl) + Distance(tr, br)) / 2
	return width, height
}
