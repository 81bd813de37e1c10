package geometry

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{"same point", Point{1, 1}, Point{1, 1}, 0},
		{"unit x", Point{0, 0}, Point{1, 0}, 1},
		{"3-4-5 triangle", Point{0, 0}, Point{3, 4}, 5},
		{"negative coords", Point{-1, -1}, Point{2, 3}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); !almostEqual(got, tt.want, 1e-9) {
				t.Errorf("Distance(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCentroid(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if got := Centroid(nil); got != (Point{}) {
			t.Errorf("Centroid(nil) = %v, want zero point", got)
		}
	})
	t.Run("unit square", func(t *testing.T) {
		pts := []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
		got := Centroid(pts)
		if !almostEqual(got.X, 0.5, 1e-9) || !almostEqual(got.Y, 0.5, 1e-9) {
			t.Errorf("Centroid = %v, want (0.5, 0.5)", got)
		}
	})
}

func TestInteriorAngle(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c Point
		want    float64
	}{
		{"right angle", Point{1, 0}, Point{0, 0}, Point{0, 1}, 90},
		{"straight line", Point{-1, 0}, Point{0, 0}, Point{1, 0}, 180},
		{"45 degrees", Point{1, 0}, Point{0, 0}, Point{1, 1}, 45},
		{"degenerate", Point{0, 0}, Point{0, 0}, Point{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InteriorAngle(tt.a, tt.b, tt.c); !almostEqual(got, tt.want, 1e-6) {
				t.Errorf("InteriorAngle = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestVectorAngleFoldsAntiParallel(t *testing.T) {
	u := Point{1, 0}
	v := Point{-2, 0}
	if got := VectorAngle(u, v); !almostEqual(got, 0, 1e-9) {
		t.Errorf("anti-parallel vectors should measure 0 degrees, got %f", got)
	}
	if got := VectorAngle(Point{1, 0}, Point{0, 3}); !almostEqual(got, 90, 1e-9) {
		t.Errorf("perpendicular vectors should measure 90 degrees, got %f", got)
	}
}

func TestOrderClockwise(t *testing.T) {
	t.Run("shuffled square", func(t *testing.T) {
		pts := []Point{{100, 100}, {10, 100}, {100, 10}, {10, 10}}
		got := OrderClockwise(pts)
		want := []Point{{10, 10}, {100, 10}, {100, 100}, {10, 100}}
		if got == nil {
			t.Fatal("OrderClockwise returned nil for valid input")
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("corner %d = %v, want %v", i, got[i], want[i])
			}
		}
	})
	t.Run("wrong count", func(t *testing.T) {
		if got := OrderClockwise([]Point{{0, 0}}); got != nil {
			t.Errorf("expected nil for 1 point, got %v", got)
		}
	})
}

func TestQuadSize(t *testing.T) {
	w, h := QuadSize(Point{0, 0}, Point{200, 0}, Point{200, 100}, Point{0, 100})
	if !almostEqual(w, 200, 1e-9) || !almostEqual(h, 100, 1e-9) {
		t.Errorf("QuadSize = (%f, %f), want (200, 100)", w, h)
	}
}
