package region

import (
	"testing"

	"github.com/overlaylab/stegosub/internal/frame"
)

func TestSubtitleBandStart(t *testing.T) {
	tests := []struct {
		height int
		want   int
	}{
		{100, 90},
		{720, 648},
		{101, 90}, // floor rounding on the boundary
		{55, 49},
	}
	for _, tt := range tests {
		if got := SubtitleBandStart(tt.height); got != tt.want {
			t.Errorf("SubtitleBandStart(%d) = %d, want %d", tt.height, got, tt.want)
		}
	}
}

func TestExtract(t *testing.T) {
	f := frame.New(16, 100)
	// Tag one pixel in each band to verify the views alias the right rows.
	f.SetRGBA(0, 2, 11, 0, 0, 255)  // timing strip, row 2
	f.SetRGBA(3, 95, 22, 0, 0, 255) // subtitle band, row 95 (band starts at 90)

	r, err := Extract(f)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	defer r.Release()

	if r.Timing.Height != TimingStripRows || r.Timing.Width != 16 {
		t.Errorf("timing strip is %dx%d, want 16x%d", r.Timing.Width, r.Timing.Height, TimingStripRows)
	}
	if r.Subtitle.Height != 10 || r.Subtitle.Width != 16 {
		t.Errorf("subtitle band is %dx%d, want 16x10", r.Subtitle.Width, r.Subtitle.Height)
	}

	if got := r.Timing.Pix[r.Timing.Offset(0, 2)]; got != 11 {
		t.Errorf("timing view row 2 = %d, want 11", got)
	}
	// Row 95 of the frame is row 5 of the band.
	if got := r.Subtitle.Pix[r.Subtitle.Offset(3, 5)]; got != 22 {
		t.Errorf("subtitle view row 5 = %d, want 22", got)
	}
}

func TestExtractRejectsBadFrames(t *testing.T) {
	tests := []struct {
		name string
		f    *frame.RGBA
	}{
		{"nil", nil},
		{"empty", &frame.RGBA{}},
		{"too short for strip", frame.New(16, 4)},
		{"band overlaps strip", frame.New(16, 6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Extract(tt.f); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReleaseIdempotent(t *testing.T) {
	r, err := Extract(frame.New(16, 100))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	r.Release()
	if r.Timing != nil || r.Subtitle != nil {
		t.Error("views should be cleared after release")
	}
	// Second release must be a no-op, not a panic or double pool put.
	r.Release()

	var nilRegions *Regions
	nilRegions.Release()
}
