// Package region carves the two fixed data-carrying bands out of a
// frontal-warped frame: the timing strip along the top and the subtitle band
// along the bottom.
//
// A Regions handle owns the warped frame for the duration of one decode.
// Release must run on every exit path of the decode, success or failure, and
// is safe to call more than once.
package region

import (
	"fmt"
	"sync"

	"github.com/overlaylab/stegosub/internal/frame"
)

// Band layout constants, fixed by the embedding wire format.
const (
	TimingStripRows      = 5    // top rows carrying the timing record
	SubtitleBandFraction = 0.10 // bottom fraction carrying subtitle data
)

// Regions holds the two extracted band views plus the warped frame they
// alias. The views share the warped frame's pixel storage; nothing is
// copied.
type Regions struct {
	Timing   *frame.RGBA
	Subtitle *frame.RGBA

	warped  *frame.RGBA
	release sync.Once
}

// SubtitleBandStart returns the first row of the subtitle band for a frame
// of the given height, using floor rounding on the 90% boundary.
func SubtitleBandStart(height int) int {
	return int(float64(height) * (1 - SubtitleBandFraction))
}

// Extract carves the timing strip (rows [0,5)) and the subtitle band (rows
// [floor(0.9h), h)) out of a warped frame and takes ownership of it. The
// frame must be large enough that the two bands cannot overlap.
func Extract(warped *frame.RGBA) (*Regions, error) {
	if err := warped.Validate(); err != nil {
		return nil, fmt.Errorf("extract regions: %w", err)
	}
	bandStart := SubtitleBandStart(warped.Height)
	if warped.Height < TimingStripRows || bandStart <= TimingStripRows {
		return nil, fmt.Errorf("extract regions: frame height %d too small for band layout", warped.Height)
	}

	stride := warped.Width * frame.BytesPerPixel
	timing := &frame.RGBA{
		Width:  warped.Width,
		Height: TimingStripRows,
		Pix:    warped.Pix[:TimingStripRows*stride],
	}
	subtitle := &frame.RGBA{
		Width:  warped.Width,
		Height: warped.Height - bandStart,
		Pix:    warped.Pix[bandStart*stride:],
	}
	return &Regions{Timing: timing, Subtitle: subtitle, warped: warped}, nil
}

// Release returns the warped frame's storage to the frame pool and
// invalidates both views. Calling it again is a no-op.
func (r *Regions) Release() {
	if r == nil {
		return
	}
	r.release.Do(func() {
		frame.Put(r.warped)
		r.warped = nil
		r.Timing = nil
		r.Subtitle = nil
	})
}
