// Package frame defines the RGBA pixel buffer the pipeline passes between
// stages. Buffers arrive from the camera layer in row-major RGBA order, four
// bytes per pixel.
package frame

import "fmt"

// BytesPerPixel is the RGBA stride per pixel.
const BytesPerPixel = 4

// RGBA is a row-major RGBA pixel buffer. Pix holds Width*Height*4 bytes.
type RGBA struct {
	Width  int
	Height int
	Pix    []byte
}

// New allocates a zeroed RGBA buffer of the given dimensions.
func New(width, height int) *RGBA {
	return &RGBA{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}
}

// Validate checks that the buffer dimensions are positive and the pixel
// slice covers them exactly.
func (f *RGBA) Validate() error {
	if f == nil {
		return fmt.Errorf("nil frame")
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid frame dimensions %dx%d", f.Width, f.Height)
	}
	if want := f.Width * f.Height * BytesPerPixel; len(f.Pix) != want {
		return fmt.Errorf("pixel buffer is %d bytes, want %d for %dx%d",
			len(f.Pix), want, f.Width, f.Height)
	}
	return nil
}

// Offset returns the byte offset of pixel (x, y). Bounds are the caller's
// responsibility.
func (f *RGBA) Offset(x, y int) int {
	return (y*f.Width + x) * BytesPerPixel
}

// SetRGBA writes one pixel. Bounds are the caller's responsibility.
func (f *RGBA) SetRGBA(x, y int, r, g, b, a byte) {
	i := f.Offset(x, y)
	f.Pix[i] = r
	f.Pix[i+1] = g
	f.Pix[i+2] = b
	f.Pix[i+3] = a
}
