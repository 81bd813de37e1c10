package frame

import "sync"

// Warped frames are allocated and dropped once per decode at interactive
// frame rates, so their pixel slices are recycled through a pool. Buffers
// are zeroed on reuse because the warp stage leaves sentinel pixels
// untouched.
var pixPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0)
		return &b
	},
}

// Get returns a zeroed RGBA buffer of the given dimensions, reusing pooled
// pixel storage when a large enough slice is available.
func Get(width, height int) *RGBA {
	n := width * height * BytesPerPixel
	bp := pixPool.Get().(*[]byte)
	b := *bp
	if cap(b) < n {
		b = make([]byte, n)
	} else {
		b = b[:n]
		for i := range b {
			b[i] = 0
		}
	}
	return &RGBA{Width: width, Height: height, Pix: b}
}

// Put returns a frame's pixel storage to the pool. The frame must not be
// used afterwards.
func Put(f *RGBA) {
	if f == nil || f.Pix == nil {
		return
	}
	b := f.Pix
	f.Pix = nil
	pixPool.Put(&b)
}
