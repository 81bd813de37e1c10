// Package lsb reconstructs raw bytes from the least-significant bits of
// pixel channels, and writes them back for test fixtures.
//
// The wire format is fixed by the encoder: 2 bits per channel taken from R,
// G and B of each RGBA pixel in row-major order (alpha excluded), giving
// three 2-bit values per pixel. Four consecutive 2-bit values form one byte,
// most significant pair first: (v0<<6) | (v1<<4) | (v2<<2) | v3.
package lsb

import (
	"fmt"

	"github.com/overlaylab/stegosub/internal/frame"
)

const (
	// BitsPerChannel is the LSB depth the encoder writes into each colour
	// channel.
	BitsPerChannel = 2

	channelMask    = (1 << BitsPerChannel) - 1
	valuesPerPixel = 3 // R, G, B; alpha carries no data
	valuesPerByte  = 4
	channelsPerPix = frame.BytesPerPixel
)

// Capacity returns the number of whole bytes extractable from a region of
// the given pixel count: floor(3*pixels/4).
func Capacity(pixels int) int {
	return pixels * valuesPerPixel / valuesPerByte
}

// Unpack extracts every whole byte embedded in the region. Malformed
// buffers error immediately; a silently empty result is the failure mode
// this package refuses to produce.
func Unpack(region *frame.RGBA) ([]byte, error) {
	return UnpackN(region, -1)
}

// UnpackN extracts up to n bytes from the region, or every whole byte when
// n is negative. It errors when the region is malformed or cannot supply n
// bytes.
func UnpackN(region *frame.RGBA, n int) ([]byte, error) {
	if err := region.Validate(); err != nil {
		return nil, fmt.Errorf("lsb unpack: %w", err)
	}
	pixels := region.Width * region.Height
	capacity := Capacity(pixels)
	if n < 0 {
		n = capacity
	}
	if n > capacity {
		return nil, fmt.Errorf("lsb unpack: need %d bytes but region holds %d", n, capacity)
	}
	if n == 0 {
		return nil, fmt.Errorf("lsb unpack: region too small for any data")
	}

	out := make([]byte, n)
	var acc byte // accumulates 2-bit values
	var filled int
	byteIdx := 0

	for i := 0; i < pixels && byteIdx < n; i++ {
		base := i * channelsPerPix
		for c := 0; c < valuesPerPixel; c++ {
			acc = acc<<BitsPerChannel | region.Pix[base+c]&channelMask
			filled++
			if filled == valuesPerByte {
				out[byteIdx] = acc
				byteIdx++
				acc = 0
				filled = 0
				if byteIdx == n {
					break
				}
			}
		}
	}
	return out, nil
}

// Pack embeds data into the low bits of the region's R, G and B channels,
// the exact inverse of Unpack. Used by encoder-side fixtures and round-trip
// tests. It errors when the region cannot hold the data.
func Pack(region *frame.RGBA, data []byte) error {
	if err := region.Validate(); err != nil {
		return fmt.Errorf("lsb pack: %w", err)
	}
	pixels := region.Width * region.Height
	if len(data) > Capacity(pixels) {
		return fmt.Errorf("lsb pack: %d bytes exceed region capacity %d", len(data), Capacity(pixels))
	}

	valueIdx := 0
	total := len(data) * valuesPerByte
	for i := 0; i < pixels && valueIdx < total; i++ {
		base := i * channelsPerPix
		for c := 0; c < valuesPerPixel && valueIdx < total; c++ {
			b := data[valueIdx/valuesPerByte]
			shift := uint((valuesPerByte - 1 - valueIdx%valuesPerByte) * BitsPerChannel)
			v := b >> shift & channelMask
			region.Pix[base+c] = region.Pix[base+c]&^channelMask | v
			valueIdx++
		}
	}
	return nil
}
