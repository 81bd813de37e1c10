package lsb

import (
	"bytes"
	"testing"

	"github.com/overlaylab/stegosub/internal/frame"
)

func TestCapacity(t *testing.T) {
	tests := []struct {
		pixels int
		want   int
	}{
		{0, 0},
		{1, 0},  // 3 values, not enough for a byte
		{4, 3},  // 12 values -> 3 bytes
		{8, 6},
		{100, 75},
	}
	for _, tt := range tests {
		if got := Capacity(tt.pixels); got != tt.want {
			t.Errorf("Capacity(%d) = %d, want %d", tt.pixels, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	// Input lengths that are multiples of 3 map onto whole pixels (4 pixels
	// carry 3 bytes), so the round trip is exact.
	inputs := [][]byte{
		{0x00, 0xFF, 0xA5},
		{1, 2, 3, 4, 5, 6},
		bytes.Repeat([]byte{0xDE, 0xAD, 0xBE}, 20),
	}
	for _, data := range inputs {
		f := frame.New(16, 8)
		// Non-zero carrier pixels so packing must actually mask bits.
		for i := range f.Pix {
			f.Pix[i] = 0x7C
		}
		if err := Pack(f, data); err != nil {
			t.Fatalf("Pack(%d bytes) failed: %v", len(data), err)
		}
		got, err := UnpackN(f, len(data))
		if err != nil {
			t.Fatalf("UnpackN failed: %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("round trip mismatch: got %x, want %x", got, data)
		}
	}
}

func TestUnpackKnownBits(t *testing.T) {
	// One byte spans four 2-bit values: R,G,B of pixel 0 and R of pixel 1.
	f := frame.New(2, 1)
	f.Pix[0] = 0b10 // v0
	f.Pix[1] = 0b01 // v1
	f.Pix[2] = 0b11 // v2
	f.Pix[3] = 0xFF // alpha, ignored
	f.Pix[4] = 0b00 // v3
	got, err := UnpackN(f, 1)
	if err != nil {
		t.Fatalf("UnpackN failed: %v", err)
	}
	want := byte(0b10<<6 | 0b01<<4 | 0b11<<2 | 0b00)
	if got[0] != want {
		t.Errorf("Unpack = %#08b, want %#08b", got[0], want)
	}
}

func TestUnpackAlphaIgnored(t *testing.T) {
	f := frame.New(4, 1)
	for i := 3; i < len(f.Pix); i += 4 {
		f.Pix[i] = 0xFF
	}
	got, err := Unpack(f)
	if err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	for i, b := range got {
		if b != 0 {
			t.Errorf("byte %d = %#x, alpha bits leaked into output", i, b)
		}
	}
}

func TestUnpackErrors(t *testing.T) {
	t.Run("nil region", func(t *testing.T) {
		if _, err := Unpack(nil); err == nil {
			t.Error("nil region must error, not return empty output")
		}
	})
	t.Run("empty region", func(t *testing.T) {
		if _, err := Unpack(&frame.RGBA{}); err == nil {
			t.Error("empty region must error")
		}
	})
	t.Run("too small for a byte", func(t *testing.T) {
		if _, err := Unpack(frame.New(1, 1)); err == nil {
			t.Error("1-pixel region holds no whole byte and must error")
		}
	})
	t.Run("request beyond capacity", func(t *testing.T) {
		if _, err := UnpackN(frame.New(4, 1), 100); err == nil {
			t.Error("requesting more bytes than capacity must error")
		}
	})
}

func TestPackErrors(t *testing.T) {
	if err := Pack(nil, []byte{1}); err == nil {
		t.Error("nil region must error")
	}
	if err := Pack(frame.New(1, 1), []byte{1, 2, 3, 4}); err == nil {
		t.Error("oversized payload must error")
	}
}
