// Package timing parses the embedded per-frame timing record and tracks
// synchronization drift between embedded video time and wall-clock time.
package timing

import (
	"encoding/binary"
	"fmt"

	"github.com/overlaylab/stegosub/internal/integrity"
)

// Timing record wire layout: frameNumber:u32le | timestampMs:u32le |
// checksum:u16le, where the checksum is the additive 16-bit sum of the
// first eight bytes.
const (
	RecordSize        = 10
	checksumCoverage  = 8
	frameNumberOffset = 0
	timestampOffset   = 4
	checksumOffset    = 8
)

// Record is one decoded timing record.
type Record struct {
	FrameNumber uint32
	TimestampMs uint32
	Checksum    uint16
	Raw         [RecordSize]byte
}

// ParseRecord decodes and verifies a timing record from the first ten bytes
// of the timing strip. A checksum mismatch rejects the record; corrupt
// timing data must never reach the synchronizer.
func ParseRecord(data []byte) (*Record, error) {
	if len(data) < RecordSize {
		return nil, fmt.Errorf("timing record needs %d bytes, have %d", RecordSize, len(data))
	}
	rec := &Record{
		FrameNumber: binary.LittleEndian.Uint32(data[frameNumberOffset:]),
		TimestampMs: binary.LittleEndian.Uint32(data[timestampOffset:]),
		Checksum:    binary.LittleEndian.Uint16(data[checksumOffset:]),
	}
	copy(rec.Raw[:], data[:RecordSize])

	if sum := integrity.Checksum16(data[:checksumCoverage]); sum != rec.Checksum {
		return nil, fmt.Errorf("timing checksum mismatch: computed %#04x, embedded %#04x", sum, rec.Checksum)
	}
	return rec, nil
}

// EncodeRecord produces the ten-byte wire form of a timing record,
// including its checksum. Used by fixtures and round-trip tests.
func EncodeRecord(frameNumber, timestampMs uint32) [RecordSize]byte {
	var out [RecordSize]byte
	binary.LittleEndian.PutUint32(out[frameNumberOffset:], frameNumber)
	binary.LittleEndian.PutUint32(out[timestampOffset:], timestampMs)
	binary.LittleEndian.PutUint16(out[checksumOffset:], integrity.Checksum16(out[:checksumCoverage]))
	return out
}
