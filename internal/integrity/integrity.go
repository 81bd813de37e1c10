// Package integrity provides the checksum and corruption heuristics that
// gate extracted byte blocks before they reach decompression and parsing.
package integrity

import (
	"fmt"
	"hash/crc32"
	"strings"
)

// Checksum16 is the additive 16-bit checksum protecting the timing record:
// the running sum of all bytes, truncated to 16 bits.
func Checksum16(data []byte) uint16 {
	var sum uint32
	for _, b := range data {
		sum = (sum + uint32(b)) & 0xFFFF
	}
	return uint16(sum)
}

// BlockChecksum16 is the subtitle-block checksum the encoder writes into the
// band header: the low 16 bits of the payload's CRC-32.
func BlockChecksum16(data []byte) uint16 {
	return uint16(crc32.ChecksumIEEE(data) & 0xFFFF)
}

// Analysis reports the heuristic corruption assessment of a byte block.
// Advisory only: a suspect block is logged and usually skipped cheaply, but
// the caller decides.
type Analysis struct {
	Suspect bool
	Reason  string
}

// lowEntropyRatio is the uniqueness ratio below which a block is considered
// degenerate. Real compressed payloads use most of the byte alphabet.
const lowEntropyRatio = 0.1

// AnalyzeBytes flags blocks that are obviously garbage: all zeros (typically
// sentinel fill from the warp), all 0xFF (saturated exposure), or a byte
// alphabet too small for a compressed payload.
func AnalyzeBytes(data []byte) Analysis {
	if len(data) == 0 {
		return Analysis{Suspect: true, Reason: "empty block"}
	}

	var seen [256]bool
	unique := 0
	allZero := true
	allFF := true
	for _, b := range data {
		if !seen[b] {
			seen[b] = true
			unique++
		}
		if b != 0x00 {
			allZero = false
		}
		if b != 0xFF {
			allFF = false
		}
	}

	switch {
	case allZero:
		return Analysis{Suspect: true, Reason: "all zero bytes"}
	case allFF:
		return Analysis{Suspect: true, Reason: "all 0xFF bytes"}
	}

	limit := len(data)
	if limit > 256 {
		limit = 256
	}
	if ratio := float64(unique) / float64(limit); ratio < lowEntropyRatio {
		return Analysis{
			Suspect: true,
			Reason:  fmt.Sprintf("low entropy: %d distinct values in %d bytes", unique, len(data)),
		}
	}
	return Analysis{}
}

// MinSubtitleTextLen is the minimum decompressed length for a structurally
// plausible subtitle payload.
const MinSubtitleTextLen = 5

// ValidateSubtitleStructure checks that decompressed text is worth handing
// to the parser: long enough and carrying the field delimiter.
func ValidateSubtitleStructure(text string) error {
	if len(text) < MinSubtitleTextLen {
		return fmt.Errorf("subtitle payload too short (%d chars)", len(text))
	}
	if !strings.Contains(text, "|") {
		return fmt.Errorf("subtitle payload missing field delimiter")
	}
	return nil
}
