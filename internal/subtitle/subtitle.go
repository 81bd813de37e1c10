// Package subtitle turns decompressed payload text into structured subtitle
// records and manages their lifecycle: parsing with format fallbacks,
// canonical text formatting, a bounded LRU cache, and the active-subtitle
// timing queue.
package subtitle

import (
	"fmt"
	"strings"
)

// Subtitle is one decoded subtitle cue. Records are immutable once
// finalized; re-decoding the same cue from a later frame produces an equal
// record with the same ID.
type Subtitle struct {
	ID          string `json:"id"`
	StartTimeMs int64  `json:"start_time_ms"`
	EndTimeMs   int64  `json:"end_time_ms"`
	Text        string `json:"text"`
	// TimestampMs is the embedded video time of the frame this record was
	// decoded from.
	TimestampMs int64 `json:"timestamp_ms"`
	DurationMs  int64 `json:"duration_ms"`
	// Estimated marks records whose timing was not carried by the payload
	// and was synthesized from the current playback time.
	Estimated bool `json:"estimated,omitempty"`
}

// Validate reports whether the record is well-formed: both timestamps
// present and ordered, and non-empty trimmed text.
func (s *Subtitle) Validate() error {
	if s == nil {
		return fmt.Errorf("nil subtitle")
	}
	if s.EndTimeMs <= s.StartTimeMs {
		return fmt.Errorf("subtitle end %dms not after start %dms", s.EndTimeMs, s.StartTimeMs)
	}
	if strings.TrimSpace(s.Text) == "" {
		return fmt.Errorf("subtitle text empty")
	}
	return nil
}

// Finalize applies canonical text formatting, derives the duration and the
// deterministic ID. The record must not change afterwards.
func (s *Subtitle) Finalize() {
	s.Text = FormatText(s.Text)
	s.DurationMs = s.EndTimeMs - s.StartTimeMs
	s.ID = MakeID(s.StartTimeMs, s.Text)
}

// ActiveAt reports whether the cue covers the given playback time. The
// window is half-open: t == EndTimeMs counts as already expired, so two
// adjacent cues hand over without overlap.
func (s *Subtitle) ActiveAt(tMs int64) bool {
	return tMs >= s.StartTimeMs && tMs < s.EndTimeMs
}

// MakeID derives the deterministic cue ID from start time and text using a
// 31-multiplier rolling hash with 32-bit wraparound. The cache keys on it;
// nothing security-relevant does.
func MakeID(startMs int64, text string) string {
	var h int32
	for _, r := range text {
		h = h*31 + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return fmt.Sprintf("sub_%d_%d", startMs, v)
}

// FormatText normalizes subtitle text for display: whitespace is collapsed,
// and the two-part punctuation marks ; : ! ? get their preceding space per
// French typographic convention.
func FormatText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text) + 8)
	prevSpace := false
	for _, r := range text {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			prevSpace = true
		case r == ';' || r == ':' || r == '!' || r == '?':
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			prevSpace = false
		default:
			if prevSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			prevSpace = false
		}
	}
	return b.String()
}
