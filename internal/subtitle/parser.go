package subtitle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/overlaylab/stegosub/internal/monitoring"
)

// DefaultDurationMs is the synthesized cue duration when the payload carries
// no usable end time.
const DefaultDurationMs = 2000

// Parse turns decompressed payload text into a subtitle record. It is
// state-free: currentTimestampMs supplies the playback time used to
// synthesize timing for degraded payloads.
//
// Formats, tried in order:
//  1. "<startMs>|<endMs>|<text>" — the encoder's native format. Text may
//     contain pipes; only the first two fields split.
//  2. "<startMs>,<endMs>,<text>" — comma-delimited, with unparsable numeric
//     fields defaulting to currentTimestampMs / +2s.
//  3. The whole input as plain text with synthesized timing.
//
// Records from formats that synthesized any timing are marked Estimated.
// Only blank input fails.
func Parse(text string, currentTimestampMs int64) (*Subtitle, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("parse subtitle: empty payload")
	}

	if s, ok := parsePipe(trimmed, currentTimestampMs); ok {
		return s, nil
	}
	if s, ok := parseComma(trimmed, currentTimestampMs); ok {
		monitoring.Debugf("subtitle: pipe format rejected, recovered via comma format")
		return s, nil
	}

	// Last resort: the payload is treated as bare text at the current
	// playback position.
	monitoring.Debugf("subtitle: no structured format matched, using plain text fallback")
	return &Subtitle{
		StartTimeMs: currentTimestampMs,
		EndTimeMs:   currentTimestampMs + DefaultDurationMs,
		Text:        trimmed,
		TimestampMs: currentTimestampMs,
		Estimated:   true,
	}, nil
}

// parsePipe attempts the native pipe-delimited format. Both numeric fields
// must parse; otherwise the format is rejected, not errored.
func parsePipe(text string, currentTimestampMs int64) (*Subtitle, bool) {
	parts := strings.SplitN(text, "|", 3)
	if len(parts) != 3 {
		return nil, false
	}
	start, err1 := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	end, err2 := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err1 != nil || err2 != nil {
		return nil, false
	}
	return &Subtitle{
		StartTimeMs: start,
		EndTimeMs:   end,
		Text:        parts[2],
		TimestampMs: currentTimestampMs,
	}, true
}

// parseComma attempts the comma-delimited fallback. Unparsable numeric
// fields default to the current playback time and a two second duration,
// and mark the record estimated.
func parseComma(text string, currentTimestampMs int64) (*Subtitle, bool) {
	parts := strings.SplitN(text, ",", 3)
	if len(parts) != 3 {
		return nil, false
	}

	estimated := false
	start, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		start = currentTimestampMs
		estimated = true
	}
	end, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		end = start + DefaultDurationMs
		estimated = true
	}
	return &Subtitle{
		StartTimeMs: start,
		EndTimeMs:   end,
		Text:        parts[2],
		TimestampMs: currentTimestampMs,
		Estimated:   estimated,
	}, true
}
