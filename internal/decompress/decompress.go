// Package decompress inflates the LZ4-frame compressed subtitle payloads
// extracted from the subtitle band.
//
// The encoder writes standard LZ4 frames, so the format is fixed. Camera
// capture corrupts tails far more often than heads (the band is scanned top
// to bottom), so on failure the decoder retries progressively shorter
// prefixes of the input and accepts the first one that inflates to any
// text. Such recoveries are flagged Partial so the UI can distinguish them.
package decompress

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// Result is the outcome of a successful (possibly partial) decompression.
type Result struct {
	Text    string
	Partial bool
}

// fallbackFractions are the prefix sizes retried after a full-input failure,
// in order.
var fallbackFractions = []float64{0.90, 0.75, 0.50}

// inflate decompresses as much of data as possible, returning whatever was
// recovered alongside any error.
func inflate(data []byte) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(data))
	var buf bytes.Buffer
	_, err := io.Copy(&buf, zr)
	return buf.Bytes(), err
}

// Decompress inflates a compressed block to UTF-8 text. A clean inflate
// returns the text as-is. On failure it walks the fallback ladder; the
// first prefix recovering non-empty text wins, scrubbed of invalid UTF-8
// and marked Partial. Empty input is a hard failure with no fallback.
func Decompress(data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, fmt.Errorf("decompress: empty input")
	}

	if out, err := inflate(data); err == nil {
		return Result{Text: string(out)}, nil
	}

	for _, frac := range fallbackFractions {
		n := int(float64(len(data)) * frac)
		if n == 0 {
			continue
		}
		out, _ := inflate(data[:n])
		text := strings.ToValidUTF8(string(out), "")
		if text != "" {
			return Result{Text: text, Partial: true}, nil
		}
	}
	return Result{}, fmt.Errorf("decompress: block unrecoverable after fallback attempts")
}

// Compress produces an LZ4 frame compatible with Decompress. It exists for
// encoder-side fixtures and round-trip tests; the production encoder lives
// elsewhere. Small blocks keep truncation recovery useful for large
// payloads.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if err := zw.Apply(lz4.BlockSizeOption(lz4.Block64Kb)); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	return buf.Bytes(), nil
}
