package integrity

import (
	"encoding/binary"
	"fmt"
)

// Subtitle block header layout, as written by the encoder ahead of the
// compressed payload: length:u32le | checksum:u16le. The checksum is
// BlockChecksum16 over the payload.
const BlockHeaderSize = 6

// ParseSubtitleBlock validates a subtitle band block and returns its
// payload. The length field is checked against the available bytes and the
// checksum against the payload; either mismatch rejects the block.
func ParseSubtitleBlock(data []byte) ([]byte, error) {
	if len(data) < BlockHeaderSize {
		return nil, fmt.Errorf("subtitle block needs %d header bytes, have %d", BlockHeaderSize, len(data))
	}
	length := binary.LittleEndian.Uint32(data)
	sum := binary.LittleEndian.Uint16(data[4:])

	if length == 0 {
		return nil, fmt.Errorf("subtitle block empty")
	}
	if int64(length) > int64(len(data)-BlockHeaderSize) {
		return nil, fmt.Errorf("subtitle block length %d exceeds band capacity %d", length, len(data)-BlockHeaderSize)
	}
	payload := data[BlockHeaderSize : BlockHeaderSize+int(length)]
	if got := BlockChecksum16(payload); got != sum {
		return nil, fmt.Errorf("subtitle block checksum mismatch: computed %#04x, embedded %#04x", got, sum)
	}
	return payload, nil
}

// EncodeSubtitleBlock prepends the block header to a payload. Fixture-side
// counterpart of ParseSubtitleBlock.
func EncodeSubtitleBlock(payload []byte) []byte {
	out := make([]byte, BlockHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out, uint32(len(payload)))
	binary.LittleEndian.PutUint16(out[4:], BlockChecksum16(payload))
	copy(out[BlockHeaderSize:], payload)
	return out
}
