package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

type s2Mode uint8

const (
	s2Default s2Mode = iota
	s2Better
	s2Best
)

// S2Compressor compresses payloads with the S2 block format.
type S2Compressor struct {
	mode s2Mode
}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates an S2 codec with the default encoder.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// NewS2CompressorLevel creates an S2 codec. Levels 6 to 8 use the better
// encoder and 9 or above the best encoder.
func NewS2CompressorLevel(level int) S2Compressor {
	switch {
	case level >= 9:
		return S2Compressor{mode: s2Best}
	case level >= 6:
		return S2Compressor{mode: s2Better}
	default:
		return S2Compressor{}
	}
}

// Compress compresses data using S2.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	switch c.mode {
	case s2Best:
		return s2.EncodeBest(nil, data), nil
	case s2Better:
		return s2.EncodeBetter(nil, data), nil
	default:
		return s2.Encode(nil, data), nil
	}
}

// Decompress decodes an S2 block.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	out, err := s2.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return out, nil
}
