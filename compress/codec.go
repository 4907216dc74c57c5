package compress

import (
	"fmt"

	"github.com/arloliu/alembic/format"
)

// Compressor compresses a sample payload into a bare codec stream.
//
// The returned slice is owned by the caller and the input is not modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
//
// Implementations must be safe for concurrent use since one decompressor is
// shared by every reader of an archive.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// SizedDecompressor is implemented by decompressors that can use the known
// output size to allocate exactly once.
type SizedDecompressor interface {
	DecompressSize(data []byte, size int) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats accumulates the effect of compression over many payloads.
type CompressionStats struct {
	// Algorithm identifies the codec.
	Algorithm format.CompressionType

	// Payloads is the number of payloads offered to the codec.
	Payloads int64

	// Compressed is the number of payloads stored compressed.
	Compressed int64

	// OriginalSize is the total input size in bytes.
	OriginalSize int64

	// StoredSize is the total size after framing, including payloads stored raw.
	StoredSize int64
}

// Add records one payload of original bytes stored as stored bytes.
func (s *CompressionStats) Add(original, stored int) {
	s.Payloads++
	s.OriginalSize += int64(original)
	s.StoredSize += int64(stored)
	if stored < original {
		s.Compressed++
	}
}

// CompressionRatio returns stored size / original size, 0 when nothing was recorded.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.StoredSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the saved space as a percentage.
func (s CompressionStats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec creates a codec for compressionType at level.
//
// Level follows zlib conventions: 1 favours speed, 6 and above favour ratio,
// anything else selects the codec default. Codecs without levels ignore it.
func CreateCodec(compressionType format.CompressionType, level int) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZlib:
		return NewZlibCompressor(level), nil
	case format.CompressionZstd:
		return NewZstdCompressorLevel(level), nil
	case format.CompressionS2:
		return NewS2CompressorLevel(level), nil
	case format.CompressionLZ4:
		return NewLZ4CompressorLevel(level), nil
	default:
		return nil, fmt.Errorf("invalid compression: %s", compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZlib: NewZlibCompressor(DefaultLevel),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the shared default-level codec for compressionType.
// Decompression does not depend on the level, so readers use these.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}
