package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// DefaultLevel is the zlib level used when none is configured.
const DefaultLevel = 6

// zlib header bytes: CMF 0x78 (deflate, 32K window) followed by one of the
// FLG values written for the fastest, default and best levels.
const (
	zlibCMF         = 0x78
	zlibFlagFastest = 0x01
	zlibFlagDefault = 0x9C
	zlibFlagBest    = 0xDA
)

// zlibLevel maps a caller level onto the three zlib levels in use.
func zlibLevel(level int) int {
	switch {
	case level == 1:
		return zlib.BestSpeed
	case level >= 2 && level <= 5:
		return zlib.DefaultCompression
	default:
		return zlib.BestCompression
	}
}

var zlibWriterPools = map[int]*sync.Pool{}

func init() {
	for _, lvl := range []int{zlib.BestSpeed, zlib.DefaultCompression, zlib.BestCompression} {
		level := lvl
		zlibWriterPools[level] = &sync.Pool{
			New: func() any {
				w, err := zlib.NewWriterLevel(nil, level)
				if err != nil {
					panic(fmt.Sprintf("failed to create zlib writer for pool: %v", err))
				}

				return w
			},
		}
	}
}

// ZlibCompressor produces bare zlib streams.
type ZlibCompressor struct {
	level int
}

var _ Codec = (*ZlibCompressor)(nil)

// NewZlibCompressor creates a zlib codec. Level 1 selects best speed, 2 to 5
// the zlib default and everything else best compression.
func NewZlibCompressor(level int) ZlibCompressor {
	return ZlibCompressor{level: zlibLevel(level)}
}

// Compress compresses data into a zlib stream.
func (c ZlibCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	pool := zlibWriterPools[c.level]
	w, _ := pool.Get().(*zlib.Writer)
	defer pool.Put(w)

	var buf bytes.Buffer
	buf.Grow(len(data) / 2)
	w.Reset(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zlib compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib compression failed: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress decodes a zlib stream.
func (c ZlibCompressor) Decompress(data []byte) ([]byte, error) {
	return c.DecompressSize(data, -1)
}

// DecompressSize decodes a zlib stream expected to inflate to size bytes.
// Output beyond size is not read, so a wrong size is detected by length.
func (c ZlibCompressor) DecompressSize(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}
	defer r.Close()

	var src io.Reader = r
	var out bytes.Buffer
	if size >= 0 {
		src = io.LimitReader(r, int64(size)+1)
		out.Grow(size)
	}
	if _, err := out.ReadFrom(src); err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}

	return out.Bytes(), nil
}

// Compress frames data as a zlib stream at level. Level 0 or below, and empty
// input, return data unchanged, as does a result that would not be smaller.
func Compress(data []byte, level int) []byte {
	if level <= 0 || len(data) == 0 {
		return data
	}

	return CompressFramed(NewZlibCompressor(level), data)
}

// Decompress reverses Compress. Data that is not a valid zlib frame is
// returned unchanged.
func Decompress(data []byte) []byte {
	return DecompressFramed(NewZlibCompressor(DefaultLevel), data)
}

// IsCompressed reports whether data looks like a zlib frame. It only inspects
// the zlib header after the size prefix and is meant for diagnostics.
func IsCompressed(data []byte) bool {
	if len(data) < SizeHeaderSize+2 || data[SizeHeaderSize] != zlibCMF {
		return false
	}

	switch data[SizeHeaderSize+1] {
	case zlibFlagFastest, zlibFlagDefault, zlibFlagBest:
		return true
	default:
		return false
	}
}
