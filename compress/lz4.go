package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// lz4MaxBuffer bounds the adaptive decompression buffer when the output size
// is unknown.
const lz4MaxBuffer = 128 * 1024 * 1024

// LZ4Compressor compresses payloads with the LZ4 block format.
type LZ4Compressor struct {
	hcLevel lz4.CompressionLevel // zero means the fast compressor
}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates an LZ4 codec using the fast compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// NewLZ4CompressorLevel creates an LZ4 codec. Levels 6 and above use the
// high compression compressor.
func NewLZ4CompressorLevel(level int) LZ4Compressor {
	switch {
	case level >= 9:
		return LZ4Compressor{hcLevel: lz4.Level9}
	case level >= 6:
		return LZ4Compressor{hcLevel: lz4.Level6}
	default:
		return LZ4Compressor{}
	}
}

// Compress compresses data into an LZ4 block.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	var (
		n   int
		err error
	)
	if c.hcLevel != 0 {
		hc := lz4.CompressorHC{Level: c.hcLevel}
		n, err = hc.CompressBlock(data, dst)
	} else {
		lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
		n, err = lc.CompressBlock(data, dst)
		lz4CompressorPool.Put(lc)
	}
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.New("lz4: data is incompressible")
	}

	return dst[:n], nil
}

// Decompress decodes an LZ4 block of unknown output size, doubling the buffer
// from 4x the input until it fits or lz4MaxBuffer is reached.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	for bufSize := len(data) * 4; bufSize <= lz4MaxBuffer; bufSize *= 2 {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err == nil {
			return buf[:n], nil
		}
		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, err
		}
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}

// DecompressSize decodes an LZ4 block that inflates to exactly size bytes.
func (c LZ4Compressor) DecompressSize(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	buf := make([]byte, size)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		return nil, err
	}

	return buf[:n], nil
}
