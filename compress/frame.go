package compress

import "github.com/arloliu/alembic/endian"

const (
	// SizeHeaderSize is the length of the uncompressed size prefix.
	SizeHeaderSize = 8
	// MaxDecompressedSize bounds the size a frame header may announce.
	// Larger values mean the input was never compressed.
	MaxDecompressedSize = 1 << 30
)

// CompressFramed compresses data with c and prepends the uncompressed size.
// Empty input, a failing compressor, or a result that is not smaller than
// data all yield data unchanged.
func CompressFramed(c Compressor, data []byte) []byte {
	if len(data) == 0 {
		return data
	}

	payload, err := c.Compress(data)
	if err != nil || SizeHeaderSize+len(payload) >= len(data) {
		return data
	}

	out := make([]byte, SizeHeaderSize, SizeHeaderSize+len(payload))
	endian.GetLittleEndianEngine().PutUint64(out, uint64(len(data)))

	return append(out, payload...)
}

// DecompressFramed reverses CompressFramed. Whenever data does not hold a
// valid frame for d, it is returned unchanged.
func DecompressFramed(d Decompressor, data []byte) []byte {
	size, ok := FramedSize(data)
	if !ok {
		return data
	}

	var (
		out []byte
		err error
	)
	if sd, sized := d.(SizedDecompressor); sized {
		out, err = sd.DecompressSize(data[SizeHeaderSize:], int(size))
	} else {
		out, err = d.Decompress(data[SizeHeaderSize:])
	}
	if err != nil || uint64(len(out)) != size {
		return data
	}

	return out
}

// FramedSize returns the size announced by a frame header, or false when data
// cannot be a frame.
func FramedSize(data []byte) (uint64, bool) {
	if len(data) < SizeHeaderSize {
		return 0, false
	}

	size := endian.GetLittleEndianEngine().Uint64(data)
	if size > MaxDecompressedSize {
		return 0, false
	}

	return size, true
}
