package compress

// DefaultZstdLevel is the Zstandard level used when none is configured.
const DefaultZstdLevel = 3

// ZstdCompressor compresses payloads with Zstandard.
//
// The pure Go implementation from klauspost/compress is used unless the
// module is built with the gozstd tag and cgo enabled.
type ZstdCompressor struct {
	level int
}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstandard codec at the default level.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{level: DefaultZstdLevel}
}

// NewZstdCompressorLevel creates a Zstandard codec. Levels below 1 select the
// default; 1 is fastest and 6 and above compress best.
func NewZstdCompressorLevel(level int) ZstdCompressor {
	switch {
	case level <= 0:
		level = DefaultZstdLevel
	case level >= 6:
		level = 19
	}

	return ZstdCompressor{level: level}
}
