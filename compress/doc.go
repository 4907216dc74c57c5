// Package compress provides the sample payload codecs of the archive writer
// and reader.
//
// # Framing
//
// Every codec output stored in an archive is framed the same way:
//
//	+----------------------+---------------------------+
//	| uncompressed size    | codec stream              |
//	| u64 little-endian    |                           |
//	+----------------------+---------------------------+
//
// Framing never pessimizes: when the framed result is not smaller than the
// input, the input is stored unchanged. Unframing is equally forgiving. Input
// shorter than the frame header, a header announcing more than
// MaxDecompressedSize, a stream that fails to decode, or one that decodes to
// a different length is returned unchanged.
//
// The zlib helpers Compress, Decompress and IsCompressed implement this frame
// with a zlib stream, which is what other Ogawa readers understand. Zstd, S2
// and LZ4 reuse the frame and are only readable by this module.
//
// # Codecs
//
// The Codec implementations operate on bare streams without the frame:
//
//   - NoOpCompressor: returns data unchanged
//   - ZlibCompressor: zlib stream at a chosen level
//   - ZstdCompressor: Zstandard, pure Go by default, cgo with the gozstd build tag
//   - S2Compressor: S2 block format
//   - LZ4Compressor: LZ4 block format, HC at high levels
//
// CompressFramed and DecompressFramed wrap any Codec with the frame.
package compress
