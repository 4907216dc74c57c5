// Package endian provides the byte order engine used by every on-disk structure
// of the archive.
//
// The Ogawa layout is little-endian throughout (block lengths, group children,
// table entries, sample payloads), so most callers only need:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint64(buf, uint64(len(payload)))
//
// EndianEngine combines ByteOrder and AppendByteOrder so block encoders can
// append directly to pooled buffers without scratch slices.
//
// The float helpers encode IEEE-754 bit patterns, which is how time-sampling
// tables and chrono values are stored.
package endian

import (
	"encoding/binary"
	"math"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
//
// Only the two-byte format version in the file header is stored big-endian.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// AppendFloat64 appends the IEEE-754 bits of v using the given engine.
func AppendFloat64(engine EndianEngine, b []byte, v float64) []byte {
	return engine.AppendUint64(b, math.Float64bits(v))
}

// Float64 decodes an IEEE-754 float64 from the first 8 bytes of b.
func Float64(engine EndianEngine, b []byte) float64 {
	return math.Float64frombits(engine.Uint64(b))
}

// AppendFloat32 appends the IEEE-754 bits of v using the given engine.
func AppendFloat32(engine EndianEngine, b []byte, v float32) []byte {
	return engine.AppendUint32(b, math.Float32bits(v))
}

// Float32 decodes an IEEE-754 float32 from the first 4 bytes of b.
func Float32(engine EndianEngine, b []byte) float32 {
	return math.Float32frombits(engine.Uint32(b))
}
