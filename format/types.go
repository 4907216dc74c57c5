package format

import (
	"fmt"
	"strings"
)

type (
	PodType         uint8
	PropertyType    uint8
	CompressionType uint8
)

// Plain-old-data element types. The numeric values are the 4-bit codes stored
// in property headers and must not change.
const (
	PodBool    PodType = 0  // PodBool represents bool_t, one byte per element.
	PodUint8   PodType = 1  // PodUint8 represents uint8_t.
	PodInt8    PodType = 2  // PodInt8 represents int8_t.
	PodUint16  PodType = 3  // PodUint16 represents uint16_t.
	PodInt16   PodType = 4  // PodInt16 represents int16_t.
	PodUint32  PodType = 5  // PodUint32 represents uint32_t.
	PodInt32   PodType = 6  // PodInt32 represents int32_t.
	PodUint64  PodType = 7  // PodUint64 represents uint64_t.
	PodInt64   PodType = 8  // PodInt64 represents int64_t.
	PodFloat16 PodType = 9  // PodFloat16 represents IEEE-754 half precision.
	PodFloat32 PodType = 10 // PodFloat32 represents IEEE-754 single precision.
	PodFloat64 PodType = 11 // PodFloat64 represents IEEE-754 double precision.
	PodString  PodType = 12 // PodString represents NUL-terminated UTF-8 strings.
	PodWstring PodType = 13 // PodWstring represents NUL-terminated 32-bit wide strings.

	PodUnknown PodType = 127 // PodUnknown marks an unset or invalid POD.
)

const (
	PropertyCompound PropertyType = 0x0 // PropertyCompound holds named sub-properties.
	PropertyScalar   PropertyType = 0x1 // PropertyScalar holds one value (of extent elements) per sample.
	PropertyArray    PropertyType = 0x2 // PropertyArray holds a variable-length array per sample.
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
	CompressionZlib CompressionType = 0x5 // CompressionZlib represents zlib with an 8-byte size frame.
)

var podNames = [...]string{
	PodBool:    "bool_t",
	PodUint8:   "uint8_t",
	PodInt8:    "int8_t",
	PodUint16:  "uint16_t",
	PodInt16:   "int16_t",
	PodUint32:  "uint32_t",
	PodInt32:   "int32_t",
	PodUint64:  "uint64_t",
	PodInt64:   "int64_t",
	PodFloat16: "float16_t",
	PodFloat32: "float32_t",
	PodFloat64: "float64_t",
	PodString:  "string",
	PodWstring: "wstring",
}

var podSizes = [...]int{
	PodBool:    1,
	PodUint8:   1,
	PodInt8:    1,
	PodUint16:  2,
	PodInt16:   2,
	PodUint32:  4,
	PodInt32:   4,
	PodUint64:  8,
	PodInt64:   8,
	PodFloat16: 2,
	PodFloat32: 4,
	PodFloat64: 8,
	PodString:  1,
	PodWstring: 4,
}

func (p PodType) String() string {
	if p.IsValid() {
		return podNames[p]
	}

	return "UNKNOWN"
}

// IsValid reports whether p is one of the fourteen stored POD codes.
func (p PodType) IsValid() bool {
	return p <= PodWstring
}

// NumBytes returns the storage size of one element.
//
// Strings report their code unit size (1 for string, 4 for wstring), the
// granularity used when hashing and terminating string payloads.
func (p PodType) NumBytes() int {
	if p.IsValid() {
		return podSizes[p]
	}

	return 0
}

// IsString reports whether p is string or wstring.
func (p PodType) IsString() bool {
	return p == PodString || p == PodWstring
}

// IsFloat reports whether p is a floating point type.
func (p PodType) IsFloat() bool {
	return p == PodFloat16 || p == PodFloat32 || p == PodFloat64
}

// IsInteger reports whether p is a signed or unsigned integer type.
func (p PodType) IsInteger() bool {
	return p >= PodUint8 && p <= PodInt64
}

// ParsePodType returns the POD for a name such as "float32_t".
func ParsePodType(name string) (PodType, error) {
	for i, n := range podNames {
		if n == name {
			return PodType(i), nil
		}
	}

	return PodUnknown, fmt.Errorf("unknown POD type name: %q", name)
}

func (p PropertyType) String() string {
	switch p {
	case PropertyCompound:
		return "Compound"
	case PropertyScalar:
		return "Scalar"
	case PropertyArray:
		return "Array"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionZlib:
		return "Zlib"
	default:
		return "Unknown"
	}
}

// ParseCompressionType is the inverse of CompressionType.String, ignoring case.
func ParseCompressionType(s string) (CompressionType, error) {
	for _, c := range []CompressionType{CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4, CompressionZlib} {
		if strings.EqualFold(c.String(), s) {
			return c, nil
		}
	}

	return 0, fmt.Errorf("unknown compression type: %q", s)
}
