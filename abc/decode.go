package abc

import (
	"fmt"
	"unicode/utf8"

	"github.com/arloliu/alembic/endian"
	"github.com/arloliu/alembic/errs"
)

// Typed views over raw sample bytes. All values are little-endian.

func checkLen(raw []byte, size int, kind string) (int, error) {
	if len(raw)%size != 0 {
		return 0, fmt.Errorf("%w: %d bytes is not a whole number of %s values", errs.ErrTypeMismatch, len(raw), kind)
	}

	return len(raw) / size, nil
}

// Bools decodes one byte per value.
func Bools(raw []byte) []bool {
	out := make([]bool, len(raw))
	for i, b := range raw {
		out[i] = b != 0
	}

	return out
}

// Uint8s returns a copy of raw.
func Uint8s(raw []byte) []uint8 {
	return append([]uint8(nil), raw...)
}

// Int16s decodes raw as int16 values.
func Int16s(raw []byte) ([]int16, error) {
	n, err := checkLen(raw, 2, "int16")
	if err != nil {
		return nil, err
	}

	engine := endian.GetLittleEndianEngine()
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(engine.Uint16(raw[i*2:]))
	}

	return out, nil
}

// Uint16s decodes raw as uint16 values. Half precision floats are returned
// as their bit patterns.
func Uint16s(raw []byte) ([]uint16, error) {
	n, err := checkLen(raw, 2, "uint16")
	if err != nil {
		return nil, err
	}

	engine := endian.GetLittleEndianEngine()
	out := make([]uint16, n)
	for i := range out {
		out[i] = engine.Uint16(raw[i*2:])
	}

	return out, nil
}

// Int32s decodes raw as int32 values.
func Int32s(raw []byte) ([]int32, error) {
	n, err := checkLen(raw, 4, "int32")
	if err != nil {
		return nil, err
	}

	engine := endian.GetLittleEndianEngine()
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(engine.Uint32(raw[i*4:]))
	}

	return out, nil
}

// Uint32s decodes raw as uint32 values.
func Uint32s(raw []byte) ([]uint32, error) {
	n, err := checkLen(raw, 4, "uint32")
	if err != nil {
		return nil, err
	}

	engine := endian.GetLittleEndianEngine()
	out := make([]uint32, n)
	for i := range out {
		out[i] = engine.Uint32(raw[i*4:])
	}

	return out, nil
}

// Int64s decodes raw as int64 values.
func Int64s(raw []byte) ([]int64, error) {
	n, err := checkLen(raw, 8, "int64")
	if err != nil {
		return nil, err
	}

	engine := endian.GetLittleEndianEngine()
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(engine.Uint64(raw[i*8:]))
	}

	return out, nil
}

// Uint64s decodes raw as uint64 values.
func Uint64s(raw []byte) ([]uint64, error) {
	n, err := checkLen(raw, 8, "uint64")
	if err != nil {
		return nil, err
	}

	engine := endian.GetLittleEndianEngine()
	out := make([]uint64, n)
	for i := range out {
		out[i] = engine.Uint64(raw[i*8:])
	}

	return out, nil
}

// Float32s decodes raw as float32 values.
func Float32s(raw []byte) ([]float32, error) {
	n, err := checkLen(raw, 4, "float32")
	if err != nil {
		return nil, err
	}

	engine := endian.GetLittleEndianEngine()
	out := make([]float32, n)
	for i := range out {
		out[i] = endian.Float32(engine, raw[i*4:])
	}

	return out, nil
}

// Float64s decodes raw as float64 values.
func Float64s(raw []byte) ([]float64, error) {
	n, err := checkLen(raw, 8, "float64")
	if err != nil {
		return nil, err
	}

	engine := endian.GetLittleEndianEngine()
	out := make([]float64, n)
	for i := range out {
		out[i] = endian.Float64(engine, raw[i*8:])
	}

	return out, nil
}

// Strings splits NUL-terminated UTF-8 strings. A missing final terminator
// is tolerated.
func Strings(raw []byte) ([]string, error) {
	var out []string
	start := 0
	for i, b := range raw {
		if b != 0 {
			continue
		}
		s := raw[start:i]
		if !utf8.Valid(s) {
			return nil, fmt.Errorf("%w: string %d is not valid UTF-8", errs.ErrInvalidDataType, len(out))
		}
		out = append(out, string(s))
		start = i + 1
	}
	if start < len(raw) {
		s := raw[start:]
		if !utf8.Valid(s) {
			return nil, fmt.Errorf("%w: string %d is not valid UTF-8", errs.ErrInvalidDataType, len(out))
		}
		out = append(out, string(s))
	}

	return out, nil
}

// Wstrings splits NUL-terminated strings of 32-bit code points.
func Wstrings(raw []byte) ([]string, error) {
	points, err := Uint32s(raw)
	if err != nil {
		return nil, err
	}

	var out []string
	var cur []rune
	for _, p := range points {
		if p == 0 {
			out = append(out, string(cur))
			cur = cur[:0]

			continue
		}
		cur = append(cur, rune(p))
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}

	return out, nil
}

// Raw encoders used when writing samples.

// AppendFloat32s appends values to b.
func AppendFloat32s(b []byte, values ...float32) []byte {
	engine := endian.GetLittleEndianEngine()
	for _, v := range values {
		b = endian.AppendFloat32(engine, b, v)
	}

	return b
}

// AppendFloat64s appends values to b.
func AppendFloat64s(b []byte, values ...float64) []byte {
	engine := endian.GetLittleEndianEngine()
	for _, v := range values {
		b = endian.AppendFloat64(engine, b, v)
	}

	return b
}

// AppendInt32s appends values to b.
func AppendInt32s(b []byte, values ...int32) []byte {
	engine := endian.GetLittleEndianEngine()
	for _, v := range values {
		b = engine.AppendUint32(b, uint32(v))
	}

	return b
}

// AppendUint32s appends values to b.
func AppendUint32s(b []byte, values ...uint32) []byte {
	engine := endian.GetLittleEndianEngine()
	for _, v := range values {
		b = engine.AppendUint32(b, v)
	}

	return b
}

// AppendInt64s appends values to b.
func AppendInt64s(b []byte, values ...int64) []byte {
	engine := endian.GetLittleEndianEngine()
	for _, v := range values {
		b = engine.AppendUint64(b, uint64(v))
	}

	return b
}

// AppendStrings appends NUL-terminated copies of values to b.
func AppendStrings(b []byte, values ...string) []byte {
	for _, v := range values {
		b = append(b, v...)
		b = append(b, 0)
	}

	return b
}
