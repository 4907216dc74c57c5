package endian

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetEngines(t *testing.T) {
	require.Equal(t, binary.LittleEndian, GetLittleEndianEngine())
	require.Equal(t, binary.BigEndian, GetBigEndianEngine())
}

func TestFloat64RoundTrip(t *testing.T) {
	engine := GetLittleEndianEngine()

	values := []float64{0, 1.0 / 24.0, -3.5, math.MaxFloat64 / 32, math.Inf(1)}
	for _, v := range values {
		buf := AppendFloat64(engine, nil, v)
		require.Len(t, buf, 8)
		require.Equal(t, v, Float64(engine, buf))
	}
}

func TestFloat64LittleEndianLayout(t *testing.T) {
	buf := AppendFloat64(GetLittleEndianEngine(), nil, 1.0)
	// 1.0 = 0x3FF0000000000000, least significant byte first
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0xF0, 0x3F}, buf)
}

func TestFloat32RoundTrip(t *testing.T) {
	engine := GetLittleEndianEngine()

	buf := AppendFloat32(engine, []byte{0xAA}, 2.5)
	require.Len(t, buf, 5)
	require.Equal(t, byte(0xAA), buf[0])
	require.InDelta(t, float32(2.5), Float32(engine, buf[1:]), 0)
}
