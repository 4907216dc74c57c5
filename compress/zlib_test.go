package compress

import (
	"bytes"
	"testing"

	"github.com/arloliu/alembic/endian"
	"github.com/stretchr/testify/require"
)

func TestCompress(t *testing.T) {
	compressible := bytes.Repeat([]byte{0, 0, 128, 63}, 1024)

	tests := []struct {
		name      string
		data      []byte
		level     int
		unchanged bool
	}{
		{name: "level zero", data: compressible, level: 0, unchanged: true},
		{name: "negative level", data: compressible, level: -1, unchanged: true},
		{name: "empty", data: []byte{}, level: 6, unchanged: true},
		{name: "incompressible", data: []byte{1, 2, 3, 4, 5, 6, 7}, level: 6, unchanged: true},
		{name: "fast", data: compressible, level: 1},
		{name: "default", data: compressible, level: 3},
		{name: "best", data: compressible, level: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Compress(tt.data, tt.level)
			if tt.unchanged {
				require.Equal(t, tt.data, out)
				return
			}

			require.Less(t, len(out), len(tt.data))
			require.Equal(t, uint64(len(tt.data)), endian.GetLittleEndianEngine().Uint64(out))
			require.True(t, IsCompressed(out))
			require.Equal(t, tt.data, Decompress(out))
		})
	}
}

func TestCompress_RoundTripAllLevels(t *testing.T) {
	inputs := map[string][]byte{
		"empty":          {},
		"short":          []byte("alembic"),
		"compressible":   bytes.Repeat([]byte{0, 0, 128, 63}, 1024),
		"incompressible": []byte{1, 2, 3, 4, 5, 6, 7},
	}

	for level := 0; level <= 9; level++ {
		for name, data := range inputs {
			out := Compress(data, level)
			require.Equal(t, data, Decompress(out), "level %d, %s", level, name)
		}
	}
}

func TestCompress_HeaderFlags(t *testing.T) {
	data := bytes.Repeat([]byte("abcd"), 512)

	require.Equal(t, []byte{0x78, 0x01}, Compress(data, 1)[8:10])
	require.Equal(t, []byte{0x78, 0x9C}, Compress(data, 4)[8:10])
	require.Equal(t, []byte{0x78, 0xDA}, Compress(data, 6)[8:10])
}

func TestDecompress_Fallbacks(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	valid := Compress(bytes.Repeat([]byte{7}, 4096), 6)

	huge := engine.AppendUint64(nil, MaxDecompressedSize+1)
	huge = append(huge, valid[8:]...)

	wrongSize := engine.AppendUint64(nil, 10)
	wrongSize = append(wrongSize, valid[8:]...)

	corrupt := append([]byte(nil), valid...)
	corrupt[12] ^= 0xff

	tests := []struct {
		name string
		data []byte
	}{
		{name: "short", data: []byte{1, 2, 3}},
		{name: "size over limit", data: huge},
		{name: "size mismatch", data: wrongSize},
		{name: "corrupt stream", data: corrupt},
		{name: "raw floats", data: bytes.Repeat([]byte{0, 0, 128, 63}, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.data, Decompress(tt.data))
		})
	}
}

func TestIsCompressed(t *testing.T) {
	require.False(t, IsCompressed(nil))
	require.False(t, IsCompressed(make([]byte, 9)))
	require.False(t, IsCompressed([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0x78, 0x02}))
	require.True(t, IsCompressed([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0x78, 0xDA}))
}
