package compress

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/arloliu/alembic/endian"
	"github.com/arloliu/alembic/format"
	"github.com/stretchr/testify/require"
)

func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp":   NewNoOpCompressor(),
		"Zlib":   NewZlibCompressor(DefaultLevel),
		"Zstd":   NewZstdCompressor(),
		"S2":     NewS2Compressor(),
		"LZ4":    NewLZ4Compressor(),
		"LZ4-HC": NewLZ4CompressorLevel(9),
	}
}

// positionsPayload resembles a float32 P array of a slowly moving mesh.
func positionsPayload(points int) []byte {
	engine := endian.GetLittleEndianEngine()
	b := make([]byte, 0, points*12)
	for i := 0; i < points; i++ {
		x := float32(i%32) * 0.5
		y := float32(i/32) * 0.5
		b = endian.AppendFloat32(engine, b, x)
		b = endian.AppendFloat32(engine, b, y)
		b = endian.AppendFloat32(engine, b, float32(math.Sin(float64(x))))
	}

	return b
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Empty(t, compressed)

			decompressed, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Empty(t, decompressed)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"positions": positionsPayload(2048),
		"zeros":     make([]byte, 64*1024),
		"text":      bytes.Repeat([]byte("schema=AbcGeom_PolyMesh_v1;"), 100),
		"tiny":      {1, 2, 3},
	}

	for name, codec := range getAllCodecs() {
		for pname, payload := range payloads {
			t.Run(name+"/"+pname, func(t *testing.T) {
				compressed, err := codec.Compress(payload)
				if err != nil {
					// lz4 refuses incompressible input
					require.Contains(t, name, "LZ4")
					return
				}

				decompressed, err := codec.Decompress(compressed)
				require.NoError(t, err)
				require.Equal(t, payload, decompressed)

				if sd, ok := codec.(SizedDecompressor); ok {
					sized, err := sd.DecompressSize(compressed, len(payload))
					require.NoError(t, err)
					require.Equal(t, payload, sized)
				}
			})
		}
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	garbage := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x11, 0x22}

	for name, codec := range getAllCodecs() {
		if name == "NoOp" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			out, err := codec.Decompress(garbage)
			if err == nil {
				require.NotEqual(t, garbage, out)
			}
		})
	}
}

func TestAllCodecs_Framed(t *testing.T) {
	payload := positionsPayload(4096)

	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			framed := CompressFramed(codec, payload)
			if name == "NoOp" {
				require.Equal(t, payload, framed, "no-op never frames")
				return
			}

			require.Less(t, len(framed), len(payload))
			size, ok := FramedSize(framed)
			require.True(t, ok)
			require.Equal(t, uint64(len(payload)), size)
			require.Equal(t, payload, DecompressFramed(codec, framed))
		})
	}
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	payload := positionsPayload(1024)

	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			errCh := make(chan error, 16)
			for g := 0; g < 16; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < 20; i++ {
						c, err := codec.Compress(payload)
						if err != nil {
							errCh <- err
							return
						}
						d, err := codec.Decompress(c)
						if err != nil {
							errCh <- err
							return
						}
						if !bytes.Equal(payload, d) {
							errCh <- errors.New("round trip mismatch")
							return
						}
					}
				}()
			}
			wg.Wait()
			close(errCh)
			for err := range errCh {
				require.NoError(t, err)
			}
		})
	}
}

func TestCreateCodec(t *testing.T) {
	tests := []struct {
		ct      format.CompressionType
		level   int
		want    Codec
		wantErr bool
	}{
		{ct: format.CompressionNone, want: NoOpCompressor{}},
		{ct: format.CompressionZlib, level: 1, want: NewZlibCompressor(1)},
		{ct: format.CompressionZstd, level: 0, want: ZstdCompressor{level: DefaultZstdLevel}},
		{ct: format.CompressionZstd, level: 9, want: ZstdCompressor{level: 19}},
		{ct: format.CompressionS2, level: 6, want: S2Compressor{mode: s2Better}},
		{ct: format.CompressionLZ4, level: 1, want: LZ4Compressor{}},
		{ct: format.CompressionType(0x7f), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.ct, tt.level), func(t *testing.T) {
			codec, err := CreateCodec(tt.ct, tt.level)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, codec)
		})
	}
}

func TestGetCodec(t *testing.T) {
	for _, ct := range []format.CompressionType{format.CompressionNone, format.CompressionZlib, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)
		require.NotNil(t, codec)
	}

	_, err := GetCodec(format.CompressionType(0))
	require.Error(t, err)
}

func TestCompressionStats(t *testing.T) {
	var s CompressionStats
	require.Equal(t, 0.0, s.CompressionRatio())
	require.Equal(t, 0.0, s.SpaceSavings())

	s.Add(100, 40)
	s.Add(100, 100)

	require.Equal(t, int64(2), s.Payloads)
	require.Equal(t, int64(1), s.Compressed)
	require.InDelta(t, 0.7, s.CompressionRatio(), 1e-9)
	require.InDelta(t, 30.0, s.SpaceSavings(), 1e-9)
}
