package compress

import (
	"fmt"
	"testing"
)

func BenchmarkAllCodecs_Compress(b *testing.B) {
	for _, points := range []int{256, 4096, 65536} {
		data := positionsPayload(points)
		for name, codec := range getAllCodecs() {
			b.Run(fmt.Sprintf("%s/%dpts", name, points), func(b *testing.B) {
				b.SetBytes(int64(len(data)))
				b.ReportAllocs()
				for b.Loop() {
					_, _ = codec.Compress(data)
				}
			})
		}
	}
}

func BenchmarkAllCodecs_DecompressFramed(b *testing.B) {
	data := positionsPayload(16384)
	for name, codec := range getAllCodecs() {
		framed := CompressFramed(codec, data)
		b.Run(name, func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for b.Loop() {
				_ = DecompressFramed(codec, framed)
			}
		})
	}
}

func BenchmarkZlibLevels(b *testing.B) {
	data := positionsPayload(16384)
	for _, level := range []int{1, 4, 9} {
		b.Run(fmt.Sprintf("level%d", level), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for b.Loop() {
				_ = Compress(data, level)
			}
		})
	}
}
