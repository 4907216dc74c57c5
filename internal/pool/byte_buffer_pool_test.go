package pool

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 1024, bb.Cap())
}

func TestByteBuffer_WriteAndReset(t *testing.T) {
	bb := NewByteBuffer(16)

	n, err := bb.Write([]byte("Ogawa"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	_, _ = bb.Write([]byte{0xff})
	assert.Equal(t, []byte("Ogawa\xff"), bb.Bytes())

	capBefore := bb.Cap()
	bb.Reset()
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, capBefore, bb.Cap(), "Reset should keep capacity")
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(16)
	_, _ = bb.Write([]byte{1, 2, 3})

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, []byte{1, 2, 3}, out.Bytes())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestByteBuffer_WriteTo_Error(t *testing.T) {
	bb := NewByteBuffer(16)
	_, _ = bb.Write([]byte{1})

	_, err := bb.WriteTo(failingWriter{})
	require.Error(t, err)
}

func TestByteBuffer_Grow(t *testing.T) {
	tests := []struct {
		name     string
		initial  int
		fill     int
		required int
		minCap   int
	}{
		{name: "sufficient", initial: 64, fill: 0, required: 32, minCap: 64},
		{name: "small buffer grows by default", initial: 8, fill: 8, required: 1, minCap: 8 + BlockBufferDefaultSize},
		{name: "large request", initial: 8, fill: 8, required: 2 * BlockBufferDefaultSize, minCap: 8 + 2*BlockBufferDefaultSize},
		{name: "large buffer grows by quarter", initial: 8 * BlockBufferDefaultSize, fill: 8 * BlockBufferDefaultSize, required: 1, minCap: 10 * BlockBufferDefaultSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bb := NewByteBuffer(tt.initial)
			bb.B = append(bb.B, make([]byte, tt.fill)...)
			for i := range bb.B {
				bb.B[i] = byte(i)
			}
			before := append([]byte(nil), bb.B...)

			bb.Grow(tt.required)
			assert.GreaterOrEqual(t, bb.Cap(), tt.minCap)
			assert.GreaterOrEqual(t, bb.Cap()-bb.Len(), tt.required)
			assert.Equal(t, before, bb.Bytes(), "Grow should preserve contents")
		})
	}
}

func TestByteBufferPool_ResetsOnPut(t *testing.T) {
	p := NewByteBufferPool(32, 0)

	bb := p.Get()
	_, _ = bb.Write([]byte("stale"))
	p.Put(bb)

	again := p.Get()
	assert.Equal(t, 0, again.Len())
}

func TestByteBufferPool_MaxThreshold(t *testing.T) {
	p := NewByteBufferPool(16, 64)

	big := NewByteBuffer(128)
	p.Put(big)
	got := p.Get()
	assert.Equal(t, 16, got.Cap(), "oversized buffer must not be retained")

	p.Put(nil)
}

func TestDefaultPools(t *testing.T) {
	hb := GetHeaderBuffer()
	require.NotNil(t, hb)
	assert.Equal(t, 0, hb.Len())
	PutHeaderBuffer(hb)

	bb := GetBlockBuffer()
	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	PutBlockBuffer(bb)
}

func TestPool_ConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bb := GetBlockBuffer()
				_, _ = bb.Write([]byte{byte(id), byte(j)})
				assert.Equal(t, 2, bb.Len())
				PutBlockBuffer(bb)
			}
		}(i)
	}
	wg.Wait()
}

func BenchmarkPool_GetWritePut(b *testing.B) {
	payload := make([]byte, 256)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		bb := GetBlockBuffer()
		_, _ = bb.Write(payload)
		PutBlockBuffer(bb)
	}
}
