package ogawa

import (
	"bytes"
	"io"
	"testing"

	"github.com/arloliu/alembic/compress"
	"github.com/arloliu/alembic/endian"
	"github.com/arloliu/alembic/errs"
	"github.com/arloliu/alembic/format"
	"github.com/arloliu/alembic/internal/hash"
	"github.com/arloliu/alembic/section"
	"github.com/arloliu/alembic/stream"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T, opts ...WriterOption) (*Writer, *stream.Memory) {
	t.Helper()

	mem := stream.NewMemory(nil)
	w, err := NewWriter(stream.NewWriter(mem), opts...)
	require.NoError(t, err)

	return w, mem
}

func TestEncodeSample(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		pod  format.PodType
		want []byte
	}{
		{name: "numeric unchanged", raw: []byte{1, 2}, pod: format.PodFloat32, want: []byte{1, 2}},
		{name: "empty numeric", raw: nil, pod: format.PodInt32, want: nil},
		{name: "string terminated", raw: []byte("abc"), pod: format.PodString, want: []byte("abc\x00")},
		{name: "string already terminated", raw: []byte("abc\x00"), pod: format.PodString, want: []byte("abc\x00")},
		{name: "empty string", raw: nil, pod: format.PodString, want: []byte{0}},
		{name: "wstring terminated", raw: []byte{'a', 0, 0, 0}, pod: format.PodWstring, want: []byte{'a', 0, 0, 0, 0, 0, 0, 0}},
		{name: "wstring short", raw: []byte{0, 0}, pod: format.PodWstring, want: []byte{0, 0, 0, 0, 0, 0}},
		{name: "wstring already terminated", raw: []byte{'a', 0, 0, 0, 0, 0, 0, 0}, pod: format.PodWstring, want: []byte{'a', 0, 0, 0, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, EncodeSample(tt.raw, tt.pod))
		})
	}
}

func TestWriter_BlockLayout(t *testing.T) {
	w, mem := newTestWriter(t)
	engine := endian.GetLittleEndianEngine()

	require.Equal(t, uint64(section.HeaderSize), w.Pos())

	dataPos, err := w.WriteData([]byte{0xaa, 0xbb})
	require.NoError(t, err)
	require.Equal(t, uint64(16), dataPos)

	emptyPos, err := w.WriteData(nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0), emptyPos)

	groupPos, err := w.WriteGroup([]uint64{section.DataRef(dataPos), section.EmptyData})
	require.NoError(t, err)
	require.Equal(t, uint64(26), groupPos)

	emptyGroup, err := w.WriteGroup(nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0), emptyGroup)

	require.NoError(t, w.Freeze(section.GroupRef(groupPos)))

	b := mem.Bytes()
	require.Equal(t, []byte("Ogawa\xff\x00\x01"), b[:8])
	require.Equal(t, groupPos, engine.Uint64(b[8:16]))
	require.Equal(t, uint64(2), engine.Uint64(b[16:24]))
	require.Equal(t, []byte{0xaa, 0xbb}, b[24:26])
	require.Equal(t, uint64(2), engine.Uint64(b[26:34]))
	require.Equal(t, section.DataRef(16), engine.Uint64(b[34:42]))
	require.Equal(t, section.EmptyData, engine.Uint64(b[42:50]))
	require.Len(t, b, 50)
}

func TestWriter_GroupWithAbsentChildRoundTrip(t *testing.T) {
	w, mem := newTestWriter(t)

	a, err := w.WriteData([]byte("first"))
	require.NoError(t, err)
	b, err := w.WriteData([]byte("third"))
	require.NoError(t, err)

	children := []uint64{section.DataRef(a), section.EmptyData, section.DataRef(b)}
	group, err := w.WriteGroup(children)
	require.NoError(t, err)
	require.NoError(t, w.Freeze(section.GroupRef(group)))

	r, err := NewReader(mem)
	require.NoError(t, err)
	require.True(t, r.Frozen())
	require.Equal(t, group, r.Root())

	got, err := r.ReadGroup(r.Root())
	require.NoError(t, err)
	require.Equal(t, children, got)

	want := [][]byte{[]byte("first"), nil, []byte("third")}
	for i, ref := range got {
		require.True(t, section.IsData(ref), "child %d", i)

		data, err := r.ReadData(ref)
		require.NoError(t, err)
		require.Equal(t, want[i], data, "child %d", i)
	}
	require.True(t, section.IsEmpty(got[1]))
}

func TestWriter_KeyedDedup(t *testing.T) {
	w, mem := newTestWriter(t)
	payload := []byte{0, 0, 128, 63, 0, 0, 0, 64}

	p1, err := w.WriteKeyedData(payload, format.PodFloat32)
	require.NoError(t, err)
	p2, err := w.WriteKeyedData(payload, format.PodInt32)
	require.NoError(t, err)
	require.Equal(t, p1, p2, "same bytes under numeric PODs share one block")

	p3, err := w.WriteKeyedData(payload, format.PodString)
	require.NoError(t, err)
	require.NotEqual(t, p1, p3)

	p4, err := w.WriteKeyedData(nil, format.PodFloat64)
	require.NoError(t, err)
	require.Equal(t, uint64(0), p4)

	require.Equal(t, 2, w.DedupCount())
	require.Equal(t, 1, w.DedupHits())
	require.NoError(t, w.Freeze(0))

	r, err := NewReader(mem)
	require.NoError(t, err)

	size, err := r.DataSize(p1)
	require.NoError(t, err)
	require.Equal(t, uint64(section.KeySize+len(payload)), size)

	key, err := r.ReadKey(p1)
	require.NoError(t, err)
	require.Equal(t, hash.ContentDigest(payload), key)

	got, err := r.ReadKeyedPayload(p1)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	str, err := r.ReadKeyedPayload(p3)
	require.NoError(t, err)
	require.Equal(t, append(append([]byte(nil), payload...), 0), str)
}

func TestWriter_DedupDisabled(t *testing.T) {
	w, _ := newTestWriter(t, WithDedup(false))
	p1, err := w.WriteKeyedData([]byte{1, 2, 3, 4}, format.PodUint8)
	require.NoError(t, err)
	p2, err := w.WriteKeyedData([]byte{1, 2, 3, 4}, format.PodUint8)
	require.NoError(t, err)
	require.NotEqual(t, p1, p2)
	require.False(t, w.DedupEnabled())

	w.SetDedup(true)
	p3, _ := w.WriteKeyedData([]byte{5}, format.PodUint8)
	p4, _ := w.WriteKeyedData([]byte{5}, format.PodUint8)
	require.Equal(t, p3, p4)
}

func TestWriter_KeyedWithKey(t *testing.T) {
	w, mem := newTestWriter(t)
	payload := []byte("copied")
	digest := hash.ContentDigest(EncodeSample(payload, format.PodString))

	p1, err := w.WriteKeyedDataWithKey(payload, digest, format.PodString)
	require.NoError(t, err)
	p2, err := w.WriteKeyedData(payload, format.PodString)
	require.NoError(t, err)
	require.Equal(t, p1, p2)
	require.NoError(t, w.Freeze(0))

	r, err := NewReader(mem)
	require.NoError(t, err)
	key, err := r.ReadKey(p1)
	require.NoError(t, err)
	require.Equal(t, digest, key)
}

func TestWriter_Compressed(t *testing.T) {
	w, mem := newTestWriter(t, WithCompressor(compress.NewZlibCompressor(6), format.CompressionZlib))
	payload := bytes.Repeat([]byte{0, 0, 128, 63}, 512)

	pos, err := w.WriteKeyedData(payload, format.PodFloat32)
	require.NoError(t, err)
	require.NoError(t, w.Freeze(0))

	stats := w.CompressionStats()
	require.Equal(t, int64(1), stats.Compressed)
	require.Equal(t, format.CompressionZlib, stats.Algorithm)

	r, err := NewReader(mem)
	require.NoError(t, err)

	key, err := r.ReadKey(pos)
	require.NoError(t, err)
	require.Equal(t, hash.ContentDigest(payload), key, "digest covers the uncompressed bytes")

	stored, err := r.ReadKeyedPayload(pos)
	require.NoError(t, err)
	require.Less(t, len(stored), len(payload))
	require.Equal(t, payload, compress.Decompress(stored))
}

func TestWriter_Frozen(t *testing.T) {
	w, _ := newTestWriter(t)
	require.NoError(t, w.Freeze(0))
	require.True(t, w.Frozen())

	_, err := w.WriteData([]byte{1})
	require.ErrorIs(t, err, errs.ErrFrozen)
	_, err = w.WriteKeyedData([]byte{1}, format.PodUint8)
	require.ErrorIs(t, err, errs.ErrFrozen)
	_, err = w.WriteKeyedDataWithKey([]byte{1}, hash.Digest{}, format.PodUint8)
	require.ErrorIs(t, err, errs.ErrFrozen)
	_, err = w.WriteGroup([]uint64{1})
	require.ErrorIs(t, err, errs.ErrFrozen)
	require.ErrorIs(t, w.Freeze(0), errs.ErrFrozen)
}

// failingSink accepts writes until failing is set and records Close.
type failingSink struct {
	mem     *stream.Memory
	failing bool
	closed  bool
}

func (s *failingSink) WriteAt(p []byte, off int64) (int, error) {
	if s.failing {
		return 0, io.ErrShortWrite
	}

	return s.mem.WriteAt(p, off)
}

func (s *failingSink) Close() error {
	s.closed = true
	return nil
}

func TestWriter_FreezeClosesOnPatchFailure(t *testing.T) {
	sink := &failingSink{mem: stream.NewMemory(nil)}
	w, err := NewWriter(stream.NewWriterSize(sink, 1))
	require.NoError(t, err)

	_, err = w.WriteData([]byte{1, 2, 3})
	require.NoError(t, err)

	sink.failing = true
	err = w.Freeze(0)
	require.ErrorIs(t, err, errs.ErrWriteFailed)
	require.ErrorIs(t, err, io.ErrShortWrite)
	require.True(t, sink.closed)
	require.True(t, w.Frozen())
	require.NoError(t, w.Abort())
}

func TestWriter_Abort(t *testing.T) {
	w, mem := newTestWriter(t)
	_, _ = w.WriteData([]byte{1})
	require.NoError(t, w.Abort())
	require.NoError(t, w.Abort())

	r, err := NewReader(mem)
	require.NoError(t, err)
	require.False(t, r.Frozen())
}
