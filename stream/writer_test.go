package stream

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arloliu/alembic/errs"
	"github.com/stretchr/testify/require"
)

func TestWriter_AppendAndPatch(t *testing.T) {
	tests := []struct {
		name       string
		bufferSize int
	}{
		{name: "tiny buffer", bufferSize: 4},
		{name: "default buffer", bufferSize: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := NewMemory(nil)
			w := NewWriterSize(mem, tt.bufferSize)

			_, err := w.Write([]byte("Ogawa\x00\x00\x01"))
			require.NoError(t, err)
			require.Equal(t, uint64(8), w.Pos())

			_, err = w.Write(make([]byte, 8))
			require.NoError(t, err)
			_, err = w.Write([]byte("payload"))
			require.NoError(t, err)
			require.Equal(t, uint64(23), w.Pos())

			_, err = w.WriteAt([]byte{0xff}, 5)
			require.NoError(t, err)
			_, err = w.WriteAt([]byte{16, 0, 0, 0, 0, 0, 0, 0}, 8)
			require.NoError(t, err)

			require.NoError(t, w.Close())
			require.Equal(t, []byte("Ogawa\xff\x00\x01\x10\x00\x00\x00\x00\x00\x00\x00payload"), mem.Bytes())
		})
	}
}

func TestWriter_PatchOutsideStream(t *testing.T) {
	w := NewWriter(NewMemory(nil))
	_, _ = w.Write([]byte{1, 2, 3})

	_, err := w.WriteAt([]byte{1, 2}, 2)
	require.ErrorIs(t, err, errs.ErrWriteFailed)
	_, err = w.WriteAt([]byte{1}, -1)
	require.ErrorIs(t, err, errs.ErrWriteFailed)
}

func TestWriter_LargeWriteBypassesBuffer(t *testing.T) {
	mem := NewMemory(nil)
	w := NewWriterSize(mem, 8)

	_, _ = w.Write([]byte{1, 2})
	big := make([]byte, 32)
	for i := range big {
		big[i] = byte(i)
	}
	_, err := w.Write(big)
	require.NoError(t, err)
	require.Equal(t, 34, len(mem.Bytes()), "buffered prefix flushed before the large write")

	_, _ = w.Write([]byte{9})
	require.NoError(t, w.Flush())
	require.Equal(t, byte(9), mem.Bytes()[34])
}

func TestWriter_Closed(t *testing.T) {
	w := NewWriter(NewMemory(nil))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	require.NoError(t, w.Flush())

	_, err := w.Write([]byte{1})
	require.ErrorIs(t, err, errs.ErrFrozen)
	_, err = w.WriteAt([]byte{1}, 0)
	require.ErrorIs(t, err, errs.ErrFrozen)
}

func TestCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.abc")

	w, err := Create(path)
	require.NoError(t, err)
	_, _ = w.Write([]byte("abcdef"))
	_, _ = w.WriteAt([]byte("X"), 0)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("Xbcdef"), data)

	_, err = Create(filepath.Join(t.TempDir(), "missing", "dir", "out.abc"))
	require.ErrorIs(t, err, errs.ErrWriteFailed)
}
