package stream

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/arloliu/alembic/errs"
	"github.com/stretchr/testify/require"
)

type closingSource interface {
	Source
	io.Closer
}

func openers() map[string]func(string) (closingSource, error) {
	return map[string]func(string) (closingSource, error){
		"file":   func(p string) (closingSource, error) { return OpenFile(p) },
		"mapped": func(p string) (closingSource, error) { return OpenMapped(p) },
	}
}

func TestSources_ReadAt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o600))

	for name, open := range openers() {
		t.Run(name, func(t *testing.T) {
			src, err := open(path)
			require.NoError(t, err)
			defer src.Close()

			require.Equal(t, int64(10), src.Size())

			buf := make([]byte, 4)
			n, err := src.ReadAt(buf, 3)
			require.NoError(t, err)
			require.Equal(t, 4, n)
			require.Equal(t, []byte("3456"), buf)

			n, err = src.ReadAt(buf, 8)
			require.ErrorIs(t, err, io.EOF)
			require.Equal(t, 2, n)
		})
	}

	t.Run("memory", func(t *testing.T) {
		src := NewMemory([]byte("0123456789"))
		buf := make([]byte, 4)
		_, err := src.ReadAt(buf, 6)
		require.NoError(t, err)
		require.Equal(t, []byte("6789"), buf)

		_, err = src.ReadAt(buf, 10)
		require.ErrorIs(t, err, io.EOF)
	})
}

func TestSources_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.abc")
	for name, open := range openers() {
		t.Run(name, func(t *testing.T) {
			_, err := open(missing)
			require.ErrorIs(t, err, errs.ErrFileNotFound)
		})
	}
}

func TestMapped_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.abc")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	src, err := OpenMapped(path)
	require.NoError(t, err)
	require.Equal(t, int64(0), src.Size())

	_, err = src.ReadAt(make([]byte, 1), 0)
	require.ErrorIs(t, err, io.EOF)
	require.NoError(t, src.Close())
}

func TestMemory_WriteAtGrows(t *testing.T) {
	m := NewMemory(nil)
	_, err := m.WriteAt([]byte{1, 2}, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0, 1, 2}, m.Bytes())

	_, err = m.WriteAt([]byte{9}, 0)
	require.NoError(t, err)
	require.Equal(t, int64(6), m.Size())
	require.Equal(t, byte(9), m.Bytes()[0])

	_, err = m.WriteAt([]byte{1}, -1)
	require.Error(t, err)
}
