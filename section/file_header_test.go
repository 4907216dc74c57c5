package section

import (
	"testing"

	"github.com/arloliu/alembic/errs"
	"github.com/stretchr/testify/require"
)

func TestNewFileHeader(t *testing.T) {
	h := NewFileHeader()

	require.False(t, h.Frozen)
	require.Equal(t, uint16(CurrentVersion), h.Version)
	require.Zero(t, h.RootPos)
}

func TestFileHeader_Bytes(t *testing.T) {
	h := FileHeader{Frozen: true, Version: CurrentVersion, RootPos: 0x0102}
	b := h.Bytes()

	require.Len(t, b, HeaderSize)
	require.Equal(t, []byte("Ogawa"), b[:5])
	require.Equal(t, byte(0xFF), b[5])
	require.Equal(t, []byte{0x00, 0x01}, b[6:8])
	require.Equal(t, []byte{0x02, 0x01, 0, 0, 0, 0, 0, 0}, b[8:16])
}

func TestFileHeader_Parse(t *testing.T) {
	t.Run("Valid header", func(t *testing.T) {
		original := FileHeader{Frozen: true, Version: CurrentVersion, RootPos: 4096}

		parsed := &FileHeader{}
		err := parsed.Parse(original.Bytes())

		require.NoError(t, err)
		require.Equal(t, original, *parsed)
	})

	t.Run("Not frozen", func(t *testing.T) {
		parsed, err := ParseFileHeader(NewFileHeader().Bytes())

		require.NoError(t, err)
		require.False(t, parsed.Frozen)
	})

	t.Run("Invalid size", func(t *testing.T) {
		err := (&FileHeader{}).Parse([]byte{1, 2, 3})
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("Invalid magic", func(t *testing.T) {
		data := NewFileHeader().Bytes()
		copy(data, "Hdf5!")

		_, err := ParseFileHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidMagic)
	})

	t.Run("Short non-archive", func(t *testing.T) {
		_, err := ParseFileHeader([]byte("PK\x03\x04\x14\x00"))
		require.ErrorIs(t, err, errs.ErrInvalidMagic)
	})

	t.Run("Unsupported version", func(t *testing.T) {
		data := NewFileHeader().Bytes()
		data[6], data[7] = 0x00, 0x02

		_, err := ParseFileHeader(data)
		require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
	})
}

func TestOffsets(t *testing.T) {
	require.True(t, IsData(DataRef(128)))
	require.False(t, IsGroup(DataRef(128)))
	require.True(t, IsGroup(GroupRef(128)))
	require.Equal(t, uint64(128), Position(DataRef(128)))
	require.Equal(t, uint64(128), Position(GroupRef(128)))

	require.Equal(t, EmptyData, DataRef(0))
	require.True(t, IsEmpty(EmptyData))
	require.True(t, IsEmpty(EmptyGroup))
	require.False(t, IsEmpty(DataRef(16)))
}
