package ogawa

import (
	"testing"

	"github.com/arloliu/alembic/endian"
	"github.com/arloliu/alembic/errs"
	"github.com/arloliu/alembic/section"
	"github.com/arloliu/alembic/stream"
	"github.com/stretchr/testify/require"
)

// rawArchive builds a header followed by body, with the root at rootPos.
func rawArchive(rootPos uint64, body ...[]byte) *stream.Memory {
	h := section.NewFileHeader()
	h.Frozen = true
	h.RootPos = rootPos

	b := h.Bytes()
	for _, part := range body {
		b = append(b, part...)
	}

	return stream.NewMemory(b)
}

func u64(v ...uint64) []byte {
	engine := endian.GetLittleEndianEngine()
	var b []byte
	for _, x := range v {
		b = engine.AppendUint64(b, x)
	}

	return b
}

func TestNewReader_Header(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "bad magic", data: []byte("Ogawb\xff\x00\x01\x00\x00\x00\x00\x00\x00\x00\x00"), wantErr: errs.ErrInvalidMagic},
		{name: "bad version", data: []byte("Ogawa\xff\x00\x02\x00\x00\x00\x00\x00\x00\x00\x00"), wantErr: errs.ErrUnsupportedVersion},
		{name: "short", data: []byte("Ogawa"), wantErr: errs.ErrInvalidHeaderSize},
		{name: "short bad magic", data: []byte("HDF5\x00\x00"), wantErr: errs.ErrInvalidMagic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(stream.NewMemory(tt.data))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReader_Blocks(t *testing.T) {
	// 16: data "hi", 26: group [data 16, empty group]
	src := rawArchive(26,
		u64(2), []byte("hi"),
		u64(2, section.DataRef(16), section.EmptyGroup),
	)

	r, err := NewReader(src)
	require.NoError(t, err)
	require.True(t, r.Frozen())
	require.Equal(t, uint64(26), r.Root())

	children, err := r.ReadGroup(r.Root())
	require.NoError(t, err)
	require.Equal(t, []uint64{section.DataRef(16), 0}, children)

	data, err := r.ReadData(children[0])
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), data)

	empty, err := r.ReadGroup(children[1])
	require.NoError(t, err)
	require.Empty(t, empty)

	data, err = r.ReadData(section.EmptyData)
	require.NoError(t, err)
	require.Empty(t, data)
}

func TestReader_Corruption(t *testing.T) {
	tests := []struct {
		name    string
		src     *stream.Memory
		read    func(r *Reader) error
		wantErr error
	}{
		{
			name: "group count exceeds file",
			src:  rawArchive(16, u64(1000, 1)),
			read: func(r *Reader) error {
				_, err := r.ReadGroup(16)
				return err
			},
			wantErr: errs.ErrInvalidStructure,
		},
		{
			name: "data length exceeds file",
			src:  rawArchive(0, u64(64), []byte("abc")),
			read: func(r *Reader) error {
				_, err := r.ReadData(16)
				return err
			},
			wantErr: errs.ErrUnexpectedEOF,
		},
		{
			name: "prefix past end",
			src:  rawArchive(0, []byte{1, 2, 3}),
			read: func(r *Reader) error {
				_, err := r.ReadData(16)
				return err
			},
			wantErr: errs.ErrUnexpectedEOF,
		},
		{
			name: "position inside header",
			src:  rawArchive(0, u64(1, 1)),
			read: func(r *Reader) error {
				_, err := r.ReadGroup(4)
				return err
			},
			wantErr: errs.ErrInvalidStructure,
		},
		{
			name: "key on short block",
			src:  rawArchive(0, u64(3), []byte("abc")),
			read: func(r *Reader) error {
				_, err := r.ReadKey(16)
				return err
			},
			wantErr: errs.ErrInvalidStructure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(tt.src)
			require.NoError(t, err)
			require.ErrorIs(t, tt.read(r), tt.wantErr)
		})
	}
}
