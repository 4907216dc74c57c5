package section

import (
	"testing"

	"github.com/arloliu/alembic/errs"
	"github.com/stretchr/testify/require"
)

func TestSizeHintFor(t *testing.T) {
	tests := []struct {
		value uint32
		hint  uint8
	}{
		{0, SizeHintUint8},
		{255, SizeHintUint8},
		{256, SizeHintUint16},
		{65535, SizeHintUint16},
		{65536, SizeHintUint32},
		{1 << 30, SizeHintUint32},
	}

	for _, tt := range tests {
		require.Equal(t, tt.hint, SizeHintFor(tt.value), "value %d", tt.value)
	}
}

func TestHintRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 7, 255, 300, 65535, 70000} {
		hint := SizeHintFor(v)
		buf := AppendWithHint(nil, v, hint)
		require.Len(t, buf, HintWidth(hint))

		got, n, err := ReadWithHint(buf, hint)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, got)
	}
}

func TestReadWithHintShort(t *testing.T) {
	_, _, err := ReadWithHint([]byte{1}, SizeHintUint16)
	require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
}
