package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContentDigest(t *testing.T) {
	tests := []struct {
		name   string
		input  []byte
		h1, h2 uint64
	}{
		{name: "empty", input: nil, h1: 0, h2: 0},
		{name: "hello", input: []byte("hello"), h1: 0xcbd8a7b341bd9b02, h2: 0x5b1e906a48ae1d19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ContentDigest(tt.input)
			h1, h2 := d.Halves()
			require.Equal(t, tt.h1, h1)
			require.Equal(t, tt.h2, h2)
			require.Equal(t, Sum128{tt.h1, tt.h2}, DigestSum(d))
		})
	}

	require.True(t, ContentDigest(nil).IsZero())
	require.Equal(t, "029bbd41b3a7d8cb191dae486a901e5b", ContentDigest([]byte("hello")).String())
}

func TestDigestFromBytes(t *testing.T) {
	d := ContentDigest([]byte("payload"))

	got, ok := DigestFromBytes(append(d[:], 0xFF))
	require.True(t, ok)
	require.Equal(t, d, got)

	_, ok = DigestFromBytes(d[:15])
	require.False(t, ok)
}

func TestStructural(t *testing.T) {
	sum := func(parts ...string) Sum128 {
		s := NewStructural()
		for _, p := range parts {
			s.WriteString(p)
		}
		return s.Sum()
	}

	require.Equal(t, sum("ab"), sum("a", "b"), "writes are concatenated")
	require.Equal(t, sum(), sum("", ""), "empty writes are ignored")
	require.NotEqual(t, sum("a"), sum("b"))

	a := NewStructural()
	a.WriteUint64(1)
	b := NewStructural()
	b.WriteSum(Sum128{1, 0})
	require.NotEqual(t, a.Sum(), b.Sum())
}

func TestMix(t *testing.T) {
	first := Sum128{1, 2}
	second := Sum128{3, 4}

	var acc Sum128
	Mix(&acc, false, first)
	require.Equal(t, first, acc)

	Mix(&acc, true, second)
	require.NotEqual(t, first, acc)
	require.NotEqual(t, second, acc)

	var again Sum128
	Mix(&again, false, first)
	Mix(&again, true, second)
	require.Equal(t, acc, again)
}

func TestWithDimensions(t *testing.T) {
	v := Sum128{7, 9}

	require.Equal(t, v, WithDimensions(v, nil))
	require.NotEqual(t, v, WithDimensions(v, []uint64{3}))
	require.NotEqual(t, WithDimensions(v, []uint64{2, 3}), WithDimensions(v, []uint64{3, 2}))
}
