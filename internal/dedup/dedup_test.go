package dedup

import (
	"testing"

	"github.com/arloliu/alembic/format"
	"github.com/arloliu/alembic/internal/hash"
	"github.com/stretchr/testify/require"
)

func TestTag(t *testing.T) {
	tests := []struct {
		pod  format.PodType
		want format.PodType
	}{
		{format.PodFloat32, format.PodInt8},
		{format.PodUint64, format.PodInt8},
		{format.PodBool, format.PodInt8},
		{format.PodString, format.PodString},
		{format.PodWstring, format.PodWstring},
	}

	for _, tt := range tests {
		t.Run(tt.pod.String(), func(t *testing.T) {
			require.Equal(t, tt.want, Tag(tt.pod))
		})
	}
}

func TestMap_LookupRecord(t *testing.T) {
	m := New(true)
	payload := []byte{1, 2, 3, 4}
	floatKey := NewKey(hash.ContentDigest(payload), 4, format.PodFloat32)
	intKey := NewKey(hash.ContentDigest(payload), 4, format.PodInt32)
	strKey := NewKey(hash.ContentDigest(payload), 4, format.PodString)

	_, ok := m.Lookup(floatKey)
	require.False(t, ok)

	m.Record(floatKey, 100)
	pos, ok := m.Lookup(intKey)
	require.True(t, ok, "numeric PODs with equal bytes share a key")
	require.Equal(t, uint64(100), pos)

	_, ok = m.Lookup(strKey)
	require.False(t, ok, "string payloads never alias numeric ones")

	m.Record(floatKey, 200)
	pos, _ = m.Lookup(floatKey)
	require.Equal(t, uint64(100), pos, "first position wins")

	require.Equal(t, 1, m.Len())
	require.Equal(t, 2, m.Hits())
}

func TestMap_Disabled(t *testing.T) {
	m := New(false)
	key := NewKey(hash.ContentDigest([]byte("x")), 1, format.PodUint8)

	m.Record(key, 64)
	_, ok := m.Lookup(key)
	require.False(t, ok)
	require.Equal(t, 0, m.Len())

	m.SetEnabled(true)
	require.True(t, m.Enabled())
	m.Record(key, 64)
	_, ok = m.Lookup(key)
	require.True(t, ok)

	m.Reset()
	require.Equal(t, 0, m.Len())
	require.Equal(t, 0, m.Hits())
}
