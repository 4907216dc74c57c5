package collision

import (
	"testing"

	"github.com/arloliu/alembic/errs"
	"github.com/stretchr/testify/require"
)

func TestNewTracker(t *testing.T) {
	tracker := NewTracker()

	require.NotNil(t, tracker)
	require.Equal(t, 0, tracker.Count())
	require.Empty(t, tracker.Names())
}

func TestTracker_Track(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantErr error
		want    []string
	}{
		{name: "unique names", input: []string{"P", "N", "uv"}, want: []string{"P", "N", "uv"}},
		{name: "empty name", input: []string{"P", ""}, wantErr: errs.ErrInvalidName, want: []string{"P"}},
		{name: "slash in name", input: []string{"a/b"}, wantErr: errs.ErrInvalidName, want: []string{}},
		{name: "duplicate", input: []string{"xform", "mesh", "xform"}, wantErr: errs.ErrDuplicateName, want: []string{"xform", "mesh"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker()
			var err error
			for _, n := range tt.input {
				if _, err = tracker.Track(n); err != nil {
					break
				}
			}
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, len(tt.want), tracker.Count())
			if len(tt.want) > 0 {
				require.Equal(t, tt.want, tracker.Names())
			}
		})
	}
}

func TestTracker_HashCollision(t *testing.T) {
	tracker := NewTracker()
	tracker.idOf = func(string) uint64 { return 42 }

	i0, err := tracker.Track("left")
	require.NoError(t, err)
	i1, err := tracker.Track("right")
	require.NoError(t, err, "colliding IDs with different names are allowed")
	require.Equal(t, 0, i0)
	require.Equal(t, 1, i1)

	_, err = tracker.Track("right")
	require.ErrorIs(t, err, errs.ErrDuplicateName)

	idx, ok := tracker.Lookup("right")
	require.True(t, ok)
	require.Equal(t, 1, idx)

	_, ok = tracker.Lookup("center")
	require.False(t, ok)
}

func TestTracker_Reset(t *testing.T) {
	tracker := NewTracker()
	_, _ = tracker.Track("a")
	_, _ = tracker.Track("b")

	tracker.Reset()
	require.Equal(t, 0, tracker.Count())

	_, err := tracker.Track("a")
	require.NoError(t, err, "names are reusable after Reset")
}

func TestValidName(t *testing.T) {
	require.True(t, ValidName("ABC"))
	require.True(t, ValidName(".geom"))
	require.False(t, ValidName(""))
	require.False(t, ValidName("/"))
}
