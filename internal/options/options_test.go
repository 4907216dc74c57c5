package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type sessionConfig struct {
	level int
	app   string
	dedup bool
	calls []string
}

func withLevel(level int) Option[*sessionConfig] {
	return New(func(c *sessionConfig) error {
		if level < 0 {
			return errors.New("level cannot be negative")
		}
		c.level = level
		c.calls = append(c.calls, "level")

		return nil
	})
}

func withApp(app string) Option[*sessionConfig] {
	return NoError(func(c *sessionConfig) {
		c.app = app
		c.calls = append(c.calls, "app")
	})
}

func withDedup(enabled bool) Option[*sessionConfig] {
	return NoError(func(c *sessionConfig) {
		c.dedup = enabled
		c.calls = append(c.calls, "dedup")
	})
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option[*sessionConfig]
		want    sessionConfig
		wantErr bool
	}{
		{
			name: "no options",
			want: sessionConfig{},
		},
		{
			name: "applied in order",
			opts: []Option[*sessionConfig]{withApp("maya"), withLevel(6), withDedup(true)},
			want: sessionConfig{level: 6, app: "maya", dedup: true, calls: []string{"app", "level", "dedup"}},
		},
		{
			name: "nil option skipped",
			opts: []Option[*sessionConfig]{nil, withApp("houdini")},
			want: sessionConfig{app: "houdini", calls: []string{"app"}},
		},
		{
			name:    "stops at first error",
			opts:    []Option[*sessionConfig]{withApp("a"), withLevel(-1), withDedup(true)},
			want:    sessionConfig{app: "a", calls: []string{"app"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &sessionConfig{}
			err := Apply(cfg, tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.want, *cfg)
		})
	}
}

func TestApply_LaterOptionWins(t *testing.T) {
	cfg := &sessionConfig{}
	require.NoError(t, Apply(cfg, withLevel(1), withLevel(9)))
	require.Equal(t, 9, cfg.level)
}
