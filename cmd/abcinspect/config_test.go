package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "inspect.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestParseArguments(t *testing.T) {
	configPath := writeConfig(t, "log_level: debug\nmax_depth: 3\nsamples: 2\nmmap: false\n")

	tests := []struct {
		name    string
		args    []string
		want    Config
		paths   []string
		wantErr bool
	}{
		{
			name:  "defaults",
			args:  []string{"a.abc"},
			want:  Default(),
			paths: []string{"a.abc"},
		},
		{
			name: "flags",
			args: []string{"--max-depth", "1", "--properties=false", "--cache-size", "1MiB", "a.abc", "b.abc"},
			want: Config{
				LogLevel:  "warn",
				Mmap:      true,
				CacheSize: "1MiB",
				MaxDepth:  1,
			},
			paths: []string{"a.abc", "b.abc"},
		},
		{
			name: "file",
			args: []string{"--config", configPath, "a.abc"},
			want: Config{
				LogLevel:   "debug",
				CacheSize:  "64MiB",
				MaxDepth:   3,
				Properties: true,
				Samples:    2,
			},
			paths: []string{"a.abc"},
		},
		{
			name: "flag overrides file",
			args: []string{"--config", configPath, "--max-depth", "0", "--log-level", "error", "a.abc"},
			want: Config{
				LogLevel:   "error",
				CacheSize:  "64MiB",
				Properties: true,
				Samples:    2,
			},
			paths: []string{"a.abc"},
		},
		{name: "bad level", args: []string{"--log-level", "loud"}, wantErr: true},
		{name: "bad cache size", args: []string{"--cache-size", "lots"}, wantErr: true},
		{name: "negative samples", args: []string{"--samples", "-1"}, wantErr: true},
		{name: "missing config", args: []string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, wantErr: true},
		{name: "unknown flag", args: []string{"--bogus"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flagSet := newFlagSet()
			flagSet.SetOutput(discard{})

			got, err := parseArguments(flagSet, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.config)
			require.Equal(t, tt.paths, got.paths)
		})
	}
}

func TestConfigParsers(t *testing.T) {
	cfg := Default()

	level, err := cfg.Level()
	require.NoError(t, err)
	require.Equal(t, slog.LevelWarn, level)

	size, err := cfg.CacheBytes()
	require.NoError(t, err)
	require.Equal(t, int64(64<<20), size)

	cfg.CacheSize = "0"
	_, err = cfg.CacheBytes()
	require.Error(t, err)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
