package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config controls what abcinspect prints and how it opens archives. It can
// be loaded from a YAML file; command-line flags override file values.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Mmap selects memory-mapped reads.
	Mmap bool `yaml:"mmap"`

	// CacheSize is the sample cache budget, such as "64MiB".
	CacheSize string `yaml:"cache_size"`

	// MaxDepth limits the object tree walk. Zero means unlimited.
	MaxDepth int `yaml:"max_depth"`

	Properties bool `yaml:"properties"`

	// Samples prints the size of the first N samples of every property.
	Samples int `yaml:"samples"`

	Hashes bool `yaml:"hashes"`
}

// Default returns the configuration used when neither a file nor flags set
// a value.
func Default() Config {
	return Config{
		LogLevel:   "warn",
		Mmap:       true,
		CacheSize:  "64MiB",
		Properties: true,
	}
}

// LoadFile merges the YAML file at path into c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.CacheBytes(); err != nil {
		return err
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if c.Samples < 0 {
		return fmt.Errorf("samples must not be negative, got %d", c.Samples)
	}

	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	return level, nil
}

// CacheBytes parses CacheSize.
func (c *Config) CacheBytes() (int64, error) {
	n, err := humanize.ParseBytes(c.CacheSize)
	if err != nil {
		return 0, fmt.Errorf("invalid cache size %q: %w", c.CacheSize, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("cache size must be positive")
	}

	return int64(n), nil
}

// arguments is the result of command-line parsing.
type arguments struct {
	config Config
	paths  []string
	help   bool
}

func newFlagSet() *pflag.FlagSet {
	defaults := Default()

	flagSet := pflag.NewFlagSet("abcinspect", pflag.ContinueOnError)
	flagSet.String("config", "", "YAML config file")
	flagSet.String("log-level", defaults.LogLevel, "log level: debug, info, warn, error")
	flagSet.Bool("mmap", defaults.Mmap, "memory-map archives")
	flagSet.String("cache-size", defaults.CacheSize, "sample cache budget")
	flagSet.Int("max-depth", defaults.MaxDepth, "object tree depth limit, 0 for unlimited")
	flagSet.Bool("properties", defaults.Properties, "list properties of every object")
	flagSet.Int("samples", defaults.Samples, "print sizes of the first N samples")
	flagSet.Bool("hashes", defaults.Hashes, "print structural hashes of objects")
	flagSet.BoolP("help", "h", false, "show help")

	return flagSet
}

// parseArguments parses args. Values from --config are applied first and
// explicitly set flags win over them.
func parseArguments(flagSet *pflag.FlagSet, args []string) (arguments, error) {
	if err := flagSet.Parse(args); err != nil {
		return arguments{}, err
	}

	var result arguments
	result.help, _ = flagSet.GetBool("help")
	result.paths = flagSet.Args()
	result.config = Default()

	if path, _ := flagSet.GetString("config"); path != "" {
		if err := result.config.LoadFile(path); err != nil {
			return arguments{}, err
		}
	}

	cfg := &result.config
	flagSet.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "log-level":
			cfg.LogLevel, _ = flagSet.GetString(f.Name)
		case "mmap":
			cfg.Mmap, _ = flagSet.GetBool(f.Name)
		case "cache-size":
			cfg.CacheSize, _ = flagSet.GetString(f.Name)
		case "max-depth":
			cfg.MaxDepth, _ = flagSet.GetInt(f.Name)
		case "properties":
			cfg.Properties, _ = flagSet.GetBool(f.Name)
		case "samples":
			cfg.Samples, _ = flagSet.GetInt(f.Name)
		case "hashes":
			cfg.Hashes, _ = flagSet.GetBool(f.Name)
		}
	})

	if err := cfg.Validate(); err != nil {
		return arguments{}, err
	}

	return result, nil
}
