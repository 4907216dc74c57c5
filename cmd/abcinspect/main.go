// abcinspect prints the structure of Alembic archives: archive metadata,
// time samplings, the object tree and the properties of every object.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/arloliu/alembic/archive"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	flagSet := newFlagSet()
	flagSet.SetOutput(stderr)

	parsed, err := parseArguments(flagSet, args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet, stderr)
			return nil
		}
		return err
	}
	if parsed.help {
		printHelp(flagSet, stderr)
		return nil
	}
	if len(parsed.paths) == 0 {
		printHelp(flagSet, stderr)
		return errors.New("no archive given")
	}

	cfg := parsed.config
	level, _ := cfg.Level()
	cacheBytes, _ := cfg.CacheBytes()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	for _, path := range parsed.paths {
		r, err := archive.Open(path,
			archive.WithMmap(cfg.Mmap),
			archive.WithCacheSize(cacheBytes),
			archive.WithReaderLogger(logger),
		)
		if err != nil {
			return err
		}

		err = newInspector(stdout, cfg).Archive(r)
		if closeErr := r.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("inspect %s: %w", path, err)
		}
	}

	return nil
}

func printHelp(flagSet *pflag.FlagSet, out io.Writer) {
	fmt.Fprintf(out, `abcinspect prints the object tree of Alembic (Ogawa) archives.

Usage:
  abcinspect [flags] archive.abc...

Examples:
  # Objects and properties
  abcinspect scene.abc

  # Objects only, two levels deep
  abcinspect --properties=false --max-depth 2 scene.abc

  # Settings from a file, with the log level overridden
  abcinspect --config inspect.yaml --log-level debug scene.abc

Flags:
`)
	flagSet.SetOutput(out)
	flagSet.PrintDefaults()
}
