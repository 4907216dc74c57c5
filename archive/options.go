package archive

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/arloliu/alembic/cache"
	"github.com/arloliu/alembic/compress"
	"github.com/arloliu/alembic/errs"
	"github.com/arloliu/alembic/format"
	"github.com/arloliu/alembic/internal/options"
	"github.com/arloliu/alembic/metadata"
	"github.com/arloliu/alembic/section"
)

type writerConfig struct {
	logger         *slog.Logger
	compression    format.CompressionType
	codec          compress.Codec
	dedup          bool
	libraryVersion int32
	meta           metadata.MetaData
}

func newWriterConfig() *writerConfig {
	return &writerConfig{
		logger:         slog.New(slog.DiscardHandler),
		compression:    format.CompressionNone,
		dedup:          true,
		libraryVersion: DefaultLibraryVersion,
	}
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*writerConfig]

// WithLogger sets the logger for write diagnostics. Nil keeps the discard logger.
func WithLogger(logger *slog.Logger) WriterOption {
	return options.NoError(func(c *writerConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithCompression compresses sample payloads with the given codec.
// CompressionNone, the default, stores samples as is. The choice is
// recorded in the archive metadata so readers know to decompress.
func WithCompression(compression format.CompressionType, level int) WriterOption {
	return options.New(func(c *writerConfig) error {
		if compression == format.CompressionNone {
			c.compression, c.codec = compression, nil
			return nil
		}

		codec, err := compress.CreateCodec(compression, level)
		if err != nil {
			return err
		}
		c.compression, c.codec = compression, codec

		return nil
	})
}

// WithDedup enables or disables sample deduplication. Enabled by default.
func WithDedup(enabled bool) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.dedup = enabled
	})
}

// WithLibraryVersion overrides the library version recorded in the archive.
// Readers reject versions below 9999.
func WithLibraryVersion(version int32) WriterOption {
	return options.New(func(c *writerConfig) error {
		if version < section.MinLibraryVersion {
			return fmt.Errorf("%w: library version %d below %d", errs.ErrUnsupportedVersion, version, section.MinLibraryVersion)
		}
		c.libraryVersion = version

		return nil
	})
}

// WithApplication records the name of the writing application.
func WithApplication(name string) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.meta.Set(KeyApplication, name)
	})
}

// WithDescription records a user description.
func WithDescription(desc string) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.meta.Set(KeyDescription, desc)
	})
}

// WithDateWritten records when the archive was written.
func WithDateWritten(date string) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.meta.Set(KeyDateWritten, date)
	})
}

// WithFPS records the frame rate of the producing application.
func WithFPS(fps float64) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.meta.Set(KeyDCCFPS, strconv.FormatFloat(fps, 'g', -1, 64))
	})
}

// WithArchiveMetaData merges md into the archive metadata.
func WithArchiveMetaData(md metadata.MetaData) WriterOption {
	return options.NoError(func(c *writerConfig) {
		for k, v := range md.All() {
			c.meta.Set(k, v)
		}
	})
}

type readerConfig struct {
	logger    *slog.Logger
	cache     *cache.ReadSampleCache
	cacheSize int64
	mmap      bool
}

func newReaderConfig() *readerConfig {
	return &readerConfig{
		logger:    slog.New(slog.DiscardHandler),
		cacheSize: cache.DefaultMaxSize,
		mmap:      true,
	}
}

// ReaderOption configures a Reader.
type ReaderOption = options.Option[*readerConfig]

// WithReaderLogger sets the logger for read diagnostics.
func WithReaderLogger(logger *slog.Logger) ReaderOption {
	return options.NoError(func(c *readerConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithCache shares an existing sample cache between readers.
func WithCache(sc *cache.ReadSampleCache) ReaderOption {
	return options.NoError(func(c *readerConfig) {
		c.cache = sc
	})
}

// WithCacheSize sets the byte budget of the reader's own sample cache.
// It has no effect together with WithCache.
func WithCacheSize(bytes int64) ReaderOption {
	return options.New(func(c *readerConfig) error {
		if bytes <= 0 {
			return fmt.Errorf("cache size must be positive, got %d", bytes)
		}
		c.cacheSize = bytes

		return nil
	})
}

// WithMmap selects memory-mapped (the default) or positional file reads for Open.
func WithMmap(enabled bool) ReaderOption {
	return options.NoError(func(c *readerConfig) {
		c.mmap = enabled
	})
}
