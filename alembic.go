// Package alembic reads and writes Ogawa-layout Alembic archives: an
// append-only binary container of objects, properties and time-sampled data.
//
// Identical sample payloads are stored once per archive. Readers open files
// lazily, memory-mapped by default, and keep recently read samples in a
// bounded cache shared by every view of the archive.
//
// # Core Features
//
//   - Append-only writer with content-addressed sample deduplication
//   - Lazy, concurrent-safe reader over mmap or positional file reads
//   - Uniform, cyclic and acyclic time sampling with time-based sample lookup
//   - Structural hashes that identify equal property sets and subtrees
//   - Optional sample compression (zlib, Zstd, S2, LZ4)
//
// # Basic Usage
//
// Writing an archive:
//
//	w, _ := alembic.Create("scene.abc")
//	ts, _ := w.AddTimeSampling(timesampling.FPS(24, 0))
//
//	mesh, _ := w.Root().AddChild("mesh", metadata.MetaData{})
//	pts, _ := mesh.Properties().AddArray("P", format.DataTypeVec3f, archive.WithTimeSampling(ts))
//	pts.AddSample(abc.AppendFloat32s(nil, 0, 0, 0, 1, 0, 0), nil)
//
//	w.Close()
//
// Reading it back:
//
//	r, _ := alembic.Open("scene.abc")
//	defer r.Close()
//
//	mesh, _ := r.FindObject("/mesh")
//	props, _ := mesh.Properties()
//	p, _ := props.PropertyByName("P")
//	arr, _ := p.AsArray()
//	raw, _ := arr.SampleAt(timesampling.Near(1.0 / 24))
//	points, _ := abc.Float32s(raw)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the archive
// package. For fine-grained control over the block layer use ogawa directly.
package alembic

import (
	"io"

	"github.com/arloliu/alembic/archive"
	"github.com/arloliu/alembic/format"
	"github.com/arloliu/alembic/stream"
)

// DefaultCompressionLevel is the zlib level used by CreateCompressed.
const DefaultCompressionLevel = 6

var defaultWriterOptions = []archive.WriterOption{
	archive.WithDedup(true),
	archive.WithCompression(format.CompressionNone, 0),
}

var defaultReaderOptions = []archive.ReaderOption{
	archive.WithMmap(true),
}

// Create creates the archive file at path with default settings: sample
// deduplication on and no compression. opts are applied after the defaults.
//
// Example:
//
//	w, err := alembic.Create("out.abc", archive.WithApplication("exporter"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
func Create(path string, opts ...archive.WriterOption) (*archive.Writer, error) {
	return archive.Create(path, withDefaults(defaultWriterOptions, opts)...)
}

// CreateCompressed is Create with zlib sample compression at
// DefaultCompressionLevel.
func CreateCompressed(path string, opts ...archive.WriterOption) (*archive.Writer, error) {
	all := append([]archive.WriterOption{archive.WithCompression(format.CompressionZlib, DefaultCompressionLevel)}, opts...)
	return Create(path, all...)
}

// NewWriter writes an archive to sink with the Create defaults.
func NewWriter(sink io.WriterAt, opts ...archive.WriterOption) (*archive.Writer, error) {
	return archive.NewWriter(sink, withDefaults(defaultWriterOptions, opts)...)
}

// Open opens the archive at path. Files are memory-mapped unless
// archive.WithMmap(false) is given.
//
// Returns errs.ErrFileNotFound when path does not exist, and errs.ErrInvalidMagic
// or errs.ErrInvalidStructure when it is not a valid archive.
func Open(path string, opts ...archive.ReaderOption) (*archive.Reader, error) {
	return archive.Open(path, withDefaults(defaultReaderOptions, opts)...)
}

// NewReader reads an archive from an in-memory or custom source.
func NewReader(src stream.Source, opts ...archive.ReaderOption) (*archive.Reader, error) {
	return archive.NewReader(src, withDefaults(defaultReaderOptions, opts)...)
}

func withDefaults[T any](defaults, opts []T) []T {
	all := make([]T, 0, len(defaults)+len(opts))
	all = append(all, defaults...)

	return append(all, opts...)
}
