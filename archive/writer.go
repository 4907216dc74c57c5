package archive

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/arloliu/alembic/errs"
	"github.com/arloliu/alembic/format"
	"github.com/arloliu/alembic/internal/options"
	"github.com/arloliu/alembic/metadata"
	"github.com/arloliu/alembic/ogawa"
	"github.com/arloliu/alembic/stream"
	"github.com/arloliu/alembic/timesampling"
)

// rootObjectName is the name of the top object. It is never stored.
const rootObjectName = "ABC"

// Writer builds an archive. It is not safe for concurrent use.
type Writer struct {
	name   string
	out    *stream.Writer
	ow     *ogawa.Writer
	logger *slog.Logger

	compression    format.CompressionType
	libraryVersion int32
	meta           metadata.MetaData

	root      *OObject
	samplings *timesampling.Table
	indexed   *metadata.IndexedTable

	closed bool
}

// Create creates the archive file at path, truncating an existing file.
func Create(path string, opts ...WriterOption) (*Writer, error) {
	out, err := stream.Create(path)
	if err != nil {
		return nil, err
	}

	w, err := newWriter(path, out, opts...)
	if err != nil {
		_ = out.Close()
		return nil, err
	}

	return w, nil
}

// NewWriter writes an archive to sink, typically an *os.File or a
// stream.Memory. The file header is written immediately.
func NewWriter(sink io.WriterAt, opts ...WriterOption) (*Writer, error) {
	return newWriter("", stream.NewWriter(sink), opts...)
}

func newWriter(name string, out *stream.Writer, opts ...WriterOption) (*Writer, error) {
	cfg := newWriterConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	ogawaOpts := []ogawa.WriterOption{
		ogawa.WithDedup(cfg.dedup),
		ogawa.WithLogger(cfg.logger),
	}
	if cfg.codec != nil {
		ogawaOpts = append(ogawaOpts, ogawa.WithCompressor(cfg.codec, cfg.compression))
	}

	ow, err := ogawa.NewWriter(out, ogawaOpts...)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		name:           name,
		out:            out,
		ow:             ow,
		logger:         cfg.logger,
		compression:    cfg.compression,
		libraryVersion: cfg.libraryVersion,
		meta:           cfg.meta,
		samplings:      timesampling.NewTable(),
		indexed:        metadata.NewIndexedTable(),
	}
	w.root = newObject(w, nil, rootObjectName, "/", metadata.MetaData{})

	return w, nil
}

// Name returns the path given to Create, or "" for NewWriter.
func (w *Writer) Name() string {
	return w.name
}

// Root returns the top object "/".
func (w *Writer) Root() *OObject {
	return w.root
}

// AddTimeSampling registers ts and returns its index. An equivalent sampling
// already registered is reused. Index 0 is the identity sampling.
func (w *Writer) AddTimeSampling(ts timesampling.TimeSampling) (uint32, error) {
	if w.closed {
		return 0, errs.ErrFrozen
	}

	return w.samplings.Add(ts)
}

// NumTimeSamplings returns the number of registered time samplings.
func (w *Writer) NumTimeSamplings() int {
	return w.samplings.Len()
}

// TimeSampling returns the time sampling at index.
func (w *Writer) TimeSampling(index uint32) (timesampling.TimeSampling, bool) {
	return w.samplings.Get(index)
}

// MetaData returns a copy of the archive metadata set so far.
func (w *Writer) MetaData() metadata.MetaData {
	return w.meta.Clone()
}

// SetMetaData sets a single archive metadata value.
func (w *Writer) SetMetaData(key, value string) error {
	if w.closed {
		return errs.ErrFrozen
	}
	w.meta.Set(key, value)

	return nil
}

// SetApplication records the name of the writing application.
func (w *Writer) SetApplication(name string) error {
	return w.SetMetaData(KeyApplication, name)
}

// SetDescription records a user description.
func (w *Writer) SetDescription(desc string) error {
	return w.SetMetaData(KeyDescription, desc)
}

// SetDateWritten records when the archive was written.
func (w *Writer) SetDateWritten(date string) error {
	return w.SetMetaData(KeyDateWritten, date)
}

// SetFPS records the frame rate of the producing application.
func (w *Writer) SetFPS(fps float64) error {
	return w.SetMetaData(KeyDCCFPS, strconv.FormatFloat(fps, 'g', -1, 64))
}

// DedupEnabled reports whether identical samples share storage.
func (w *Writer) DedupEnabled() bool {
	return w.ow.DedupEnabled()
}

// SetDedup toggles deduplication. It only affects samples serialized by Close.
func (w *Writer) SetDedup(enabled bool) {
	w.ow.SetDedup(enabled)
}

// DedupCount returns the number of distinct sample payloads written.
// It is zero until Close.
func (w *Writer) DedupCount() int {
	return w.ow.DedupCount()
}

// Closed reports whether Close has been called.
func (w *Writer) Closed() bool {
	return w.closed
}

// Close serializes the object tree, writes the archive tables and freezes
// the file. A writer whose tree was never touched produces an archive with
// an empty top object. Any later mutation fails with errs.ErrFrozen.
func (w *Writer) Close() error {
	if w.closed {
		return errs.ErrFrozen
	}
	w.closed = true

	if err := w.writeArchive(); err != nil {
		_ = w.ow.Abort()
		return fmt.Errorf("close archive %q: %w", w.name, err)
	}

	stats := w.ow.CompressionStats()
	w.logger.Debug("archive written",
		"name", w.name,
		"size", humanize.IBytes(w.ow.Pos()),
		"time_samplings", w.samplings.Len(),
		"metadata_entries", w.indexed.Len(),
		"unique_samples", w.ow.DedupCount(),
		"dedup_hits", w.ow.DedupHits(),
		"compression", w.compression,
		"compressed_payloads", stats.Compressed)

	return nil
}

// Abort closes the output without finishing the archive. The file keeps its
// unfrozen header.
func (w *Writer) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true

	return w.ow.Abort()
}
