package ogawa

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/arloliu/alembic/compress"
	"github.com/arloliu/alembic/endian"
	"github.com/arloliu/alembic/errs"
	"github.com/arloliu/alembic/format"
	"github.com/arloliu/alembic/internal/dedup"
	"github.com/arloliu/alembic/internal/hash"
	"github.com/arloliu/alembic/internal/options"
	"github.com/arloliu/alembic/internal/pool"
	"github.com/arloliu/alembic/section"
	"github.com/arloliu/alembic/stream"
)

// WriterOption configures a Writer.
type WriterOption = options.Option[*Writer]

// WithDedup enables or disables keyed data deduplication. Enabled by default.
func WithDedup(enabled bool) WriterOption {
	return options.NoError(func(w *Writer) {
		w.dedup.SetEnabled(enabled)
	})
}

// WithCompressor compresses keyed data payloads with c using the size frame
// of package compress. Digests are always taken over the uncompressed bytes.
func WithCompressor(c compress.Compressor, algorithm format.CompressionType) WriterOption {
	return options.NoError(func(w *Writer) {
		w.codec = c
		w.stats.Algorithm = algorithm
	})
}

// WithLogger sets the logger for write statistics.
func WithLogger(logger *slog.Logger) WriterOption {
	return options.NoError(func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	})
}

// Writer appends blocks to a stream. It is not safe for concurrent use.
type Writer struct {
	out    *stream.Writer
	dedup  *dedup.Map
	codec  compress.Compressor
	stats  compress.CompressionStats
	logger *slog.Logger
	frozen bool

	dataBytes uint64
	blocks    int
}

// NewWriter writes an unfrozen header to out and returns a writer positioned
// after it.
func NewWriter(out *stream.Writer, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		out:    out,
		dedup:  dedup.New(true),
		logger: slog.New(slog.DiscardHandler),
	}
	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	if out.Pos() != 0 {
		return nil, fmt.Errorf("%w: stream already at position %d", errs.ErrWriteFailed, out.Pos())
	}
	if _, err := out.Write(section.NewFileHeader().Bytes()); err != nil {
		return nil, err
	}

	return w, nil
}

// Pos returns the position the next block starts at.
func (w *Writer) Pos() uint64 {
	return w.out.Pos()
}

// Frozen reports whether Freeze has been called.
func (w *Writer) Frozen() bool {
	return w.frozen
}

// WriteData writes a data block and returns its position. Empty data is not
// written and yields position 0.
func (w *Writer) WriteData(data []byte) (uint64, error) {
	if w.frozen {
		return 0, errs.ErrFrozen
	}
	if len(data) == 0 {
		return 0, nil
	}

	pos := w.out.Pos()
	var prefix [section.SizePrefix]byte
	endian.GetLittleEndianEngine().PutUint64(prefix[:], uint64(len(data)))
	if err := w.write(prefix[:], data); err != nil {
		return 0, err
	}
	w.dataBytes += uint64(len(data))

	return pos, nil
}

// WriteKeyedData encodes raw for pod, then writes it as a keyed data block
// unless an identical payload was already written in this session.
// An empty encoded payload yields position 0.
func (w *Writer) WriteKeyedData(raw []byte, pod format.PodType) (uint64, error) {
	if w.frozen {
		return 0, errs.ErrFrozen
	}

	encoded := EncodeSample(raw, pod)
	if len(encoded) == 0 {
		return 0, nil
	}

	return w.writeKeyed(encoded, hash.ContentDigest(encoded), pod)
}

// WriteKeyedDataWithKey is WriteKeyedData with a digest computed elsewhere,
// typically read from another archive. The digest must be that of the
// encoded payload.
func (w *Writer) WriteKeyedDataWithKey(raw []byte, digest hash.Digest, pod format.PodType) (uint64, error) {
	if w.frozen {
		return 0, errs.ErrFrozen
	}

	encoded := EncodeSample(raw, pod)
	if len(encoded) == 0 {
		return 0, nil
	}

	return w.writeKeyed(encoded, digest, pod)
}

func (w *Writer) writeKeyed(encoded []byte, digest hash.Digest, pod format.PodType) (uint64, error) {
	key := dedup.NewKey(digest, uint64(len(encoded)), pod)
	if pos, ok := w.dedup.Lookup(key); ok {
		return pos, nil
	}

	stored := encoded
	if w.codec != nil {
		stored = compress.CompressFramed(w.codec, encoded)
		w.stats.Add(len(encoded), len(stored))
	}

	pos := w.out.Pos()
	buf := pool.GetHeaderBuffer()
	defer pool.PutHeaderBuffer(buf)

	buf.B = endian.GetLittleEndianEngine().AppendUint64(buf.B, uint64(section.KeySize+len(stored)))
	buf.B = append(buf.B, digest[:]...)
	if err := w.write(buf.B, stored); err != nil {
		return 0, err
	}
	w.dataBytes += uint64(len(stored))
	w.dedup.Record(key, pos)

	return pos, nil
}

// WriteGroup writes a group of child references and returns its position.
// An empty group is not written and yields position 0.
func (w *Writer) WriteGroup(children []uint64) (uint64, error) {
	if w.frozen {
		return 0, errs.ErrFrozen
	}
	if len(children) == 0 {
		return 0, nil
	}

	pos := w.out.Pos()
	buf := pool.GetHeaderBuffer()
	defer pool.PutHeaderBuffer(buf)

	engine := endian.GetLittleEndianEngine()
	buf.Grow(section.SizePrefix * (len(children) + 1))
	buf.B = engine.AppendUint64(buf.B, uint64(len(children)))
	for _, c := range children {
		buf.B = engine.AppendUint64(buf.B, c)
	}
	if err := w.write(buf.B); err != nil {
		return 0, err
	}

	return pos, nil
}

// Freeze records root as the archive root group, marks the header frozen and
// closes the stream. Every later write fails with errs.ErrFrozen.
func (w *Writer) Freeze(root uint64) error {
	if w.frozen {
		return errs.ErrFrozen
	}
	w.frozen = true

	var rootPos [8]byte
	endian.GetLittleEndianEngine().PutUint64(rootPos[:], section.Position(root))

	if _, err := w.out.WriteAt([]byte{section.FrozenFlag}, section.FrozenOffset); err != nil {
		return errors.Join(err, w.out.Close())
	}
	if _, err := w.out.WriteAt(rootPos[:], section.RootPosOffset); err != nil {
		return errors.Join(err, w.out.Close())
	}

	size := w.out.Pos()
	if err := w.out.Close(); err != nil {
		return err
	}

	w.logger.Debug("archive frozen",
		"size", humanize.IBytes(size),
		"blocks", w.blocks,
		"data", humanize.IBytes(w.dataBytes),
		"unique_samples", w.dedup.Len(),
		"dedup_hits", w.dedup.Hits())

	return nil
}

// Abort closes the stream without freezing. The archive stays unreadable
// as a finished file.
func (w *Writer) Abort() error {
	if w.frozen {
		return nil
	}
	w.frozen = true

	return w.out.Close()
}

// DedupEnabled reports whether keyed data is deduplicated.
func (w *Writer) DedupEnabled() bool {
	return w.dedup.Enabled()
}

// SetDedup toggles deduplication for subsequent writes.
func (w *Writer) SetDedup(enabled bool) {
	w.dedup.SetEnabled(enabled)
}

// DedupCount returns the number of distinct keyed payloads written.
func (w *Writer) DedupCount() int {
	return w.dedup.Len()
}

// DedupHits returns how many keyed writes were satisfied by an earlier block.
func (w *Writer) DedupHits() int {
	return w.dedup.Hits()
}

// CompressionStats returns the payload compression totals so far.
func (w *Writer) CompressionStats() compress.CompressionStats {
	return w.stats
}

func (w *Writer) write(parts ...[]byte) error {
	for _, p := range parts {
		if _, err := w.out.Write(p); err != nil {
			return err
		}
	}
	w.blocks++

	return nil
}
