package stream

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/alembic/errs"
	"github.com/arloliu/alembic/internal/pool"
)

// DefaultBufferSize is the append buffer size of a Writer.
const DefaultBufferSize = pool.BlockBufferDefaultSize

// Writer is a buffered append-only stream with in-place patching.
// It is not safe for concurrent use.
type Writer struct {
	sink       io.WriterAt
	buf        *pool.ByteBuffer
	bufStart   int64 // stream offset of buf[0]
	pos        int64 // logical end of stream
	bufferSize int
	closed     bool
}

// NewWriter creates a writer appending to sink from offset 0.
func NewWriter(sink io.WriterAt) *Writer {
	return NewWriterSize(sink, DefaultBufferSize)
}

// NewWriterSize creates a writer with an append buffer of size bytes.
func NewWriterSize(sink io.WriterAt, size int) *Writer {
	if size <= 0 {
		size = DefaultBufferSize
	}

	return &Writer{
		sink:       sink,
		buf:        pool.GetBlockBuffer(),
		bufferSize: size,
	}
}

// Create creates or truncates the file at path and returns a writer on it.
// Closing the writer closes the file.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", errs.ErrWriteFailed, path, err)
	}

	return NewWriter(f), nil
}

// Pos returns the position the next Write starts at.
func (w *Writer) Pos() uint64 {
	return uint64(w.pos)
}

// Write appends p at Pos.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errs.ErrFrozen
	}
	if len(p) == 0 {
		return 0, nil
	}

	if w.buf.Len()+len(p) > w.bufferSize {
		if err := w.Flush(); err != nil {
			return 0, err
		}
	}

	if len(p) >= w.bufferSize {
		n, err := w.sink.WriteAt(p, w.pos)
		w.pos += int64(n)
		w.bufStart = w.pos
		if err != nil {
			return n, fmt.Errorf("%w: %w", errs.ErrWriteFailed, err)
		}

		return n, nil
	}

	_, _ = w.buf.Write(p)
	w.pos += int64(len(p))

	return len(p), nil
}

// WriteAt overwrites already written bytes at off. It cannot extend the stream.
func (w *Writer) WriteAt(p []byte, off int64) (int, error) {
	if w.closed {
		return 0, errs.ErrFrozen
	}
	if off < 0 || off+int64(len(p)) > w.pos {
		return 0, fmt.Errorf("%w: patch [%d, %d) outside stream of %d bytes", errs.ErrWriteFailed, off, off+int64(len(p)), w.pos)
	}

	if off >= w.bufStart {
		copy(w.buf.B[off-w.bufStart:], p)
		return len(p), nil
	}

	// The patch touches flushed bytes; flush the tail so the sink is contiguous.
	if err := w.Flush(); err != nil {
		return 0, err
	}
	n, err := w.sink.WriteAt(p, off)
	if err != nil {
		return n, fmt.Errorf("%w: %w", errs.ErrWriteFailed, err)
	}

	return n, nil
}

// Flush writes buffered bytes to the sink.
func (w *Writer) Flush() error {
	if w.closed {
		return nil
	}
	if w.buf.Len() == 0 {
		w.bufStart = w.pos
		return nil
	}

	if _, err := w.sink.WriteAt(w.buf.Bytes(), w.bufStart); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrWriteFailed, err)
	}
	w.buf.Reset()
	w.bufStart = w.pos

	return nil
}

// Close flushes, syncs and closes the sink when it supports it.
// Closing twice is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	err := w.Flush()
	w.closed = true
	pool.PutBlockBuffer(w.buf)
	w.buf = nil

	if s, ok := w.sink.(interface{ Sync() error }); ok && err == nil {
		if serr := s.Sync(); serr != nil {
			err = fmt.Errorf("%w: sync: %w", errs.ErrWriteFailed, serr)
		}
	}
	if c, ok := w.sink.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}

	return err
}
