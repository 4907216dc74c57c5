package stream

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/arloliu/alembic/errs"
)

// Source is a random access byte stream of known size.
// Implementations are safe for concurrent ReadAt calls.
type Source interface {
	io.ReaderAt
	Size() int64
}

// File reads an archive through the file system.
type File struct {
	f    *os.File
	size int64
}

// OpenFile opens path for reading.
func OpenFile(path string) (*File, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return &File{f: f, size: info.Size()}, nil
}

// ReadAt implements io.ReaderAt.
func (s *File) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}

// Size returns the file size at open time.
func (s *File) Size() int64 {
	return s.size
}

// Close closes the file.
func (s *File) Close() error {
	return s.f.Close()
}

// Mapped reads an archive from a read-only memory map.
type Mapped struct {
	m    mmap.MMap
	f    *os.File
	size int64
}

// OpenMapped maps path read-only. Empty files are not mapped.
func OpenMapped(path string) (*Mapped, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return &Mapped{f: f}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	return &Mapped{m: m, f: f, size: info.Size()}, nil
}

// ReadAt implements io.ReaderAt.
func (s *Mapped) ReadAt(p []byte, off int64) (int, error) {
	return readAt(s.m, p, off)
}

// Size returns the mapped length.
func (s *Mapped) Size() int64 {
	return s.size
}

// Close unmaps the file and closes it.
func (s *Mapped) Close() error {
	var err error
	if s.m != nil {
		err = s.m.Unmap()
		s.m = nil
	}

	return errors.Join(err, s.f.Close())
}

// Memory is an in-memory stream. It is a Source and a Writer sink.
// Concurrent ReadAt calls are safe once writing has finished.
type Memory struct {
	b []byte
}

// NewMemory creates a Memory holding a copy-free view of b.
func NewMemory(b []byte) *Memory {
	return &Memory{b: b}
}

// ReadAt implements io.ReaderAt.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	return readAt(m.b, p, off)
}

// WriteAt implements io.WriterAt, growing the buffer as needed.
func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}

	end := off + int64(len(p))
	if end > int64(len(m.b)) {
		if end > int64(cap(m.b)) {
			grown := make([]byte, end, max(end, 2*int64(cap(m.b))))
			copy(grown, m.b)
			m.b = grown
		} else {
			m.b = m.b[:end]
		}
	}

	return copy(m.b[off:], p), nil
}

// Size returns the number of bytes held.
func (m *Memory) Size() int64 {
	return int64(len(m.b))
}

// Bytes returns the underlying bytes.
func (m *Memory) Bytes() []byte {
	return m.b
}

func readAt(b []byte, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off >= int64(len(b)) {
		if len(p) == 0 {
			return 0, nil
		}

		return 0, io.EOF
	}

	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errs.ErrFileNotFound, path)
		}

		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return f, nil
}
