package ogawa

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/alembic/endian"
	"github.com/arloliu/alembic/errs"
	"github.com/arloliu/alembic/internal/hash"
	"github.com/arloliu/alembic/section"
	"github.com/arloliu/alembic/stream"
)

// Reader decodes blocks from a Source. It holds no mutable state after
// construction and is safe for concurrent use.
type Reader struct {
	src    stream.Source
	size   uint64
	header section.FileHeader
}

// NewReader validates the file header of src.
func NewReader(src stream.Source) (*Reader, error) {
	size := src.Size()
	if size < section.HeaderSize {
		buf := make([]byte, size)
		if _, err := src.ReadAt(buf, 0); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: %w", err)
		}
		if _, err := section.ParseFileHeader(buf); err != nil {
			return nil, err
		}
	}

	var buf [section.HeaderSize]byte
	if _, err := src.ReadAt(buf[:], 0); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	header, err := section.ParseFileHeader(buf[:])
	if err != nil {
		return nil, err
	}

	return &Reader{src: src, size: uint64(size), header: header}, nil
}

// Header returns the parsed file header.
func (r *Reader) Header() section.FileHeader {
	return r.header
}

// Frozen reports whether the writer finished the archive.
func (r *Reader) Frozen() bool {
	return r.header.Frozen
}

// Root returns the reference of the archive root group.
func (r *Reader) Root() uint64 {
	return section.GroupRef(r.header.RootPos)
}

// Size returns the stream size.
func (r *Reader) Size() uint64 {
	return r.size
}

// ReadGroup returns the child references of the group at pos.
// Position 0 is the empty group.
func (r *Reader) ReadGroup(pos uint64) ([]uint64, error) {
	pos = section.Position(pos)
	if pos == 0 {
		return nil, nil
	}

	count, err := r.readPrefix(pos)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	if count > (r.size-pos-section.SizePrefix)/section.SizePrefix {
		return nil, fmt.Errorf("%w: group at %d claims %d children in a %d byte stream", errs.ErrInvalidStructure, pos, count, r.size)
	}

	raw := make([]byte, count*section.SizePrefix)
	if err := r.readFull(raw, pos+section.SizePrefix); err != nil {
		return nil, err
	}

	engine := endian.GetLittleEndianEngine()
	children := make([]uint64, count)
	for i := range children {
		children[i] = engine.Uint64(raw[i*section.SizePrefix:])
	}

	return children, nil
}

// DataSize returns the byte length of the data block at pos, including the
// digest of keyed blocks. Position 0 has size 0.
func (r *Reader) DataSize(pos uint64) (uint64, error) {
	pos = section.Position(pos)
	if pos == 0 {
		return 0, nil
	}

	n, err := r.readPrefix(pos)
	if err != nil {
		return 0, err
	}
	if n > r.size-pos-section.SizePrefix {
		return 0, fmt.Errorf("%w: data at %d claims %d bytes in a %d byte stream", errs.ErrUnexpectedEOF, pos, n, r.size)
	}

	return n, nil
}

// ReadData returns the bytes of the data block at pos.
// Position 0 is the empty block.
func (r *Reader) ReadData(pos uint64) ([]byte, error) {
	pos = section.Position(pos)
	n, err := r.DataSize(pos)
	if err != nil || n == 0 {
		return nil, err
	}

	data := make([]byte, n)
	if err := r.readFull(data, pos+section.SizePrefix); err != nil {
		return nil, err
	}

	return data, nil
}

// ReadKey returns the digest of the keyed data block at pos.
func (r *Reader) ReadKey(pos uint64) (hash.Digest, error) {
	pos = section.Position(pos)
	n, err := r.DataSize(pos)
	if err != nil {
		return hash.Digest{}, err
	}
	if n < section.KeySize {
		return hash.Digest{}, fmt.Errorf("%w: data at %d is %d bytes, too short for a key", errs.ErrInvalidStructure, pos, n)
	}

	var d hash.Digest
	if err := r.readFull(d[:], pos+section.SizePrefix); err != nil {
		return hash.Digest{}, err
	}

	return d, nil
}

// ReadKeyedPayload returns the bytes of the keyed data block at pos without
// the digest. Position 0 is the empty payload.
func (r *Reader) ReadKeyedPayload(pos uint64) ([]byte, error) {
	pos = section.Position(pos)
	n, err := r.DataSize(pos)
	if err != nil || n == 0 {
		return nil, err
	}
	if n < section.KeySize {
		return nil, fmt.Errorf("%w: data at %d is %d bytes, too short for a key", errs.ErrInvalidStructure, pos, n)
	}
	if n == section.KeySize {
		return nil, nil
	}

	payload := make([]byte, n-section.KeySize)
	if err := r.readFull(payload, pos+section.SizePrefix+section.KeySize); err != nil {
		return nil, err
	}

	return payload, nil
}

func (r *Reader) readPrefix(pos uint64) (uint64, error) {
	if pos < section.MinDataPos {
		return 0, fmt.Errorf("%w: block position %d inside the file header", errs.ErrInvalidStructure, pos)
	}
	if pos > r.size || r.size-pos < section.SizePrefix {
		return 0, fmt.Errorf("%w: block prefix at %d outside %d byte stream", errs.ErrUnexpectedEOF, pos, r.size)
	}

	var b [section.SizePrefix]byte
	if err := r.readFull(b[:], pos); err != nil {
		return 0, err
	}

	return endian.GetLittleEndianEngine().Uint64(b[:]), nil
}

func (r *Reader) readFull(p []byte, off uint64) error {
	n, err := r.src.ReadAt(p, int64(off))
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: read %d of %d bytes at %d", errs.ErrUnexpectedEOF, n, len(p), off)
	}

	return fmt.Errorf("read at %d: %w", off, err)
}
