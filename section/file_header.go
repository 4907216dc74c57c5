package section

import (
	"fmt"

	"github.com/arloliu/alembic/endian"
	"github.com/arloliu/alembic/errs"
)

// FileHeader represents the fixed 16-byte header at the start of every archive.
//
//	Bytes | Field    | Description
//	------|----------|------------------------------------------
//	0-4   | Magic    | "Ogawa"
//	5     | Frozen   | 0x00 while writing, 0xFF once finalized
//	6-7   | Version  | layout version, big-endian (0x00 0x01)
//	8-15  | RootPos  | position of the archive root group, u64 LE
type FileHeader struct {
	// RootPos is the stream position of the archive root group. It is zero
	// until the writer freezes the archive.
	RootPos uint64
	// Version is the layout version, always CurrentVersion for written files.
	Version uint16
	// Frozen reports whether the writer finished the archive.
	Frozen bool
}

// NewFileHeader creates the header a writer emits before any block: not frozen,
// current version, root position still unknown.
func NewFileHeader() FileHeader {
	return FileHeader{Version: CurrentVersion}
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be exactly 16 bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize, ErrInvalidMagic or ErrUnsupportedVersion
func (h *FileHeader) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidHeaderSize, len(data), HeaderSize)
	}

	if string(data[:MagicSize]) != Magic {
		return errs.ErrInvalidMagic
	}

	h.Frozen = data[FrozenOffset] == FrozenFlag
	h.Version = endian.GetBigEndianEngine().Uint16(data[VersionOffset:RootPosOffset])
	h.RootPos = endian.GetLittleEndianEngine().Uint64(data[RootPosOffset:HeaderSize])

	if h.Version != CurrentVersion {
		return fmt.Errorf("%w: %d", errs.ErrUnsupportedVersion, h.Version)
	}

	return nil
}

// Bytes serializes the header into a new 16-byte slice.
func (h FileHeader) Bytes() []byte {
	b := make([]byte, 0, HeaderSize)
	b = append(b, Magic...)
	if h.Frozen {
		b = append(b, FrozenFlag)
	} else {
		b = append(b, NotFrozenFlag)
	}
	b = endian.GetBigEndianEngine().AppendUint16(b, h.Version)
	b = endian.GetLittleEndianEngine().AppendUint64(b, h.RootPos)

	return b
}

// ParseFileHeader parses a FileHeader from the start of data.
//
// Parameters:
//   - data: Byte slice containing the header (must be at least 16 bytes)
//
// Returns:
//   - FileHeader: Parsed header
//   - error: ErrInvalidHeaderSize, ErrInvalidMagic or ErrUnsupportedVersion
func ParseFileHeader(data []byte) (FileHeader, error) {
	if len(data) < HeaderSize {
		if len(data) >= MagicSize && string(data[:MagicSize]) != Magic {
			return FileHeader{}, errs.ErrInvalidMagic
		}

		return FileHeader{}, fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidHeaderSize, len(data), HeaderSize)
	}

	h := FileHeader{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return FileHeader{}, err
	}

	return h, nil
}
