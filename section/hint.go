package section

import (
	"fmt"

	"github.com/arloliu/alembic/endian"
	"github.com/arloliu/alembic/errs"
)

// SizeHintFor returns the narrowest hint able to store maxValue.
func SizeHintFor(maxValue uint32) uint8 {
	switch {
	case maxValue < 256:
		return SizeHintUint8
	case maxValue < 65536:
		return SizeHintUint16
	default:
		return SizeHintUint32
	}
}

// HintWidth returns the byte width of a size hint.
func HintWidth(hint uint8) int {
	switch hint {
	case SizeHintUint8:
		return 1
	case SizeHintUint16:
		return 2
	default:
		return 4
	}
}

// AppendWithHint appends v using the width selected by hint. Values wider
// than the hint are truncated, so callers must derive the hint with SizeHintFor.
func AppendWithHint(b []byte, v uint32, hint uint8) []byte {
	engine := endian.GetLittleEndianEngine()
	switch hint {
	case SizeHintUint8:
		return append(b, byte(v))
	case SizeHintUint16:
		return engine.AppendUint16(b, uint16(v))
	default:
		return engine.AppendUint32(b, v)
	}
}

// ReadWithHint decodes one hinted integer from the start of b.
//
// Returns:
//   - uint32: Decoded value
//   - int: Number of bytes consumed
//   - error: ErrUnexpectedEOF if b is too short
func ReadWithHint(b []byte, hint uint8) (uint32, int, error) {
	width := HintWidth(hint)
	if len(b) < width {
		return 0, 0, fmt.Errorf("%w: hinted integer needs %d bytes, have %d", errs.ErrUnexpectedEOF, width, len(b))
	}

	engine := endian.GetLittleEndianEngine()
	switch width {
	case 1:
		return uint32(b[0]), 1, nil
	case 2:
		return uint32(engine.Uint16(b)), 2, nil
	default:
		return engine.Uint32(b), 4, nil
	}
}
