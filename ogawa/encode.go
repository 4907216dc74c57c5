package ogawa

import (
	"bytes"

	"github.com/arloliu/alembic/format"
)

var wideTerminator = []byte{0, 0, 0, 0}

// EncodeSample returns the stored form of a raw sample for pod. String
// payloads get a trailing NUL and wide strings four trailing zero bytes
// unless already terminated. Other PODs are returned unchanged without
// copying.
func EncodeSample(raw []byte, pod format.PodType) []byte {
	switch pod {
	case format.PodString:
		if len(raw) > 0 && raw[len(raw)-1] == 0 {
			return raw
		}
		out := make([]byte, len(raw), len(raw)+1)
		copy(out, raw)

		return append(out, 0)
	case format.PodWstring:
		if len(raw) >= 4 && bytes.Equal(raw[len(raw)-4:], wideTerminator) {
			return raw
		}
		out := make([]byte, len(raw), len(raw)+4)
		copy(out, raw)

		return append(out, wideTerminator...)
	default:
		return raw
	}
}
