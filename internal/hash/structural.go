package hash

import (
	"github.com/arloliu/alembic/endian"
	"github.com/zeebo/blake3"
)

// Sum128 is a 128-bit structural hash value.
type Sum128 [2]uint64

// Structural accumulates bytes for a structural hash. The zero value is not
// usable; create one with NewStructural.
//
// Structural hashes identify equal property headers, sample sequences and
// object subtrees. They are not compatible with any other Ogawa writer.
type Structural struct {
	h *blake3.Hasher
}

// NewStructural creates an empty structural hasher.
func NewStructural() *Structural {
	return &Structural{h: blake3.New()}
}

// Write adds bytes to the hash. Empty input is a no-op.
func (s *Structural) Write(b []byte) {
	if len(b) == 0 {
		return
	}
	_, _ = s.h.Write(b)
}

// WriteString adds the bytes of str to the hash.
func (s *Structural) WriteString(str string) {
	if len(str) == 0 {
		return
	}
	_, _ = s.h.Write([]byte(str))
}

// WriteUint64 adds v as 8 little-endian bytes.
func (s *Structural) WriteUint64(v uint64) {
	var b [8]byte
	endian.GetLittleEndianEngine().PutUint64(b[:], v)
	_, _ = s.h.Write(b[:])
}

// WriteSum adds both words of a previous structural hash.
func (s *Structural) WriteSum(v Sum128) {
	s.WriteUint64(v[0])
	s.WriteUint64(v[1])
}

// Sum returns the first 128 bits of the BLAKE3 output as two little-endian words.
func (s *Structural) Sum() Sum128 {
	out := s.h.Sum(nil)
	engine := endian.GetLittleEndianEngine()

	return Sum128{engine.Uint64(out[0:8]), engine.Uint64(out[8:16])}
}

// Mix chains v into acc. The first value of a chain is taken as is.
func Mix(acc *Sum128, started bool, v Sum128) {
	if !started {
		*acc = v
		return
	}

	s := NewStructural()
	s.WriteSum(*acc)
	s.WriteSum(v)
	*acc = s.Sum()
}

// DigestSum converts a content digest into a structural hash input.
func DigestSum(d Digest) Sum128 {
	h1, h2 := d.Halves()
	return Sum128{h1, h2}
}

// WithDimensions folds array dimensions into a sample hash. Empty dimensions
// leave the value unchanged.
func WithDimensions(v Sum128, dims []uint64) Sum128 {
	if len(dims) == 0 {
		return v
	}

	s := NewStructural()
	for _, d := range dims {
		s.WriteUint64(d)
	}
	s.WriteSum(v)

	return s.Sum()
}
