package hash

import (
	"encoding/hex"

	"github.com/arloliu/alembic/endian"
	"github.com/spaolacci/murmur3"
)

// DigestSize is the size of a content digest in bytes.
const DigestSize = 16

// Digest is the 128-bit content digest of an encoded sample payload.
type Digest [DigestSize]byte

// ContentDigest computes MurmurHash3 x64_128 with seed 0 over data. The two
// 64-bit halves are stored little-endian, h1 first.
func ContentDigest(data []byte) Digest {
	h1, h2 := murmur3.Sum128(data)

	var d Digest
	engine := endian.GetLittleEndianEngine()
	engine.PutUint64(d[0:8], h1)
	engine.PutUint64(d[8:16], h2)

	return d
}

// DigestFromBytes copies the first 16 bytes of b into a Digest.
// It returns false when b is shorter than DigestSize.
func DigestFromBytes(b []byte) (Digest, bool) {
	var d Digest
	if len(b) < DigestSize {
		return d, false
	}
	copy(d[:], b)

	return d, true
}

// Halves returns the digest as two little-endian 64-bit words.
func (d Digest) Halves() (uint64, uint64) {
	engine := endian.GetLittleEndianEngine()
	return engine.Uint64(d[0:8]), engine.Uint64(d[8:16])
}

// String returns the hex form of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether every byte of d is zero.
func (d Digest) IsZero() bool {
	return d == Digest{}
}
