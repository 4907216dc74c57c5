// Package hash provides the three hashes used by the archive writer and reader.
//
//   - ID: 64-bit xxHash of a name, used to index child and property names.
//   - ContentDigest: 128-bit MurmurHash3 of an encoded sample payload; it keys
//     write-time deduplication and is stored in front of every keyed data block.
//   - Structural: 128-bit BLAKE3-based hash over headers, sample digests and
//     dimensions; it identifies equal properties and objects.
//
// The content digest and the structural hash are deliberately separate
// operations with separate types; one is never fed where the other is expected.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}
