// Package ogawa reads and writes the block layer of an archive: a 16-byte
// header followed by append-only Data and Group blocks.
//
//	Data:       u64 length | bytes
//	Keyed data: u64 (16 + length) | 16-byte digest | bytes
//	Group:      u64 count | count x u64 child reference
//
// A child reference carries the block kind in its top bit (set for Data) and
// the stream position in the remaining 63 bits. Position zero means "absent"
// for both kinds and is never read. Positions returned by the Writer stay
// valid for the life of the archive.
//
// The Writer deduplicates keyed data within one session: identical sample
// payloads are stored once and every later write returns the first position.
package ogawa
