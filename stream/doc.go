// Package stream provides the positional byte streams under an archive.
//
// A Writer appends bytes at a monotonically growing position and supports
// patching earlier bytes in place, which is how the file header is finalized
// after the root group is known. Appends are buffered; patches that land in
// the unflushed tail are applied to the buffer.
//
// A Source is read with io.ReaderAt semantics plus a known size. Three
// implementations exist: File reads through the operating system, Mapped
// reads from a read-only memory map, and Memory keeps everything in a byte
// slice and doubles as a Writer sink for in-memory archives.
package stream
