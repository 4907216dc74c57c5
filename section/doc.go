// Package section defines the low-level binary structures and constants of the
// Ogawa archive layout.
//
// The package handles serialization of the fixed file header, child
// references, the packed property info word, size-hinted integers and the
// object/property header records stored in data blocks. It performs no I/O;
// the ogawa package moves these bytes to and from the stream.
//
// # File Structure
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (16 bytes, fixed)                                │
//	│  - "Ogawa" magic (5 bytes)                              │
//	│  - Frozen flag (1 byte): 0x00 writing, 0xFF finalized   │
//	│  - Version (2 bytes, big-endian 0x0001)                 │
//	│  - Root group position (u64 LE)                         │
//	├─────────────────────────────────────────────────────────┤
//	│ Blocks (append-only, referenced by position)            │
//	│  - Data:  u64 length | payload                          │
//	│  - Keyed: u64 length | 16-byte digest | payload         │
//	│  - Group: u64 count  | count × u64 child reference      │
//	└─────────────────────────────────────────────────────────┘
//
// # Child References
//
// A child reference is a u64 whose high bit tells the kind of block:
//
//	bit 63 = 1  data block    (DataRef)
//	bit 63 = 0  group         (GroupRef)
//
// The low 63 bits are the stream position. Position zero is "absent" for both
// kinds; EmptyData (only the high bit set) is the absent data block.
//
// # Archive Root Group
//
//	child 0  data   file version (i32 LE, 0)
//	child 1  data   library version (i32 LE, 10810)
//	child 2  group  root object
//	child 3  data   archive metadata string
//	child 4  data   time sampling table
//	child 5  data   indexed metadata table
//
// # Object Group
//
//	child 0      group  properties (compound)
//	child 1..n   group  child objects
//	child n+1    data   object headers: ObjectRecord × n | ObjectHashes (32 bytes)
//
// # Compound Property Group
//
//	child 0..n-1 group  property groups
//	child n      data   property headers: PropertyRecord × n
//
// Scalar property groups hold one keyed data block per stored sample. Array
// property groups hold (data, dimensions) pairs; the dimensions reference is
// EmptyData for rank-1 non-string samples.
//
// # Thread Safety
//
// All types in this package are value types and safe for concurrent use.
package section
