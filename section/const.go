package section

// File header layout.
const (
	Magic          = "Ogawa" // Magic identifies an Ogawa archive.
	MagicSize      = 5       // MagicSize is the length of Magic in bytes.
	HeaderSize     = 16      // HeaderSize is the fixed file header size in bytes.
	FrozenOffset   = 5       // FrozenOffset is the byte offset of the frozen flag.
	VersionOffset  = 6       // VersionOffset is the byte offset of the 2-byte version.
	RootPosOffset  = 8       // RootPosOffset is the byte offset of the root group position.
	FrozenFlag     = 0xFF    // FrozenFlag marks a finalized archive.
	NotFrozenFlag  = 0x00    // NotFrozenFlag marks an archive still being written.
	CurrentVersion = 1       // CurrentVersion is the only supported layout version.
)

// Child references inside groups.
const (
	// DataFlag is the high bit of a child reference; set for data blocks, clear for groups.
	DataFlag uint64 = 1 << 63
	// OffsetMask extracts the stream position from a child reference.
	OffsetMask uint64 = ^DataFlag
	// EmptyData is the reference of an absent data block.
	EmptyData uint64 = DataFlag
	// EmptyGroup is the reference of an absent group.
	EmptyGroup uint64 = 0
)

// Data block layout.
const (
	SizePrefix = 8  // SizePrefix is the u64 length (or child count) preceding every block.
	KeySize    = 16 // KeySize is the digest prefix of keyed data blocks.
	// MinDataPos is the smallest position a real block can start at.
	MinDataPos = HeaderSize
)

// Archive level constants.
const (
	// OgawaFileVersion is the value of the first root data child.
	OgawaFileVersion int32 = 0
	// MaxOgawaFileVersion is the newest file version a reader accepts.
	MaxOgawaFileVersion int32 = 1
	// LibraryVersion is written as the second root data child (1.8.10).
	LibraryVersion int32 = 10810
	// MinLibraryVersion is the oldest library version a reader accepts.
	MinLibraryVersion int32 = 9999
	// RootChildren is the minimum number of children of the archive root group.
	RootChildren = 6
	// ObjectHashesSize is the trailer of structural hashes at the end of an
	// object headers block.
	ObjectHashesSize = 32
)

// Root group child slots.
const (
	RootFileVersion = iota
	RootLibraryVersion
	RootObject
	RootArchiveMetadata
	RootTimeSamplings
	RootIndexedMetadata
)

// Indexed metadata limits.
const (
	// InlineMetadata is the metadata index meaning "stored inline".
	InlineMetadata uint8 = 0xFF
	// MaxIndexedMetadata is the number of table slots including the empty slot 0.
	MaxIndexedMetadata = 255
	// MaxIndexedMetadataLen is the longest serialized string stored by index.
	MaxIndexedMetadataLen = 255
	// MaxIndexedMetadataBlock bounds the indexed metadata block on read.
	MaxIndexedMetadataBlock = 64 * 1024
)

// Property info word bit layout.
const (
	PropertyTypeMask     uint32 = 0x0000_0003 // bits 0-1: 0 compound, 1 scalar, 2 array, 3 scalar-like array
	SizeHintMask         uint32 = 0x0000_000C // bits 2-3: width of hinted integers
	SizeHintShift               = 2
	PodMask              uint32 = 0x0000_00F0 // bits 4-7
	PodShift                    = 4
	HasTimeSamplingFlag  uint32 = 0x0000_0100 // bit 8: time sampling index follows
	ChangedIndicesFlag   uint32 = 0x0000_0200 // bit 9: first/last changed indices follow
	HomogenousFlag       uint32 = 0x0000_0400 // bit 10
	AllSamplesSameFlag   uint32 = 0x0000_0800 // bit 11: first = last = 0
	ExtentMask           uint32 = 0x000F_F000 // bits 12-19
	ExtentShift                 = 12
	MetadataIndexMask    uint32 = 0x0FF0_0000 // bits 20-27
	MetadataIndexShift          = 20
	scalarLikeArrayValue uint32 = 0x3
)

// Size hints for hinted integers.
const (
	SizeHintUint8  uint8 = 0
	SizeHintUint16 uint8 = 1
	SizeHintUint32 uint8 = 2
)
