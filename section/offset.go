package section

// IsData reports whether a child reference points at a data block.
func IsData(ref uint64) bool {
	return ref&DataFlag != 0
}

// IsGroup reports whether a child reference points at a group.
func IsGroup(ref uint64) bool {
	return ref&DataFlag == 0
}

// Position strips the kind bit from a child reference.
func Position(ref uint64) uint64 {
	return ref & OffsetMask
}

// IsEmpty reports whether a reference is absent: position zero of either kind.
func IsEmpty(ref uint64) bool {
	return Position(ref) == 0
}

// DataRef makes a data child reference for pos. A zero position yields EmptyData.
func DataRef(pos uint64) uint64 {
	return pos | DataFlag
}

// GroupRef makes a group child reference for pos.
func GroupRef(pos uint64) uint64 {
	return pos & OffsetMask
}
