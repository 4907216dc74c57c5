package section

import "github.com/arloliu/alembic/format"

// PropertyInfo is the packed 32-bit word that starts every property header.
//
//	Bits  | Field
//	------|-----------------------------------------------------------
//	0-1   | property type (0 compound, 1 scalar, 2 array, 3 scalar-like array)
//	2-3   | size hint of the hinted integers that follow
//	4-7   | POD code
//	8     | time sampling index present
//	9     | first/last changed indices present
//	10    | homogenous samples
//	11    | all samples identical (first = last = 0)
//	12-19 | extent
//	20-27 | metadata index (0xFF: inline)
type PropertyInfo uint32

// PropertyType returns the decoded kind; scalar-like arrays report PropertyArray.
func (p PropertyInfo) PropertyType() format.PropertyType {
	switch uint32(p) & PropertyTypeMask {
	case 0:
		return format.PropertyCompound
	case 1:
		return format.PropertyScalar
	default:
		return format.PropertyArray
	}
}

// IsScalarLike reports an array property whose every sample holds one element.
func (p PropertyInfo) IsScalarLike() bool {
	return uint32(p)&PropertyTypeMask == scalarLikeArrayValue
}

// SetPropertyType stores the kind bits.
func (p *PropertyInfo) SetPropertyType(pt format.PropertyType, scalarLike bool) {
	v := uint32(pt) & PropertyTypeMask
	if pt == format.PropertyArray && scalarLike {
		v = scalarLikeArrayValue
	}
	*p = PropertyInfo(uint32(*p)&^PropertyTypeMask | v)
}

// SizeHint returns the hint used for the integers following the info word.
func (p PropertyInfo) SizeHint() uint8 {
	return uint8((uint32(p) & SizeHintMask) >> SizeHintShift)
}

// SetSizeHint stores the size hint bits.
func (p *PropertyInfo) SetSizeHint(hint uint8) {
	*p = PropertyInfo(uint32(*p)&^SizeHintMask | (uint32(hint)<<SizeHintShift)&SizeHintMask)
}

// Pod returns the POD code bits.
func (p PropertyInfo) Pod() format.PodType {
	return format.PodType((uint32(p) & PodMask) >> PodShift)
}

// SetPod stores the POD code bits.
func (p *PropertyInfo) SetPod(pod format.PodType) {
	*p = PropertyInfo(uint32(*p)&^PodMask | (uint32(pod)<<PodShift)&PodMask)
}

// Extent returns the extent bits.
func (p PropertyInfo) Extent() uint8 {
	return uint8((uint32(p) & ExtentMask) >> ExtentShift)
}

// SetExtent stores the extent bits.
func (p *PropertyInfo) SetExtent(extent uint8) {
	*p = PropertyInfo(uint32(*p)&^ExtentMask | uint32(extent)<<ExtentShift)
}

// MetadataIndex returns the indexed metadata slot, or InlineMetadata.
func (p PropertyInfo) MetadataIndex() uint8 {
	return uint8((uint32(p) & MetadataIndexMask) >> MetadataIndexShift)
}

// SetMetadataIndex stores the metadata index bits.
func (p *PropertyInfo) SetMetadataIndex(idx uint8) {
	*p = PropertyInfo(uint32(*p)&^MetadataIndexMask | uint32(idx)<<MetadataIndexShift)
}

// Has reports whether all bits of flag are set.
func (p PropertyInfo) Has(flag uint32) bool {
	return uint32(p)&flag == flag
}

// Set sets or clears the bits of flag.
func (p *PropertyInfo) Set(flag uint32, on bool) {
	if on {
		*p = PropertyInfo(uint32(*p) | flag)
	} else {
		*p = PropertyInfo(uint32(*p) &^ flag)
	}
}
