package abc

import (
	"github.com/arloliu/alembic/format"
	"github.com/arloliu/alembic/metadata"
)

// ObjectHeader describes an object without materializing it.
type ObjectHeader struct {
	Name     string
	FullName string
	MetaData metadata.MetaData
}

// PropertyHeader describes a property.
//
// DataType and the sampling fields are meaningful for scalar and array
// properties only.
type PropertyHeader struct {
	Name     string
	Type     format.PropertyType
	DataType format.DataType
	MetaData metadata.MetaData

	TimeSamplingIndex uint32
	NumSamples        uint32
	// FirstChanged and LastChanged bound the run of stored samples. Both are
	// zero when every sample equals the first one.
	FirstChanged uint32
	LastChanged  uint32

	// ScalarLike marks an array property whose every sample held exactly one element.
	ScalarLike bool
	// Homogenous marks an array property whose samples all have the same element count.
	Homogenous bool
}

// IsScalar reports whether the header describes a scalar property.
func (h PropertyHeader) IsScalar() bool {
	return h.Type == format.PropertyScalar
}

// IsArray reports whether the header describes an array property.
func (h PropertyHeader) IsArray() bool {
	return h.Type == format.PropertyArray
}

// IsCompound reports whether the header describes a compound property.
func (h PropertyHeader) IsCompound() bool {
	return h.Type == format.PropertyCompound
}

// IsConstant reports whether all samples of the property are identical.
func (h PropertyHeader) IsConstant() bool {
	return h.FirstChanged == 0 && h.LastChanged == 0
}

// StoredIndex maps a sample index to the position of its data in the
// property's sample list.
//
// Samples before the first change share the first stored sample, samples
// after the last change share the last one.
func (h PropertyHeader) StoredIndex(index uint32) uint32 {
	switch {
	case h.IsConstant() || index < h.FirstChanged:
		return 0
	case index >= h.LastChanged:
		return h.LastChanged - h.FirstChanged + 1
	default:
		return index - h.FirstChanged + 1
	}
}
