package abc

import (
	"github.com/arloliu/alembic/format"
	"github.com/arloliu/alembic/metadata"
	"github.com/arloliu/alembic/timesampling"
)

// SampleKey is the 128-bit content digest stored in front of every sample.
// Equal keys mean equal sample bytes.
type SampleKey [16]byte

// ArchiveReader is a read-only archive.
//
// Implementations are safe for concurrent use.
type ArchiveReader interface {
	// Name returns the path or name the archive was opened from.
	Name() string
	// Root returns the top object "/".
	Root() (ObjectReader, error)
	// FindObject resolves an absolute path such as "/a/b".
	FindObject(path string) (ObjectReader, error)

	// NumTimeSamplings returns the number of time samplings, including
	// the identity sampling at index 0.
	NumTimeSamplings() int
	// TimeSampling returns the time sampling at index.
	TimeSampling(index int) (timesampling.TimeSampling, error)
	// MaxSamples returns the largest sample count written against the
	// time sampling at index.
	MaxSamples(index int) (uint32, bool)

	// MetaData returns the archive metadata.
	MetaData() metadata.MetaData
	// ArchiveVersion returns the library version that wrote the archive.
	ArchiveVersion() int32
}

// ObjectReader is a node of the object tree.
type ObjectReader interface {
	Header() ObjectHeader
	Name() string
	FullName() string
	MetaData() metadata.MetaData

	// Parent returns the parent object; false for the top object.
	Parent() (ObjectReader, bool)

	NumChildren() int
	Child(index int) (ObjectReader, error)
	ChildByName(name string) (ObjectReader, error)
	ChildHeader(index int) (ObjectHeader, error)
	ChildHeaderByName(name string) (ObjectHeader, error)
	HasChild(name string) bool

	// Properties returns the compound holding the object's properties.
	Properties() (CompoundPropertyReader, error)

	// PropertiesHash and ChildrenHash return the structural hashes stored
	// with the object. Equal hashes mean equal subtrees.
	PropertiesHash() [16]byte
	ChildrenHash() [16]byte
}

// PropertyReader is a property of any kind.
type PropertyReader interface {
	Header() PropertyHeader
	Name() string
	Type() format.PropertyType

	AsScalar() (ScalarPropertyReader, bool)
	AsArray() (ArrayPropertyReader, bool)
	AsCompound() (CompoundPropertyReader, bool)
}

// CompoundPropertyReader holds uniquely named sub-properties in write order.
type CompoundPropertyReader interface {
	PropertyReader

	NumProperties() int
	Property(index int) (PropertyReader, error)
	PropertyByName(name string) (PropertyReader, error)
	PropertyHeader(index int) (PropertyHeader, error)
	HasProperty(name string) bool
	PropertyNames() []string
}

// SampledPropertyReader is the part shared by scalar and array properties.
//
// Sample and Key take an explicit index and fail with errs.ErrSampleOutOfBounds
// past the last sample. SampleAt resolves a selector and clamps instead.
type SampledPropertyReader interface {
	PropertyReader

	NumSamples() int
	IsConstant() bool
	DataType() format.DataType
	TimeSampling() (timesampling.TimeSampling, error)

	// Sample returns the stored bytes of sample index. The slice is shared
	// and must not be modified.
	Sample(index int) ([]byte, error)
	SampleAt(sel timesampling.Selector) ([]byte, error)
	Key(index int) (SampleKey, error)
}

// ScalarPropertyReader holds one DataType value per sample.
type ScalarPropertyReader interface {
	SampledPropertyReader
}

// ArrayPropertyReader holds a variable-length array per sample.
type ArrayPropertyReader interface {
	SampledPropertyReader

	// Dimensions returns the shape of sample index.
	Dimensions(index int) ([]uint64, error)
}
