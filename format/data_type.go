package format

import "fmt"

// DataType is a POD element type combined with an extent, the number of PODs
// that make up one logical element (3 for a float32 vector, 16 for a 4x4 matrix).
type DataType struct {
	Pod    PodType
	Extent uint8
}

// Common data types.
var (
	DataTypeUnknown = DataType{Pod: PodUnknown, Extent: 0}
	DataTypeBool    = DataType{Pod: PodBool, Extent: 1}
	DataTypeInt32   = DataType{Pod: PodInt32, Extent: 1}
	DataTypeUint32  = DataType{Pod: PodUint32, Extent: 1}
	DataTypeFloat32 = DataType{Pod: PodFloat32, Extent: 1}
	DataTypeFloat64 = DataType{Pod: PodFloat64, Extent: 1}
	DataTypeString  = DataType{Pod: PodString, Extent: 1}
	DataTypeVec2f   = DataType{Pod: PodFloat32, Extent: 2}
	DataTypeVec3f   = DataType{Pod: PodFloat32, Extent: 3}
	DataTypeVec3d   = DataType{Pod: PodFloat64, Extent: 3}
	DataTypeBox3d   = DataType{Pod: PodFloat64, Extent: 6}
	DataTypeMat44d  = DataType{Pod: PodFloat64, Extent: 16}
)

// NewDataType creates a DataType, returning an error for an invalid POD or a zero extent.
func NewDataType(pod PodType, extent uint8) (DataType, error) {
	dt := DataType{Pod: pod, Extent: extent}
	if !dt.IsValid() {
		return DataTypeUnknown, fmt.Errorf("invalid data type %s", dt)
	}

	return dt, nil
}

// IsValid reports whether the POD is known and the extent is non-zero.
func (d DataType) IsValid() bool {
	return d.Pod.IsValid() && d.Extent > 0
}

// NumBytes returns the size of one element, POD size times extent.
func (d DataType) NumBytes() int {
	return d.Pod.NumBytes() * int(d.Extent)
}

func (d DataType) String() string {
	if d.Extent == 1 {
		return d.Pod.String()
	}

	return fmt.Sprintf("%s[%d]", d.Pod, d.Extent)
}
