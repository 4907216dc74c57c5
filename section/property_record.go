package section

import (
	"fmt"

	"github.com/arloliu/alembic/endian"
	"github.com/arloliu/alembic/errs"
	"github.com/arloliu/alembic/format"
)

// PropertyRecord is the on-disk description of one property inside a
// compound's property-headers block.
type PropertyRecord struct {
	Name       string
	Type       format.PropertyType
	ScalarLike bool
	DataType   format.DataType

	TimeSamplingIndex uint32
	NumSamples        uint32
	// FirstChanged and LastChanged delimit the run of stored samples; both are
	// zero when every sample equals sample 0.
	FirstChanged uint32
	LastChanged  uint32
	Homogenous   bool

	// MetadataIndex selects an indexed metadata slot, or InlineMetadata.
	MetadataIndex uint8
	// Metadata is the serialized metadata string. The writer always fills it
	// since its length takes part in the size hint; it is stored only when
	// MetadataIndex is InlineMetadata. The parser fills it only for inline metadata.
	Metadata string
}

// Info builds the packed info word for the record.
func (r *PropertyRecord) Info() PropertyInfo {
	var info PropertyInfo

	maxSize := max(uint32(len(r.Metadata)), uint32(len(r.Name)))
	if r.Type != format.PropertyCompound {
		maxSize = max(maxSize, r.NumSamples, r.TimeSamplingIndex)
	}
	info.SetSizeHint(SizeHintFor(maxSize))
	info.SetPropertyType(r.Type, r.ScalarLike)

	if r.Type != format.PropertyCompound {
		info.SetPod(r.DataType.Pod)
		info.SetExtent(r.DataType.Extent)
		info.Set(HomogenousFlag, r.Homogenous)
		info.Set(HasTimeSamplingFlag, r.TimeSamplingIndex != 0)

		switch {
		case r.FirstChanged == 0 && r.LastChanged == 0:
			info.Set(AllSamplesSameFlag, true)
		case r.NumSamples == 0 || r.FirstChanged != 1 || r.LastChanged != r.NumSamples-1:
			info.Set(ChangedIndicesFlag, true)
		}
	}
	info.SetMetadataIndex(r.MetadataIndex)

	return info
}

// AppendPropertyRecord appends the encoded record to b.
func AppendPropertyRecord(b []byte, r *PropertyRecord) []byte {
	info := r.Info()
	hint := info.SizeHint()

	b = endian.GetLittleEndianEngine().AppendUint32(b, uint32(info))

	if r.Type != format.PropertyCompound {
		b = AppendWithHint(b, r.NumSamples, hint)
		if info.Has(ChangedIndicesFlag) {
			b = AppendWithHint(b, r.FirstChanged, hint)
			b = AppendWithHint(b, r.LastChanged, hint)
		}
		if info.Has(HasTimeSamplingFlag) {
			b = AppendWithHint(b, r.TimeSamplingIndex, hint)
		}
	}

	b = AppendWithHint(b, uint32(len(r.Name)), hint)
	b = append(b, r.Name...)

	if r.MetadataIndex == InlineMetadata {
		b = AppendWithHint(b, uint32(len(r.Metadata)), hint)
		b = append(b, r.Metadata...)
	}

	return b
}

// ParsePropertyRecords decodes every record of a property-headers block.
//
// Returns:
//   - []PropertyRecord: Records in compound order
//   - error: ErrUnexpectedEOF for truncated input, ErrInvalidDataType for bad POD codes
func ParsePropertyRecords(data []byte) ([]PropertyRecord, error) {
	records := make([]PropertyRecord, 0, 8)
	engine := endian.GetLittleEndianEngine()

	pos := 0
	next := func(hint uint8) (uint32, error) {
		v, n, err := ReadWithHint(data[pos:], hint)
		if err != nil {
			return 0, err
		}
		pos += n

		return v, nil
	}
	str := func(n uint32) (string, error) {
		if uint64(pos)+uint64(n) > uint64(len(data)) {
			return "", fmt.Errorf("%w: property header string of %d bytes at %d", errs.ErrUnexpectedEOF, n, pos)
		}
		s := string(data[pos : pos+int(n)])
		pos += int(n)

		return s, nil
	}

	for pos < len(data) {
		if len(data)-pos < 4 {
			return nil, fmt.Errorf("%w: property info word at %d", errs.ErrUnexpectedEOF, pos)
		}
		info := PropertyInfo(engine.Uint32(data[pos:]))
		pos += 4
		hint := info.SizeHint()

		r := PropertyRecord{
			Type:          info.PropertyType(),
			ScalarLike:    info.IsScalarLike(),
			MetadataIndex: info.MetadataIndex(),
		}

		if r.Type != format.PropertyCompound {
			r.DataType = format.DataType{Pod: info.Pod(), Extent: info.Extent()}
			if !r.DataType.IsValid() {
				return nil, fmt.Errorf("%w: %s in property header", errs.ErrInvalidDataType, r.DataType)
			}
			r.Homogenous = info.Has(HomogenousFlag)

			var err error
			if r.NumSamples, err = next(hint); err != nil {
				return nil, err
			}

			switch {
			case info.Has(ChangedIndicesFlag):
				if r.FirstChanged, err = next(hint); err != nil {
					return nil, err
				}
				if r.LastChanged, err = next(hint); err != nil {
					return nil, err
				}
			case info.Has(AllSamplesSameFlag) || r.NumSamples == 0:
				r.FirstChanged, r.LastChanged = 0, 0
			default:
				r.FirstChanged, r.LastChanged = 1, r.NumSamples-1
			}

			if info.Has(HasTimeSamplingFlag) {
				if r.TimeSamplingIndex, err = next(hint); err != nil {
					return nil, err
				}
			}
		}

		nameLen, err := next(hint)
		if err != nil {
			return nil, err
		}
		if r.Name, err = str(nameLen); err != nil {
			return nil, err
		}

		if r.MetadataIndex == InlineMetadata {
			mdLen, err := next(hint)
			if err != nil {
				return nil, err
			}
			if r.Metadata, err = str(mdLen); err != nil {
				return nil, err
			}
		}

		records = append(records, r)
	}

	return records, nil
}
