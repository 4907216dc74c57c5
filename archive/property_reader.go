package archive

import (
	"bytes"
	"fmt"

	"github.com/arloliu/alembic/abc"
	"github.com/arloliu/alembic/endian"
	"github.com/arloliu/alembic/errs"
	"github.com/arloliu/alembic/format"
	"github.com/arloliu/alembic/internal/hash"
	"github.com/arloliu/alembic/section"
	"github.com/arloliu/alembic/timesampling"
)

const compoundType = format.PropertyCompound

// compoundReader is a view over a compound property group.
type compoundReader struct {
	r       *Reader
	header  abc.PropertyHeader
	groups  []uint64
	headers []abc.PropertyHeader
	index   map[string]int
}

var _ abc.CompoundPropertyReader = (*compoundReader)(nil)

func newCompoundReader(r *Reader, header abc.PropertyHeader, ref uint64) (*compoundReader, error) {
	c := &compoundReader{r: r, header: header}

	refs, err := r.blocks.ReadGroup(ref)
	if err != nil {
		return nil, fmt.Errorf("read compound %q: %w", header.Name, err)
	}
	if len(refs) == 0 {
		return c, nil
	}

	last := refs[len(refs)-1]
	if !section.IsData(last) {
		return nil, fmt.Errorf("%w: compound %q has no property headers", errs.ErrInvalidStructure, header.Name)
	}
	raw, err := r.blocks.ReadData(last)
	if err != nil {
		return nil, fmt.Errorf("read property headers of %q: %w", header.Name, err)
	}
	records, err := section.ParsePropertyRecords(raw)
	if err != nil {
		return nil, fmt.Errorf("property headers of %q: %w", header.Name, err)
	}
	if len(records) != len(refs)-1 {
		return nil, fmt.Errorf("%w: compound %q lists %d properties but holds %d groups",
			errs.ErrInvalidStructure, header.Name, len(records), len(refs)-1)
	}

	c.groups = refs[:len(refs)-1]
	c.headers = make([]abc.PropertyHeader, len(records))
	c.index = make(map[string]int, len(records))
	for i := range records {
		rec := &records[i]
		md, err := r.indexed.Resolve(rec.MetadataIndex, rec.Metadata)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", rec.Name, err)
		}
		c.headers[i] = abc.PropertyHeader{
			Name:              rec.Name,
			Type:              rec.Type,
			DataType:          rec.DataType,
			MetaData:          md,
			TimeSamplingIndex: rec.TimeSamplingIndex,
			NumSamples:        rec.NumSamples,
			FirstChanged:      rec.FirstChanged,
			LastChanged:       rec.LastChanged,
			ScalarLike:        rec.ScalarLike,
			Homogenous:        rec.Homogenous,
		}
		c.index[rec.Name] = i
	}

	return c, nil
}

func (c *compoundReader) Header() abc.PropertyHeader { return c.header }

func (c *compoundReader) Name() string { return c.header.Name }

func (c *compoundReader) Type() format.PropertyType { return format.PropertyCompound }

func (c *compoundReader) AsScalar() (abc.ScalarPropertyReader, bool) { return nil, false }

func (c *compoundReader) AsArray() (abc.ArrayPropertyReader, bool) { return nil, false }

func (c *compoundReader) AsCompound() (abc.CompoundPropertyReader, bool) { return c, true }

func (c *compoundReader) NumProperties() int { return len(c.headers) }

func (c *compoundReader) Property(index int) (abc.PropertyReader, error) {
	if index < 0 || index >= len(c.headers) {
		return nil, fmt.Errorf("%w: property %d of %d", errs.ErrChildOutOfBounds, index, len(c.headers))
	}

	h := c.headers[index]
	switch h.Type {
	case format.PropertyCompound:
		sub, err := newCompoundReader(c.r, h, c.groups[index])
		if err != nil {
			return nil, err
		}

		return sub, nil
	case format.PropertyScalar:
		sp, err := newSampledReader(c.r, h, c.groups[index], 1)
		if err != nil {
			return nil, err
		}

		return &scalarReader{sampledReader: sp}, nil
	default:
		sp, err := newSampledReader(c.r, h, c.groups[index], 2)
		if err != nil {
			return nil, err
		}

		return &arrayReader{sampledReader: sp}, nil
	}
}

func (c *compoundReader) PropertyByName(name string) (abc.PropertyReader, error) {
	idx, ok := c.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrPropertyNotFound, name)
	}

	return c.Property(idx)
}

func (c *compoundReader) PropertyHeader(index int) (abc.PropertyHeader, error) {
	if index < 0 || index >= len(c.headers) {
		return abc.PropertyHeader{}, fmt.Errorf("%w: property %d of %d", errs.ErrChildOutOfBounds, index, len(c.headers))
	}

	return c.headers[index], nil
}

func (c *compoundReader) HasProperty(name string) bool {
	_, ok := c.index[name]
	return ok
}

func (c *compoundReader) PropertyNames() []string {
	names := make([]string, len(c.headers))
	for i, h := range c.headers {
		names[i] = h.Name
	}

	return names
}

// sampledReader is the shared view of scalar and array properties. Sample k
// of the stored list lives at child k*stride; arrays keep their dimensions
// at the following child.
type sampledReader struct {
	r        *Reader
	header   abc.PropertyHeader
	children []uint64
	stride   int
}

func newSampledReader(r *Reader, header abc.PropertyHeader, ref uint64, stride int) (*sampledReader, error) {
	children, err := r.blocks.ReadGroup(ref)
	if err != nil {
		return nil, fmt.Errorf("read property %q: %w", header.Name, err)
	}

	if header.NumSamples > 0 {
		stored := int(header.StoredIndex(header.NumSamples-1)) + 1
		if len(children) < stored*stride {
			return nil, fmt.Errorf("%w: property %q stores %d children, needs %d",
				errs.ErrInvalidStructure, header.Name, len(children), stored*stride)
		}
	}

	return &sampledReader{r: r, header: header, children: children, stride: stride}, nil
}

func (s *sampledReader) Header() abc.PropertyHeader { return s.header }

func (s *sampledReader) Name() string { return s.header.Name }

func (s *sampledReader) NumSamples() int { return int(s.header.NumSamples) }

func (s *sampledReader) IsConstant() bool { return s.header.IsConstant() }

func (s *sampledReader) DataType() format.DataType { return s.header.DataType }

func (s *sampledReader) TimeSampling() (timesampling.TimeSampling, error) {
	return s.r.TimeSampling(int(s.header.TimeSamplingIndex))
}

func (s *sampledReader) AsCompound() (abc.CompoundPropertyReader, bool) { return nil, false }

// child returns the reference holding sample index, plus offset.
func (s *sampledReader) child(index, offset int) (uint64, error) {
	if index < 0 || index >= int(s.header.NumSamples) {
		return 0, fmt.Errorf("%w: sample %d of property %q (%d samples)",
			errs.ErrSampleOutOfBounds, index, s.header.Name, s.header.NumSamples)
	}

	stored := int(s.header.StoredIndex(uint32(index)))

	return s.children[stored*s.stride+offset], nil
}

func (s *sampledReader) Sample(index int) ([]byte, error) {
	ref, err := s.child(index, 0)
	if err != nil {
		return nil, err
	}

	return s.r.samplePayload(ref, index)
}

func (s *sampledReader) SampleAt(sel timesampling.Selector) ([]byte, error) {
	ts, err := s.TimeSampling()
	if err != nil {
		return nil, err
	}

	return s.Sample(sel.Resolve(ts, s.NumSamples()))
}

func (s *sampledReader) Key(index int) (abc.SampleKey, error) {
	ref, err := s.child(index, 0)
	if err != nil {
		return abc.SampleKey{}, err
	}
	if section.IsEmpty(ref) {
		return abc.SampleKey(hash.ContentDigest(nil)), nil
	}

	d, err := s.r.blocks.ReadKey(ref)
	if err != nil {
		return abc.SampleKey{}, err
	}

	return abc.SampleKey(d), nil
}

type scalarReader struct {
	*sampledReader
}

var _ abc.ScalarPropertyReader = (*scalarReader)(nil)

func (p *scalarReader) Type() format.PropertyType { return format.PropertyScalar }

func (p *scalarReader) AsScalar() (abc.ScalarPropertyReader, bool) { return p, true }

func (p *scalarReader) AsArray() (abc.ArrayPropertyReader, bool) { return nil, false }

type arrayReader struct {
	*sampledReader
}

var _ abc.ArrayPropertyReader = (*arrayReader)(nil)

func (p *arrayReader) Type() format.PropertyType { return format.PropertyArray }

func (p *arrayReader) AsScalar() (abc.ScalarPropertyReader, bool) { return nil, false }

func (p *arrayReader) AsArray() (abc.ArrayPropertyReader, bool) { return p, true }

// Dimensions returns the stored shape of sample index. Samples stored
// without dimensions are one-dimensional; their length is derived from the
// payload size.
func (p *arrayReader) Dimensions(index int) ([]uint64, error) {
	ref, err := p.child(index, 1)
	if err != nil {
		return nil, err
	}

	if section.IsEmpty(ref) {
		data, err := p.Sample(index)
		if err != nil {
			return nil, err
		}

		return []uint64{p.elementCount(data)}, nil
	}

	raw, err := p.r.blocks.ReadData(ref)
	if err != nil {
		return nil, err
	}
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("%w: dimensions block of %d bytes", errs.ErrInvalidStructure, len(raw))
	}

	engine := endian.GetLittleEndianEngine()
	dims := make([]uint64, len(raw)/8)
	for i := range dims {
		dims[i] = engine.Uint64(raw[i*8:])
	}

	return dims, nil
}

func (p *arrayReader) elementCount(data []byte) uint64 {
	dt := p.header.DataType
	switch dt.Pod {
	case format.PodString:
		return uint64(bytes.Count(data, []byte{0}))
	case format.PodWstring:
		var n uint64
		for i := 0; i+4 <= len(data); i += 4 {
			if data[i]|data[i+1]|data[i+2]|data[i+3] == 0 {
				n++
			}
		}

		return n
	}

	if dt.NumBytes() == 0 {
		return 0
	}

	return uint64(len(data) / dt.NumBytes())
}
