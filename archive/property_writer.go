package archive

import (
	"bytes"
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/alembic/abc"
	"github.com/arloliu/alembic/errs"
	"github.com/arloliu/alembic/format"
	"github.com/arloliu/alembic/internal/collision"
	"github.com/arloliu/alembic/internal/hash"
	"github.com/arloliu/alembic/internal/options"
	"github.com/arloliu/alembic/metadata"
	"github.com/arloliu/alembic/ogawa"
)

// defaultWriteOrder keeps compound order when writing sample data.
const defaultWriteOrder = math.MaxUint32

type propertyConfig struct {
	meta       metadata.MetaData
	tsIndex    uint32
	writeOrder uint32
}

// PropertyOption configures a property when it is added.
type PropertyOption = options.Option[*propertyConfig]

// WithMetaData sets the property metadata.
func WithMetaData(md metadata.MetaData) PropertyOption {
	return options.NoError(func(c *propertyConfig) {
		c.meta = md.Clone()
	})
}

// WithTimeSampling associates the property with a time sampling index
// returned by Writer.AddTimeSampling.
func WithTimeSampling(index uint32) PropertyOption {
	return options.NoError(func(c *propertyConfig) {
		c.tsIndex = index
	})
}

// WithWriteOrder sets where the property's sample data lands relative to
// its siblings. Lower orders are written first; ties keep compound order.
func WithWriteOrder(order uint32) PropertyOption {
	return options.NoError(func(c *propertyConfig) {
		c.writeOrder = order
	})
}

// OProperty is a property under construction: *OScalar, *OArray or *OCompound.
type OProperty interface {
	Name() string
	Type() format.PropertyType
	MetaData() metadata.MetaData
}

type propertyBase struct {
	w          *Writer
	name       string
	meta       metadata.MetaData
	writeOrder uint32
}

func (p *propertyBase) Name() string { return p.name }

func (p *propertyBase) MetaData() metadata.MetaData { return p.meta.Clone() }

type sample struct {
	data []byte
	dims []uint64
	key  *hash.Digest
}

type sampledProperty struct {
	propertyBase
	dataType format.DataType
	tsIndex  uint32
	samples  []sample
}

// DataType returns the element type of the property.
func (p *sampledProperty) DataType() format.DataType { return p.dataType }

// TimeSamplingIndex returns the index of the property's time sampling.
func (p *sampledProperty) TimeSamplingIndex() uint32 { return p.tsIndex }

// NumSamples returns the number of samples appended so far.
func (p *sampledProperty) NumSamples() int { return len(p.samples) }

func (p *sampledProperty) add(s sample) error {
	if p.w.closed {
		return errs.ErrFrozen
	}
	if uint64(len(p.samples)) >= math.MaxUint32 {
		return fmt.Errorf("%w: property %q is full", errs.ErrSampleOutOfBounds, p.name)
	}
	p.samples = append(p.samples, s)

	return nil
}

// OScalar is a scalar property under construction.
type OScalar struct {
	sampledProperty
}

// Type returns format.PropertyScalar.
func (p *OScalar) Type() format.PropertyType { return format.PropertyScalar }

// AddSample appends one value. Non-string data must hold exactly one
// element of the property's DataType.
func (p *OScalar) AddSample(data []byte) error {
	if err := p.check(data); err != nil {
		return err
	}

	return p.add(sample{data: bytes.Clone(data)})
}

// AddSampleWithKey appends one value whose digest is already known, as
// returned by a reader's Key.
func (p *OScalar) AddSampleWithKey(data []byte, key abc.SampleKey) error {
	if err := p.check(data); err != nil {
		return err
	}
	d := hash.Digest(key)

	return p.add(sample{data: bytes.Clone(data), key: &d})
}

func (p *OScalar) check(data []byte) error {
	if p.dataType.Pod.IsString() {
		return nil
	}
	if len(data) != p.dataType.NumBytes() {
		return fmt.Errorf("%w: scalar %q of %s got %d bytes", errs.ErrTypeMismatch, p.name, p.dataType, len(data))
	}

	return nil
}

// OArray is an array property under construction.
type OArray struct {
	sampledProperty
}

// Type returns format.PropertyArray.
func (p *OArray) Type() format.PropertyType { return format.PropertyArray }

// AddSample appends one array. Nil dims means a one-dimensional array whose
// length is derived from data: the element count for numeric types or the
// number of NUL-terminated strings.
func (p *OArray) AddSample(data []byte, dims []uint64) error {
	dims, err := p.dimensions(data, dims)
	if err != nil {
		return err
	}

	return p.add(sample{data: bytes.Clone(data), dims: dims})
}

// AddSampleWithKey appends one array whose digest is already known.
func (p *OArray) AddSampleWithKey(data []byte, dims []uint64, key abc.SampleKey) error {
	dims, err := p.dimensions(data, dims)
	if err != nil {
		return err
	}
	d := hash.Digest(key)

	return p.add(sample{data: bytes.Clone(data), dims: dims, key: &d})
}

func (p *OArray) dimensions(data []byte, dims []uint64) ([]uint64, error) {
	if p.dataType.Pod.IsString() {
		if dims == nil {
			return []uint64{countStrings(data, p.dataType.Pod)}, nil
		}

		return slices.Clone(dims), nil
	}

	elem := uint64(p.dataType.NumBytes())
	if uint64(len(data))%elem != 0 {
		return nil, fmt.Errorf("%w: array %q of %s got %d bytes", errs.ErrTypeMismatch, p.name, p.dataType, len(data))
	}
	if dims == nil {
		return []uint64{uint64(len(data)) / elem}, nil
	}

	n := uint64(1)
	for _, d := range dims {
		n *= d
	}
	if n*elem != uint64(len(data)) {
		return nil, fmt.Errorf("%w: array %q dimensions %v do not cover %d bytes", errs.ErrTypeMismatch, p.name, dims, len(data))
	}

	return slices.Clone(dims), nil
}

func countStrings(data []byte, pod format.PodType) uint64 {
	if len(data) == 0 {
		return 0
	}

	encoded := ogawa.EncodeSample(data, pod)
	if pod == format.PodString {
		return uint64(bytes.Count(encoded, []byte{0}))
	}

	var n uint64
	for i := 0; i+4 <= len(encoded); i += 4 {
		if encoded[i]|encoded[i+1]|encoded[i+2]|encoded[i+3] == 0 {
			n++
		}
	}

	return n
}

// OCompound is a compound property under construction.
type OCompound struct {
	propertyBase
	props []OProperty
	names *collision.Tracker
}

func newCompound(w *Writer, name string, md metadata.MetaData) *OCompound {
	return &OCompound{
		propertyBase: propertyBase{w: w, name: name, meta: md, writeOrder: defaultWriteOrder},
		names:        collision.NewTracker(),
	}
}

// Type returns format.PropertyCompound.
func (c *OCompound) Type() format.PropertyType { return format.PropertyCompound }

// NumProperties returns the number of sub-properties.
func (c *OCompound) NumProperties() int { return len(c.props) }

// PropertyNames returns the sub-property names in order.
func (c *OCompound) PropertyNames() []string { return c.names.Names() }

// Property returns the sub-property named name.
func (c *OCompound) Property(name string) (OProperty, bool) {
	idx, ok := c.names.Lookup(name)
	if !ok {
		return nil, false
	}

	return c.props[idx], true
}

// AddScalar adds a scalar property of dt.
func (c *OCompound) AddScalar(name string, dt format.DataType, opts ...PropertyOption) (*OScalar, error) {
	sp, err := c.newSampled(name, dt, opts)
	if err != nil {
		return nil, err
	}
	p := &OScalar{sampledProperty: *sp}
	c.props = append(c.props, p)

	return p, nil
}

// AddArray adds an array property of dt.
func (c *OCompound) AddArray(name string, dt format.DataType, opts ...PropertyOption) (*OArray, error) {
	sp, err := c.newSampled(name, dt, opts)
	if err != nil {
		return nil, err
	}
	p := &OArray{sampledProperty: *sp}
	c.props = append(c.props, p)

	return p, nil
}

// AddCompound adds a nested compound property. Time sampling options are ignored.
func (c *OCompound) AddCompound(name string, opts ...PropertyOption) (*OCompound, error) {
	cfg, err := c.register(name, opts)
	if err != nil {
		return nil, err
	}

	p := newCompound(c.w, name, cfg.meta)
	p.writeOrder = cfg.writeOrder
	c.props = append(c.props, p)

	return p, nil
}

func (c *OCompound) newSampled(name string, dt format.DataType, opts []PropertyOption) (*sampledProperty, error) {
	if !dt.IsValid() {
		return nil, fmt.Errorf("%w: property %q of %s", errs.ErrInvalidDataType, name, dt)
	}

	cfg, err := c.register(name, opts)
	if err != nil {
		return nil, err
	}

	return &sampledProperty{
		propertyBase: propertyBase{w: c.w, name: name, meta: cfg.meta, writeOrder: cfg.writeOrder},
		dataType:     dt,
		tsIndex:      cfg.tsIndex,
	}, nil
}

func (c *OCompound) register(name string, opts []PropertyOption) (*propertyConfig, error) {
	if c.w.closed {
		return nil, errs.ErrFrozen
	}

	cfg := &propertyConfig{writeOrder: defaultWriteOrder}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if int(cfg.tsIndex) >= c.w.samplings.Len() {
		return nil, fmt.Errorf("%w: index %d of %d", errs.ErrInvalidTimeSampling, cfg.tsIndex, c.w.samplings.Len())
	}
	if _, err := c.names.Track(name); err != nil {
		return nil, fmt.Errorf("add property %q: %w", name, err)
	}

	return cfg, nil
}
