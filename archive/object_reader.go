package archive

import (
	"fmt"

	"github.com/arloliu/alembic/abc"
	"github.com/arloliu/alembic/endian"
	"github.com/arloliu/alembic/errs"
	"github.com/arloliu/alembic/metadata"
	"github.com/arloliu/alembic/section"
)

// objectReader is a view over one object group. The child headers are
// decoded when the view is created; children and properties are read on
// demand.
type objectReader struct {
	r      *Reader
	parent *objectReader
	header abc.ObjectHeader

	props    uint64
	children []uint64
	headers  []abc.ObjectHeader
	index    map[string]int
	hashes   section.ObjectHashes
}

var _ abc.ObjectReader = (*objectReader)(nil)

func newObjectReader(r *Reader, parent *objectReader, header abc.ObjectHeader, ref uint64) (*objectReader, error) {
	o := &objectReader{r: r, parent: parent, header: header}

	refs, err := r.blocks.ReadGroup(ref)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", header.FullName, err)
	}
	if len(refs) == 0 {
		return o, nil
	}

	o.props = refs[0]
	if !section.IsGroup(o.props) {
		return nil, fmt.Errorf("%w: object %s properties are not a group", errs.ErrInvalidStructure, header.FullName)
	}

	last := refs[len(refs)-1]
	if len(refs) < 2 || !section.IsData(last) {
		return o, nil
	}

	raw, err := r.blocks.ReadData(last)
	if err != nil {
		return nil, fmt.Errorf("read object headers of %s: %w", header.FullName, err)
	}
	records, hashes, err := section.ParseObjectHeaders(raw)
	if err != nil {
		return nil, fmt.Errorf("object headers of %s: %w", header.FullName, err)
	}
	if len(records) != len(refs)-2 {
		return nil, fmt.Errorf("%w: object %s lists %d children but holds %d groups",
			errs.ErrInvalidStructure, header.FullName, len(records), len(refs)-2)
	}

	o.hashes = hashes
	o.children = refs[1 : len(refs)-1]
	o.headers = make([]abc.ObjectHeader, len(records))
	o.index = make(map[string]int, len(records))
	for i, rec := range records {
		md, err := r.indexed.Resolve(rec.MetadataIndex, rec.Metadata)
		if err != nil {
			return nil, fmt.Errorf("object %s child %q: %w", header.FullName, rec.Name, err)
		}
		o.headers[i] = abc.ObjectHeader{
			Name:     rec.Name,
			FullName: childPath(header.FullName, rec.Name),
			MetaData: md,
		}
		o.index[rec.Name] = i
	}

	return o, nil
}

func childPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}

	return parent + "/" + name
}

func (o *objectReader) Header() abc.ObjectHeader { return o.header }

func (o *objectReader) Name() string { return o.header.Name }

func (o *objectReader) FullName() string { return o.header.FullName }

func (o *objectReader) MetaData() metadata.MetaData { return o.header.MetaData }

func (o *objectReader) Parent() (abc.ObjectReader, bool) {
	if o.parent == nil {
		return nil, false
	}

	return o.parent, true
}

func (o *objectReader) NumChildren() int { return len(o.headers) }

func (o *objectReader) Child(index int) (abc.ObjectReader, error) {
	if index < 0 || index >= len(o.headers) {
		return nil, fmt.Errorf("%w: child %d of %s (%d children)", errs.ErrChildOutOfBounds, index, o.header.FullName, len(o.headers))
	}

	child, err := newObjectReader(o.r, o, o.headers[index], o.children[index])
	if err != nil {
		return nil, err
	}

	return child, nil
}

func (o *objectReader) ChildByName(name string) (abc.ObjectReader, error) {
	idx, ok := o.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no child %q", errs.ErrObjectNotFound, o.header.FullName, name)
	}

	return o.Child(idx)
}

func (o *objectReader) ChildHeader(index int) (abc.ObjectHeader, error) {
	if index < 0 || index >= len(o.headers) {
		return abc.ObjectHeader{}, fmt.Errorf("%w: child %d of %s (%d children)", errs.ErrChildOutOfBounds, index, o.header.FullName, len(o.headers))
	}

	return o.headers[index], nil
}

func (o *objectReader) ChildHeaderByName(name string) (abc.ObjectHeader, error) {
	idx, ok := o.index[name]
	if !ok {
		return abc.ObjectHeader{}, fmt.Errorf("%w: %s has no child %q", errs.ErrObjectNotFound, o.header.FullName, name)
	}

	return o.headers[idx], nil
}

func (o *objectReader) HasChild(name string) bool {
	_, ok := o.index[name]
	return ok
}

func (o *objectReader) Properties() (abc.CompoundPropertyReader, error) {
	props, err := newCompoundReader(o.r, abc.PropertyHeader{Type: compoundType}, o.props)
	if err != nil {
		return nil, err
	}

	return props, nil
}

func (o *objectReader) PropertiesHash() [16]byte { return hashBytes(o.hashes.Data) }

func (o *objectReader) ChildrenHash() [16]byte { return hashBytes(o.hashes.Children) }

func hashBytes(h [2]uint64) [16]byte {
	var out [16]byte
	engine := endian.GetLittleEndianEngine()
	engine.PutUint64(out[0:8], h[0])
	engine.PutUint64(out[8:16], h[1])

	return out
}
