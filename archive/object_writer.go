package archive

import (
	"fmt"

	"github.com/arloliu/alembic/errs"
	"github.com/arloliu/alembic/internal/collision"
	"github.com/arloliu/alembic/metadata"
)

// OObject is an object under construction.
type OObject struct {
	w        *Writer
	parent   *OObject
	name     string
	fullName string
	meta     metadata.MetaData

	children []*OObject
	names    *collision.Tracker
	props    *OCompound
}

func newObject(w *Writer, parent *OObject, name, fullName string, md metadata.MetaData) *OObject {
	o := &OObject{
		w:        w,
		parent:   parent,
		name:     name,
		fullName: fullName,
		meta:     md.Clone(),
		names:    collision.NewTracker(),
	}
	o.props = newCompound(w, "", metadata.MetaData{})

	return o
}

// Name returns the object name.
func (o *OObject) Name() string { return o.name }

// FullName returns the absolute path of the object.
func (o *OObject) FullName() string { return o.fullName }

// MetaData returns a copy of the object metadata.
func (o *OObject) MetaData() metadata.MetaData { return o.meta.Clone() }

// Parent returns the parent object, nil for the top object.
func (o *OObject) Parent() *OObject { return o.parent }

// NumChildren returns the number of child objects.
func (o *OObject) NumChildren() int { return len(o.children) }

// Child returns the child named name.
func (o *OObject) Child(name string) (*OObject, bool) {
	idx, ok := o.names.Lookup(name)
	if !ok {
		return nil, false
	}

	return o.children[idx], true
}

// AddChild appends a child object. Names must be unique among siblings,
// non-empty and free of '/'.
func (o *OObject) AddChild(name string, md metadata.MetaData) (*OObject, error) {
	if o.w.closed {
		return nil, errs.ErrFrozen
	}
	if _, err := o.names.Track(name); err != nil {
		return nil, fmt.Errorf("add child to %s: %w", o.fullName, err)
	}

	fullName := o.fullName + "/" + name
	if o.parent == nil {
		fullName = "/" + name
	}

	child := newObject(o.w, o, name, fullName, md)
	o.children = append(o.children, child)

	return child, nil
}

// Properties returns the compound holding the object's properties.
func (o *OObject) Properties() *OCompound {
	return o.props
}
