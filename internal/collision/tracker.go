// Package collision tracks sibling names while an object or compound property
// is being built, rejecting duplicates in constant time.
package collision

import (
	"github.com/arloliu/alembic/errs"
	"github.com/arloliu/alembic/internal/hash"
)

// Tracker records the names added under one parent.
//
// Names are bucketed by their xxhash ID. Distinct names that share an ID are
// kept in the same bucket and compared by value, so hash collisions never
// produce false duplicates.
type Tracker struct {
	buckets map[uint64][]int // ID -> indexes into names
	names   []string         // insertion order
	idOf    func(string) uint64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		buckets: make(map[uint64][]int),
		idOf:    hash.ID,
	}
}

// Track adds name and returns its insertion index.
//
// Returns errs.ErrInvalidName for an empty name or one containing '/', and
// errs.ErrDuplicateName when the name was already tracked.
func (t *Tracker) Track(name string) (int, error) {
	if !ValidName(name) {
		return -1, errs.ErrInvalidName
	}

	id := t.idOf(name)
	for _, idx := range t.buckets[id] {
		if t.names[idx] == name {
			return -1, errs.ErrDuplicateName
		}
	}

	idx := len(t.names)
	t.names = append(t.names, name)
	t.buckets[id] = append(t.buckets[id], idx)

	return idx, nil
}

// Lookup returns the insertion index of name.
func (t *Tracker) Lookup(name string) (int, bool) {
	for _, idx := range t.buckets[t.idOf(name)] {
		if t.names[idx] == name {
			return idx, true
		}
	}

	return -1, false
}

// Names returns the tracked names in insertion order.
func (t *Tracker) Names() []string {
	return t.names
}

// Count returns the number of tracked names.
func (t *Tracker) Count() int {
	return len(t.names)
}

// Reset clears all tracked names, keeping allocated capacity.
func (t *Tracker) Reset() {
	clear(t.buckets)
	t.names = t.names[:0]
}

// ValidName reports whether name can be used for an object or property.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] == '/' {
			return false
		}
	}

	return true
}
