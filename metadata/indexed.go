package metadata

import (
	"fmt"

	"github.com/arloliu/alembic/errs"
	"github.com/arloliu/alembic/section"
)

// IndexedTable maps frequently used metadata strings to one-byte indexes.
//
// Index 0 is always the empty string. Strings that do not fit, either because
// the table is full or because they serialize to more than 255 bytes, get
// section.InlineMetadata and must be stored inline by the caller.
type IndexedTable struct {
	entries []string
	lookup  map[string]uint8
}

// NewIndexedTable creates a table holding only the empty entry.
func NewIndexedTable() *IndexedTable {
	return &IndexedTable{
		entries: []string{""},
		lookup:  make(map[string]uint8),
	}
}

// Index returns the index of md, adding it when there is room.
func (t *IndexedTable) Index(md MetaData) uint8 {
	return t.IndexString(md.Serialize())
}

// IndexString is Index for an already serialized string.
func (t *IndexedTable) IndexString(serialized string) uint8 {
	if serialized == "" {
		return 0
	}
	if idx, ok := t.lookup[serialized]; ok {
		return idx
	}
	if len(t.entries) >= section.MaxIndexedMetadata || len(serialized) > section.MaxIndexedMetadataLen {
		return section.InlineMetadata
	}

	idx := uint8(len(t.entries))
	t.entries = append(t.entries, serialized)
	t.lookup[serialized] = idx

	return idx
}

// Get returns the serialized string at idx.
func (t *IndexedTable) Get(idx uint8) (string, bool) {
	if int(idx) >= len(t.entries) {
		return "", false
	}

	return t.entries[idx], true
}

// Len returns the number of entries including the empty entry.
func (t *IndexedTable) Len() int {
	return len(t.entries)
}

// Serialize encodes every entry after index 0 as a length byte followed by
// the string. A table with only the empty entry encodes to nil.
func (t *IndexedTable) Serialize() []byte {
	if len(t.entries) <= 1 {
		return nil
	}

	size := 0
	for _, s := range t.entries[1:] {
		size += 1 + len(s)
	}

	b := make([]byte, 0, size)
	for _, s := range t.entries[1:] {
		b = append(b, byte(len(s)))
		b = append(b, s...)
	}

	return b
}

// ParseIndexed decodes a serialized table.
func ParseIndexed(data []byte) (*IndexedTable, error) {
	if len(data) > section.MaxIndexedMetadataBlock {
		return nil, fmt.Errorf("%w: indexed metadata block of %d bytes", errs.ErrInvalidMetadata, len(data))
	}

	t := NewIndexedTable()
	for off := 0; off < len(data); {
		n := int(data[off])
		off++
		if off+n > len(data) {
			return nil, fmt.Errorf("%w: indexed metadata entry %d truncated", errs.ErrInvalidMetadata, len(t.entries))
		}
		if len(t.entries) >= section.MaxIndexedMetadata {
			return nil, fmt.Errorf("%w: more than %d indexed metadata entries", errs.ErrInvalidMetadata, section.MaxIndexedMetadata-1)
		}

		s := string(data[off : off+n])
		off += n
		if _, dup := t.lookup[s]; !dup && s != "" {
			t.lookup[s] = uint8(len(t.entries))
		}
		t.entries = append(t.entries, s)
	}

	return t, nil
}

// Resolve returns the metadata for a header index. Inline metadata is
// returned as given; indexes beyond the table fail with errs.ErrInvalidMetadata.
func (t *IndexedTable) Resolve(idx uint8, inline string) (MetaData, error) {
	if idx == section.InlineMetadata {
		return Parse(inline), nil
	}

	s, ok := t.Get(idx)
	if !ok {
		return MetaData{}, fmt.Errorf("%w: metadata index %d out of range (%d entries)", errs.ErrInvalidMetadata, idx, len(t.entries))
	}

	return Parse(s), nil
}
