// Package metadata implements the ordered key/value metadata attached to
// archives, objects and properties, and the archive-wide indexed metadata
// table that lets headers refer to common metadata strings by a one-byte index.
package metadata

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/arloliu/alembic/errs"
)

// Well-known keys.
const (
	SchemaKey         = "schema"
	SchemaBaseTypeKey = "schemaBaseType"
	InterpretationKey = "interpretation"
)

type entry struct {
	key   string
	value string
}

// MetaData is an ordered set of string pairs. Keys are unique; setting an
// existing key replaces its value in place.
//
// The zero value is an empty MetaData ready to use.
type MetaData struct {
	entries []entry
}

// New creates metadata from alternating key, value arguments.
// A trailing key without a value is ignored.
func New(kv ...string) MetaData {
	var md MetaData
	for i := 0; i+1 < len(kv); i += 2 {
		md.Set(kv[i], kv[i+1])
	}

	return md
}

// Set stores value under key. Copies of md made before the call keep their
// pairs.
func (md *MetaData) Set(key, value string) {
	for i := range md.entries {
		if md.entries[i].key == key {
			md.entries = slices.Clone(md.entries)
			md.entries[i].value = value
			return
		}
	}
	md.entries = append(slices.Clip(md.entries), entry{key: key, value: value})
}

// Get returns the value stored under key.
func (md MetaData) Get(key string) (string, bool) {
	for _, e := range md.entries {
		if e.key == key {
			return e.value, true
		}
	}

	return "", false
}

// Value returns the value stored under key, or "" when absent.
func (md MetaData) Value(key string) string {
	v, _ := md.Get(key)
	return v
}

// Contains reports whether key is present.
func (md MetaData) Contains(key string) bool {
	_, ok := md.Get(key)
	return ok
}

// Remove deletes key and returns its previous value. Like Set it leaves
// earlier copies of md untouched.
func (md *MetaData) Remove(key string) (string, bool) {
	for i, e := range md.entries {
		if e.key == key {
			md.entries = slices.Delete(slices.Clone(md.entries), i, i+1)
			return e.value, true
		}
	}

	return "", false
}

// Len returns the number of pairs.
func (md MetaData) Len() int {
	return len(md.entries)
}

// IsEmpty reports whether there are no pairs.
func (md MetaData) IsEmpty() bool {
	return len(md.entries) == 0
}

// All iterates over the pairs in insertion order.
func (md MetaData) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, e := range md.entries {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Clone returns an independent copy.
func (md MetaData) Clone() MetaData {
	if md.entries == nil {
		return MetaData{}
	}

	return MetaData{entries: append([]entry(nil), md.entries...)}
}

// Equal reports whether both hold the same pairs in the same order.
func (md MetaData) Equal(other MetaData) bool {
	if len(md.entries) != len(other.entries) {
		return false
	}
	for i := range md.entries {
		if md.entries[i] != other.entries[i] {
			return false
		}
	}

	return true
}

// Serialize renders the pairs as "k=v;k2=v2". Backslash, ';' and '=' inside
// keys and values are escaped with a backslash.
func (md MetaData) Serialize() string {
	if len(md.entries) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, e := range md.entries {
		if i > 0 {
			sb.WriteByte(';')
		}
		escapeTo(&sb, e.key)
		sb.WriteByte('=')
		escapeTo(&sb, e.value)
	}

	return sb.String()
}

// String implements fmt.Stringer.
func (md MetaData) String() string {
	return md.Serialize()
}

// Parse decodes a serialized metadata string. Segments without an unescaped
// '=' and segments with an empty key are dropped.
func Parse(s string) MetaData {
	md, _ := parse(s, false)
	return md
}

// ParseStrict decodes like Parse but fails with errs.ErrInvalidMetadata on a
// non-empty segment without an unescaped '='.
func ParseStrict(s string) (MetaData, error) {
	return parse(s, true)
}

func parse(s string, strict bool) (MetaData, error) {
	var md MetaData
	if s == "" {
		return md, nil
	}

	for _, part := range splitUnescaped(s, ';') {
		eq := indexUnescaped(part, '=')
		if eq < 0 {
			if strict && part != "" {
				return MetaData{}, fmt.Errorf("%w: segment %q has no '='", errs.ErrInvalidMetadata, part)
			}
			continue
		}

		key := unescape(part[:eq])
		if key == "" {
			continue
		}
		md.Set(key, unescape(part[eq+1:]))
	}

	return md, nil
}

// Schema returns the schema title.
func (md MetaData) Schema() string {
	return md.Value(SchemaKey)
}

// SetSchema sets the schema title.
func (md *MetaData) SetSchema(schema string) {
	md.Set(SchemaKey, schema)
}

// SchemaBaseType returns the schema base type.
func (md MetaData) SchemaBaseType() string {
	return md.Value(SchemaBaseTypeKey)
}

// SetSchemaBaseType sets the schema base type.
func (md *MetaData) SetSchemaBaseType(base string) {
	md.Set(SchemaBaseTypeKey, base)
}

// Interpretation returns the interpretation, e.g. "point" or "normal".
func (md MetaData) Interpretation() string {
	return md.Value(InterpretationKey)
}

// SetInterpretation sets the interpretation.
func (md *MetaData) SetInterpretation(interp string) {
	md.Set(InterpretationKey, interp)
}

// MatchesSchema reports whether the schema title equals title.
func (md MetaData) MatchesSchema(title string) bool {
	s, ok := md.Get(SchemaKey)
	return ok && s == title
}

func escapeTo(sb *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', ';', '=':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
}

func unescape(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			switch next := s[i+1]; next {
			case '\\', ';', '=':
				sb.WriteByte(next)
				i++
				continue
			}
		}
		sb.WriteByte(c)
	}

	return sb.String()
}

// escaped reports whether s[i] is preceded by an odd number of backslashes.
func escaped(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}

	return n%2 == 1
}

func indexUnescaped(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c && !escaped(s, i) {
			return i
		}
	}

	return -1
}

func splitUnescaped(s string, sep byte) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep && !escaped(s, i) {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}

	return append(parts, s[start:])
}
