// Package dedup keeps the per-session map from sample content keys to the
// stream positions where their bytes were first written.
package dedup

import (
	"github.com/arloliu/alembic/format"
	"github.com/arloliu/alembic/internal/hash"
)

// Key identifies an encoded sample payload.
//
// The POD tag separates string payloads from numeric ones with identical
// bytes. Every numeric POD shares a single tag since their bytes are
// interchangeable.
type Key struct {
	Digest hash.Digest
	Size   uint64
	Pod    format.PodType
}

// NewKey builds a key for an encoded payload of the given POD.
func NewKey(digest hash.Digest, size uint64, pod format.PodType) Key {
	return Key{Digest: digest, Size: size, Pod: Tag(pod)}
}

// Tag maps a POD to its dedup tag.
func Tag(pod format.PodType) format.PodType {
	if pod.IsString() {
		return pod
	}

	return format.PodInt8
}

// Map is the content key to position map of one writer session.
// It is not safe for concurrent use.
type Map struct {
	positions map[Key]uint64
	enabled   bool
	hits      int
}

// New creates a map. A disabled map never reports hits and records nothing.
func New(enabled bool) *Map {
	return &Map{
		positions: make(map[Key]uint64),
		enabled:   enabled,
	}
}

// Enabled reports whether lookups can hit.
func (m *Map) Enabled() bool {
	return m.enabled
}

// SetEnabled toggles deduplication. Disabling keeps recorded keys so that
// re-enabling resumes sharing with earlier writes.
func (m *Map) SetEnabled(enabled bool) {
	m.enabled = enabled
}

// Lookup returns the position recorded for key.
func (m *Map) Lookup(key Key) (uint64, bool) {
	if !m.enabled {
		return 0, false
	}

	pos, ok := m.positions[key]
	if ok {
		m.hits++
	}

	return pos, ok
}

// Record stores the position of a freshly written payload.
// The first recorded position for a key wins.
func (m *Map) Record(key Key, pos uint64) {
	if !m.enabled {
		return
	}
	if _, ok := m.positions[key]; ok {
		return
	}
	m.positions[key] = pos
}

// Len returns the number of distinct payloads recorded.
func (m *Map) Len() int {
	return len(m.positions)
}

// Hits returns the number of successful lookups.
func (m *Map) Hits() int {
	return m.hits
}

// Reset forgets every recorded key.
func (m *Map) Reset() {
	clear(m.positions)
	m.hits = 0
}
