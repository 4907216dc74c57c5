// Package cache holds decoded array samples so repeated reads of the same
// sample skip the stream and the decompressor.
package cache

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"

	"github.com/arloliu/alembic/internal/options"
)

// DefaultMaxSize is the default byte budget of a ReadSampleCache.
const DefaultMaxSize = 64 * 1024 * 1024

// Key identifies a sample by the position of its data block and its index
// within the property. Lookups happen before the payload is read, so the
// key cannot be content based.
type Key struct {
	Pos   uint64
	Index int
}

// CachedSample is an immutable decoded sample shared between readers.
// Callers must not modify the bytes.
type CachedSample struct {
	data []byte
}

// Bytes returns the sample bytes.
func (s *CachedSample) Bytes() []byte {
	return s.data
}

// Len returns the sample size in bytes.
func (s *CachedSample) Len() int {
	return len(s.data)
}

type cacheEntry struct {
	sample *CachedSample
	seq    uint64
}

type config struct {
	maxSize int64
	logger  *slog.Logger
}

// Option configures a ReadSampleCache.
type Option = options.Option[*config]

// WithMaxSize sets the byte budget. Non-positive values keep the default.
func WithMaxSize(bytes int64) Option {
	return options.NoError(func(c *config) {
		if bytes > 0 {
			c.maxSize = bytes
		}
	})
}

// WithLogger sets the logger used for eviction records.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// ReadSampleCache is a byte-bounded map from sample keys to decoded samples.
// It is safe for concurrent use.
//
// When an insert would exceed the budget, the older half of the entries (by
// insertion order) is evicted first. The size counter is updated outside the
// lock, so the budget is approximate under contention.
type ReadSampleCache struct {
	mu      sync.RWMutex
	entries map[Key]cacheEntry
	seq     uint64
	size    atomic.Int64
	maxSize int64
	logger  *slog.Logger
}

// New creates a cache.
func New(opts ...Option) *ReadSampleCache {
	cfg := &config{
		maxSize: DefaultMaxSize,
		logger:  slog.New(slog.DiscardHandler),
	}
	_ = options.Apply(cfg, opts...)

	return &ReadSampleCache{
		entries: make(map[Key]cacheEntry),
		maxSize: cfg.maxSize,
		logger:  cfg.logger,
	}
}

// Get returns the cached sample for key.
func (c *ReadSampleCache) Get(key Key) (*CachedSample, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	return e.sample, true
}

// Insert caches data under key and returns the shared sample. Data larger
// than the budget is not cached. An existing entry is kept and returned.
// The cache takes ownership of data.
func (c *ReadSampleCache) Insert(key Key, data []byte) *CachedSample {
	sample := &CachedSample{data: data}
	size := int64(len(data))
	if size > c.maxSize {
		return sample
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		return e.sample
	}

	if c.size.Load()+size > c.maxSize {
		c.evictHalfLocked()
	}

	c.seq++
	c.entries[key] = cacheEntry{sample: sample, seq: c.seq}
	c.size.Add(size)

	return sample
}

// evictHalfLocked removes the older half of the entries, at least one.
func (c *ReadSampleCache) evictHalfLocked() {
	n := len(c.entries)
	if n == 0 {
		return
	}

	type aged struct {
		key Key
		seq uint64
	}
	order := make([]aged, 0, n)
	for k, e := range c.entries {
		order = append(order, aged{key: k, seq: e.seq})
	}
	sort.Slice(order, func(i, j int) bool { return order[i].seq < order[j].seq })

	evict := max(n/2, 1)
	var freed int64
	for _, a := range order[:evict] {
		freed += int64(c.entries[a.key].sample.Len())
		delete(c.entries, a.key)
	}
	c.size.Add(-freed)

	c.logger.Debug("sample cache eviction",
		"evicted", evict,
		"remaining", len(c.entries),
		"freed", humanize.IBytes(uint64(freed)))
}

// Len returns the number of cached samples.
func (c *ReadSampleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Size returns the approximate number of cached bytes.
func (c *ReadSampleCache) Size() int64 {
	return c.size.Load()
}

// MaxSize returns the byte budget.
func (c *ReadSampleCache) MaxSize() int64 {
	return c.maxSize
}

// Clear removes every entry.
func (c *ReadSampleCache) Clear() {
	c.mu.Lock()
	clear(c.entries)
	c.size.Store(0)
	c.mu.Unlock()
}
