package archive

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/arloliu/alembic/abc"
	"github.com/arloliu/alembic/cache"
	"github.com/arloliu/alembic/compress"
	"github.com/arloliu/alembic/endian"
	"github.com/arloliu/alembic/errs"
	"github.com/arloliu/alembic/format"
	"github.com/arloliu/alembic/internal/hash"
	"github.com/arloliu/alembic/internal/options"
	"github.com/arloliu/alembic/metadata"
	"github.com/arloliu/alembic/ogawa"
	"github.com/arloliu/alembic/section"
	"github.com/arloliu/alembic/stream"
	"github.com/arloliu/alembic/timesampling"
)

// Reader is an open archive. It is safe for concurrent use.
type Reader struct {
	name   string
	src    stream.Source
	closer io.Closer
	blocks *ogawa.Reader
	cache  *cache.ReadSampleCache
	logger *slog.Logger

	fileVersion    int32
	libraryVersion int32
	meta           metadata.MetaData
	indexed        *metadata.IndexedTable
	samplings      *timesampling.Table
	rootObject     uint64

	compression format.CompressionType
	codec       compress.Codec
}

var _ abc.ArchiveReader = (*Reader)(nil)

// Open opens the archive at path, memory-mapped unless WithMmap(false).
func Open(path string, opts ...ReaderOption) (*Reader, error) {
	cfg := newReaderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	var (
		src interface {
			stream.Source
			io.Closer
		}
		err error
	)
	if cfg.mmap {
		src, err = stream.OpenMapped(path)
	} else {
		src, err = stream.OpenFile(path)
	}
	if err != nil {
		return nil, err
	}

	r, err := newReader(path, src, cfg)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	r.closer = src

	return r, nil
}

// NewReader reads an archive from src. Closing the Reader does not close src.
func NewReader(src stream.Source, opts ...ReaderOption) (*Reader, error) {
	cfg := newReaderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return newReader("", src, cfg)
}

func newReader(name string, src stream.Source, cfg *readerConfig) (*Reader, error) {
	blocks, err := ogawa.NewReader(src)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		name:        name,
		src:         src,
		blocks:      blocks,
		cache:       cfg.cache,
		logger:      cfg.logger,
		compression: format.CompressionNone,
	}
	if r.cache == nil {
		r.cache = cache.New(cache.WithMaxSize(cfg.cacheSize), cache.WithLogger(cfg.logger))
	}
	if !blocks.Frozen() {
		r.logger.Warn("archive is not frozen, it may be incomplete", "name", name)
	}

	if err := r.readRoot(); err != nil {
		return nil, err
	}

	r.logger.Debug("archive opened",
		"name", name,
		"size", humanize.IBytes(blocks.Size()),
		"library_version", r.libraryVersion,
		"time_samplings", r.samplings.Len(),
		"metadata_entries", r.indexed.Len(),
		"compression", r.compression)

	return r, nil
}

func (r *Reader) readRoot() error {
	children, err := r.blocks.ReadGroup(r.blocks.Root())
	if err != nil {
		return fmt.Errorf("read root group: %w", err)
	}
	if len(children) < section.RootChildren {
		return fmt.Errorf("%w: root group has %d children, want %d", errs.ErrInvalidStructure, len(children), section.RootChildren)
	}

	if r.fileVersion, err = r.readInt32(children[section.RootFileVersion]); err != nil {
		return fmt.Errorf("read file version: %w", err)
	}
	if r.fileVersion < 0 || r.fileVersion > section.MaxOgawaFileVersion {
		return fmt.Errorf("%w: file version %d", errs.ErrUnsupportedVersion, r.fileVersion)
	}

	if r.libraryVersion, err = r.readInt32(children[section.RootLibraryVersion]); err != nil {
		return fmt.Errorf("read library version: %w", err)
	}
	if r.libraryVersion < section.MinLibraryVersion {
		return fmt.Errorf("%w: library version %d", errs.ErrUnsupportedVersion, r.libraryVersion)
	}

	r.rootObject = children[section.RootObject]
	if !section.IsGroup(r.rootObject) {
		return fmt.Errorf("%w: root object is not a group", errs.ErrInvalidStructure)
	}

	raw, err := r.blocks.ReadData(children[section.RootArchiveMetadata])
	if err != nil {
		return fmt.Errorf("read archive metadata: %w", err)
	}
	r.meta = metadata.Parse(string(raw))

	if raw, err = r.blocks.ReadData(children[section.RootTimeSamplings]); err != nil {
		return fmt.Errorf("read time samplings: %w", err)
	}
	if r.samplings, err = timesampling.ParseTable(raw); err != nil {
		return err
	}

	if raw, err = r.blocks.ReadData(children[section.RootIndexedMetadata]); err != nil {
		return fmt.Errorf("read indexed metadata: %w", err)
	}
	if r.indexed, err = metadata.ParseIndexed(raw); err != nil {
		return err
	}

	if name, ok := r.meta.Get(KeyCompression); ok {
		if r.compression, err = format.ParseCompressionType(name); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrInvalidMetadata, err)
		}
		if r.compression != format.CompressionNone {
			if r.codec, err = compress.GetCodec(r.compression); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *Reader) readInt32(ref uint64) (int32, error) {
	if !section.IsData(ref) {
		return 0, fmt.Errorf("%w: expected a data block", errs.ErrInvalidStructure)
	}

	raw, err := r.blocks.ReadData(ref)
	if err != nil {
		return 0, err
	}
	if len(raw) != 4 {
		return 0, fmt.Errorf("%w: version block of %d bytes", errs.ErrInvalidStructure, len(raw))
	}

	return int32(endian.GetLittleEndianEngine().Uint32(raw)), nil
}

// Close releases the file opened by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	c := r.closer
	r.closer = nil

	return c.Close()
}

// Name returns the path given to Open, or "" for NewReader.
func (r *Reader) Name() string { return r.name }

// Frozen reports whether the writer finished the archive.
func (r *Reader) Frozen() bool { return r.blocks.Frozen() }

// Size returns the archive size in bytes.
func (r *Reader) Size() uint64 { return r.blocks.Size() }

// Cache returns the sample cache of the reader.
func (r *Reader) Cache() *cache.ReadSampleCache { return r.cache }

// Root returns the top object "/".
func (r *Reader) Root() (abc.ObjectReader, error) {
	root, err := newObjectReader(r, nil, abc.ObjectHeader{Name: rootObjectName, FullName: "/"}, r.rootObject)
	if err != nil {
		return nil, err
	}

	return root, nil
}

// FindObject resolves an absolute path such as "/a/b". Empty segments are
// ignored, so "/" and "" both name the top object.
func (r *Reader) FindObject(path string) (abc.ObjectReader, error) {
	obj, err := r.Root()
	if err != nil {
		return nil, err
	}

	for _, name := range strings.Split(path, "/") {
		if name == "" {
			continue
		}
		if obj, err = obj.ChildByName(name); err != nil {
			return nil, fmt.Errorf("find %q: %w", path, err)
		}
	}

	return obj, nil
}

// NumTimeSamplings returns the number of time samplings, identity included.
func (r *Reader) NumTimeSamplings() int { return r.samplings.Len() }

// TimeSampling returns the time sampling at index.
func (r *Reader) TimeSampling(index int) (timesampling.TimeSampling, error) {
	if index < 0 {
		return timesampling.TimeSampling{}, fmt.Errorf("%w: index %d", errs.ErrInvalidTimeSampling, index)
	}

	ts, ok := r.samplings.Get(uint32(index))
	if !ok {
		return timesampling.TimeSampling{}, fmt.Errorf("%w: index %d of %d", errs.ErrInvalidTimeSampling, index, r.samplings.Len())
	}

	return ts, nil
}

// MaxSamples returns the largest sample count written against the time
// sampling at index.
func (r *Reader) MaxSamples(index int) (uint32, bool) {
	if index < 0 {
		return 0, false
	}

	return r.samplings.MaxSamples(uint32(index))
}

// MetaData returns a copy of the archive metadata.
func (r *Reader) MetaData() metadata.MetaData { return r.meta.Clone() }

// ArchiveVersion returns the library version that wrote the archive.
func (r *Reader) ArchiveVersion() int32 { return r.libraryVersion }

// FileVersion returns the Ogawa file version.
func (r *Reader) FileVersion() int32 { return r.fileVersion }

// AlembicVersion returns the version string recorded by the writer.
func (r *Reader) AlembicVersion() string { return r.meta.Value(KeyAlembicVersion) }

// Application returns the name of the writing application.
func (r *Reader) Application() string { return r.meta.Value(KeyApplication) }

// Description returns the user description.
func (r *Reader) Description() string { return r.meta.Value(KeyDescription) }

// DateWritten returns when the archive was written, as recorded.
func (r *Reader) DateWritten() string { return r.meta.Value(KeyDateWritten) }

// FPS returns the recorded frame rate of the producing application.
func (r *Reader) FPS() (float64, bool) {
	v, ok := r.meta.Get(KeyDCCFPS)
	if !ok {
		return 0, false
	}

	fps, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}

	return fps, true
}

// Compression returns the codec sample payloads were compressed with.
func (r *Reader) Compression() format.CompressionType { return r.compression }

// samplePayload reads the payload of a keyed sample block, through the cache.
func (r *Reader) samplePayload(pos uint64, index int) ([]byte, error) {
	pos = section.Position(pos)
	if pos == 0 {
		return []byte{}, nil
	}

	key := cache.Key{Pos: pos, Index: index}
	if cached, ok := r.cache.Get(key); ok {
		return cached.Bytes(), nil
	}

	payload, err := r.blocks.ReadKeyedPayload(pos)
	if err != nil {
		return nil, err
	}
	if r.codec != nil {
		if payload, err = r.decompressPayload(pos, payload); err != nil {
			return nil, err
		}
	}

	return r.cache.Insert(key, payload).Bytes(), nil
}

// decompressPayload undoes the sample framing. Payloads that would not shrink
// are stored raw and can still parse as a frame, so a decoded result is only
// taken when it matches the block key, which covers the uncompressed bytes.
func (r *Reader) decompressPayload(pos uint64, payload []byte) ([]byte, error) {
	if _, ok := compress.FramedSize(payload); !ok {
		return payload, nil
	}

	out := compress.DecompressFramed(r.codec, payload)

	key, err := r.blocks.ReadKey(pos)
	if err != nil {
		return nil, err
	}
	if hash.ContentDigest(out) == key {
		return out, nil
	}
	if hash.ContentDigest(payload) == key {
		return payload, nil
	}

	// Neither matches when the writer was handed a foreign key.
	return out, nil
}
