package archive

import (
	"cmp"
	"slices"

	"github.com/arloliu/alembic/endian"
	"github.com/arloliu/alembic/format"
	"github.com/arloliu/alembic/internal/dedup"
	"github.com/arloliu/alembic/internal/hash"
	"github.com/arloliu/alembic/internal/pool"
	"github.com/arloliu/alembic/metadata"
	"github.com/arloliu/alembic/ogawa"
	"github.com/arloliu/alembic/section"
	"github.com/arloliu/alembic/timesampling"
)

// sampleState is what serializing the samples of one property produced.
type sampleState struct {
	children   []uint64
	hash       hash.Sum128
	hashed     bool
	first      uint32
	last       uint32
	numSamples uint32
	homogenous bool
	scalarLike bool
}

// objectHeaders carries the children of an object into the property pass,
// which writes their headers once the property hash is known.
type objectHeaders struct {
	children  []*OObject
	childHash hash.Sum128
}

// writeArchive emits the object tree, the archive tables and the root group,
// then freezes the file.
func (w *Writer) writeArchive() error {
	engine := endian.GetLittleEndianEngine()

	versionPos, err := w.ow.WriteData(engine.AppendUint32(nil, uint32(section.OgawaFileVersion)))
	if err != nil {
		return err
	}
	libraryPos, err := w.ow.WriteData(engine.AppendUint32(nil, uint32(w.libraryVersion)))
	if err != nil {
		return err
	}

	rootPos, _, err := w.writeObject(w.root)
	if err != nil {
		return err
	}

	meta := w.meta.Clone()
	meta.Set(KeyAlembicVersion, FormatLibraryVersion(w.libraryVersion))
	if w.compression != format.CompressionNone {
		meta.Set(KeyCompression, w.compression.String())
	}
	metaPos, err := w.ow.WriteData([]byte(meta.Serialize()))
	if err != nil {
		return err
	}

	samplingsPos, err := w.ow.WriteData(w.samplings.Encode(nil))
	if err != nil {
		return err
	}
	indexedPos, err := w.ow.WriteData(w.indexed.Serialize())
	if err != nil {
		return err
	}

	root, err := w.ow.WriteGroup([]uint64{
		section.DataRef(versionPos),
		section.DataRef(libraryPos),
		section.GroupRef(rootPos),
		section.DataRef(metaPos),
		section.DataRef(samplingsPos),
		section.DataRef(indexedPos),
	})
	if err != nil {
		return err
	}

	return w.ow.Freeze(section.GroupRef(root))
}

// writeObject writes the subtree of o bottom-up and returns the object group
// position and the structural hash of the subtree.
func (w *Writer) writeObject(o *OObject) (uint64, hash.Sum128, error) {
	childPos := make([]uint64, 0, len(o.children))
	childHashes := make([]hash.Sum128, 0, len(o.children))
	for _, child := range o.children {
		pos, h, err := w.writeObject(child)
		if err != nil {
			return 0, hash.Sum128{}, err
		}
		childPos = append(childPos, pos)
		childHashes = append(childHashes, h)
	}

	var childHash hash.Sum128
	if len(childHashes) > 0 {
		childHash = sumOf(childHashes)
	}

	propsPos, dataHash, headersPos, _, err := w.writeProperties(o.props.props, &objectHeaders{
		children:  o.children,
		childHash: childHash,
	})
	if err != nil {
		return 0, hash.Sum128{}, err
	}

	group, release := pool.GetUint64Slice(len(childPos) + 2)
	defer release()
	group = append(group, section.GroupRef(propsPos))
	for _, pos := range childPos {
		group = append(group, section.GroupRef(pos))
	}
	if headersPos != 0 {
		group = append(group, section.DataRef(headersPos))
	}

	pos, err := w.ow.WriteGroup(group)
	if err != nil {
		return 0, hash.Sum128{}, err
	}

	s := hash.NewStructural()
	for _, h := range childHashes {
		s.WriteSum(h)
	}
	s.WriteSum(dataHash)
	meta := o.meta.Serialize()
	s.WriteUint64(uint64(len(meta)))
	s.WriteString(meta)
	s.WriteUint64(uint64(len(o.name)))
	s.WriteString(o.name)

	return pos, s.Sum(), nil
}

// writeProperties writes a compound's properties and returns the compound
// group position, the combined property hash, the position of the object
// headers block (when obj is set) and the per-property hashes.
//
// Sample data goes out in write order; property groups are finalized last
// to first.
func (w *Writer) writeProperties(props []OProperty, obj *objectHeaders) (uint64, hash.Sum128, uint64, []hash.Sum128, error) {
	if len(props) == 0 {
		dataHash := sumOf(nil)

		var headersPos uint64
		if obj != nil {
			var err error
			if headersPos, err = w.writeObjectHeaders(obj, dataHash); err != nil {
				return 0, hash.Sum128{}, 0, nil, err
			}
		}

		return 0, dataHash, headersPos, nil, nil
	}

	order := make([]int, len(props))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(baseOf(props[a]).writeOrder, baseOf(props[b]).writeOrder)
	})

	states := make([]sampleState, len(props))
	for _, i := range order {
		var err error
		switch p := props[i].(type) {
		case *OScalar:
			states[i], err = w.writeSamples(&p.sampledProperty, false)
		case *OArray:
			states[i], err = w.writeSamples(&p.sampledProperty, true)
		}
		if err != nil {
			return 0, hash.Sum128{}, 0, nil, err
		}
	}

	positions := make([]uint64, len(props))
	hashes := make([]hash.Sum128, len(props))
	for i := len(props) - 1; i >= 0; i-- {
		var err error
		if positions[i], hashes[i], err = w.finalizeProperty(props[i], &states[i]); err != nil {
			return 0, hash.Sum128{}, 0, nil, err
		}
	}

	dataHash := sumOf(hashes)

	var headersPos uint64
	if obj != nil {
		var err error
		if headersPos, err = w.writeObjectHeaders(obj, dataHash); err != nil {
			return 0, hash.Sum128{}, 0, nil, err
		}
	}

	propHeadersPos, err := w.writePropertyHeaders(props, states)
	if err != nil {
		return 0, hash.Sum128{}, 0, nil, err
	}

	group, release := pool.GetUint64Slice(len(props) + 1)
	defer release()
	for _, pos := range positions {
		group = append(group, section.GroupRef(pos))
	}
	group = append(group, section.DataRef(propHeadersPos))

	pos, err := w.ow.WriteGroup(group)
	if err != nil {
		return 0, hash.Sum128{}, 0, nil, err
	}

	return pos, dataHash, headersPos, hashes, nil
}

// writeSamples writes the distinct samples of p and builds its child list.
// Samples equal to their predecessor are not stored; runs inside the
// changed range repeat the previous reference.
func (w *Writer) writeSamples(p *sampledProperty, array bool) (sampleState, error) {
	st := sampleState{
		numSamples: uint32(len(p.samples)),
		homogenous: true,
		scalarLike: true,
	}
	pod := p.dataType.Pod
	extent := uint64(p.dataType.Extent)

	var (
		prevKey    dedup.Key
		prevData   uint64
		prevDims   uint64
		prevShape  []uint64
		prevPoints uint64
		started    bool
	)

	for i, s := range p.samples {
		index := uint32(i)
		encoded := ogawa.EncodeSample(s.data, pod)

		var digest hash.Digest
		if s.key != nil {
			digest = *s.key
		} else {
			digest = hash.ContentDigest(encoded)
		}
		key := dedup.NewKey(digest, uint64(len(encoded)), pod)
		changed := !started || key != prevKey

		h := hash.DigestSum(digest)
		if array {
			shape := s.dims
			if !changed {
				shape = prevShape
			}
			h = hash.WithDimensions(h, shape)
		}
		hash.Mix(&st.hash, st.hashed, h)
		st.hashed = true

		if array && product(s.dims) != 1 {
			st.scalarLike = false
		}
		if !changed {
			continue
		}

		if index > 0 && st.first != 0 {
			for j := st.last + 1; j < index; j++ {
				st.children = append(st.children, section.DataRef(prevData))
				if array {
					st.children = append(st.children, prevDims)
				}
			}
		}

		pos, err := w.ow.WriteKeyedDataWithKey(s.data, digest, pod)
		if err != nil {
			return sampleState{}, err
		}
		st.children = append(st.children, section.DataRef(pos))

		if array {
			dimsRef := section.EmptyData
			if len(s.dims) > 1 || pod.IsString() {
				dimsPos, err := w.ow.WriteData(encodeDims(s.dims))
				if err != nil {
					return sampleState{}, err
				}
				dimsRef = section.DataRef(dimsPos)
			}
			st.children = append(st.children, dimsRef)

			points := product(s.dims) * extent
			if extent != 1 || (started && points != prevPoints) {
				st.homogenous = false
			}
			prevPoints = points
			prevShape = s.dims
			prevDims = dimsRef
		}

		prevData = pos
		prevKey = key
		started = true

		if index != 0 {
			if st.first == 0 {
				st.first = index
			}
			st.last = index
		}
	}

	maxSamples := st.numSamples
	if st.last == 0 && st.numSamples > 0 {
		maxSamples = 1
	}
	w.samplings.UpdateMaxSamples(p.tsIndex, maxSamples)

	return st, nil
}

// finalizeProperty writes the group of one property and returns its
// position and structural hash.
func (w *Writer) finalizeProperty(p OProperty, st *sampleState) (uint64, hash.Sum128, error) {
	s := hash.NewStructural()

	switch p := p.(type) {
	case *OCompound:
		pos, _, _, subHashes, err := w.writeProperties(p.props, nil)
		if err != nil {
			return 0, hash.Sum128{}, err
		}
		for _, h := range subHashes {
			s.WriteSum(h)
		}
		s.Write(w.propertyIdentity(p, nil, false))

		return pos, s.Sum(), nil
	case *OScalar:
		return w.finalizeSampled(s, p, &p.sampledProperty, true, st)
	case *OArray:
		return w.finalizeSampled(s, p, &p.sampledProperty, false, st)
	default:
		return 0, hash.Sum128{}, nil
	}
}

func (w *Writer) finalizeSampled(s *hash.Structural, p OProperty, sp *sampledProperty, scalar bool, st *sampleState) (uint64, hash.Sum128, error) {
	pos, err := w.ow.WriteGroup(st.children)
	if err != nil {
		return 0, hash.Sum128{}, err
	}

	s.Write(w.propertyIdentity(p, sp, scalar))
	if st.hashed {
		s.WriteSum(st.hash)
	}

	return pos, s.Sum(), nil
}

// propertyIdentity returns the bytes that identify a property header in
// structural hashes: name, metadata and, for sampled properties, the
// element type and the time sampling. Name and metadata are length
// prefixed so no two headers share an identity.
func (w *Writer) propertyIdentity(p OProperty, sp *sampledProperty, scalar bool) []byte {
	base := baseOf(p)
	meta := base.meta.Serialize()

	engine := endian.GetLittleEndianEngine()
	b := engine.AppendUint32(nil, uint32(len(base.name)))
	b = append(b, base.name...)
	b = engine.AppendUint32(b, uint32(len(meta)))
	b = append(b, meta...)
	if sp == nil {
		return b
	}

	kind := byte(0)
	if scalar {
		kind = 1
	}
	b = append(b, byte(sp.dataType.Pod), sp.dataType.Extent, kind)

	ts, ok := w.samplings.Get(sp.tsIndex)
	if !ok {
		ts = timesampling.Identity()
	}
	times := ts.Times()

	b = endian.AppendFloat64(engine, b, ts.TimePerCycle())
	b = engine.AppendUint32(b, uint32(len(times)))
	for _, t := range times {
		b = endian.AppendFloat64(engine, b, t)
	}

	return b
}

func (w *Writer) writePropertyHeaders(props []OProperty, states []sampleState) (uint64, error) {
	buf := pool.GetHeaderBuffer()
	defer pool.PutHeaderBuffer(buf)

	for i, p := range props {
		base := baseOf(p)
		rec := section.PropertyRecord{
			Name:          base.name,
			Type:          p.Type(),
			MetadataIndex: w.indexed.Index(base.meta),
			Metadata:      base.meta.Serialize(),
		}

		var sp *sampledProperty
		switch p := p.(type) {
		case *OScalar:
			sp = &p.sampledProperty
		case *OArray:
			sp = &p.sampledProperty
			rec.ScalarLike = states[i].scalarLike
		}
		if sp != nil {
			st := states[i]
			rec.DataType = sp.dataType
			rec.TimeSamplingIndex = sp.tsIndex
			rec.NumSamples = st.numSamples
			rec.FirstChanged = st.first
			rec.LastChanged = st.last
			rec.Homogenous = st.homogenous
		}

		buf.B = section.AppendPropertyRecord(buf.B, &rec)
	}

	return w.ow.WriteData(buf.B)
}

func (w *Writer) writeObjectHeaders(obj *objectHeaders, dataHash hash.Sum128) (uint64, error) {
	buf := pool.GetHeaderBuffer()
	defer pool.PutHeaderBuffer(buf)

	for _, child := range obj.children {
		serialized := child.meta.Serialize()
		rec := section.ObjectRecord{
			Name:          child.name,
			MetadataIndex: w.indexed.IndexString(serialized),
			Metadata:      serialized,
		}
		buf.B = section.AppendObjectRecord(buf.B, &rec)
	}
	buf.B = section.AppendObjectHashes(buf.B, section.ObjectHashes{
		Data:     [2]uint64(dataHash),
		Children: [2]uint64(obj.childHash),
	})

	return w.ow.WriteData(buf.B)
}

func baseOf(p OProperty) *propertyBase {
	switch p := p.(type) {
	case *OScalar:
		return &p.propertyBase
	case *OArray:
		return &p.propertyBase
	case *OCompound:
		return &p.propertyBase
	default:
		return &propertyBase{writeOrder: defaultWriteOrder, meta: metadata.MetaData{}}
	}
}

func sumOf(hashes []hash.Sum128) hash.Sum128 {
	s := hash.NewStructural()
	for _, h := range hashes {
		s.WriteSum(h)
	}

	return s.Sum()
}

func product(dims []uint64) uint64 {
	n := uint64(1)
	for _, d := range dims {
		n *= d
	}

	return n
}

func encodeDims(dims []uint64) []byte {
	engine := endian.GetLittleEndianEngine()
	b := make([]byte, 0, len(dims)*8)
	for _, d := range dims {
		b = engine.AppendUint64(b, d)
	}

	return b
}
