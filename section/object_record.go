package section

import (
	"fmt"

	"github.com/arloliu/alembic/endian"
	"github.com/arloliu/alembic/errs"
)

// ObjectRecord is the on-disk header of one child object.
//
//	u32 name length | name | u8 metadata index | [u32 length | metadata]
//
// The bracketed part is present only for InlineMetadata.
type ObjectRecord struct {
	Name          string
	MetadataIndex uint8
	// Metadata holds the serialized metadata when MetadataIndex is InlineMetadata.
	Metadata string
}

// ObjectHashes is the 32-byte trailer of an object headers block: the
// structural hash of the object's properties followed by that of its children.
type ObjectHashes struct {
	Data     [2]uint64
	Children [2]uint64
}

// AppendObjectRecord appends the encoded record to b.
func AppendObjectRecord(b []byte, r *ObjectRecord) []byte {
	b = AppendWithHint(b, uint32(len(r.Name)), SizeHintUint32)
	b = append(b, r.Name...)
	b = append(b, r.MetadataIndex)

	if r.MetadataIndex == InlineMetadata {
		b = AppendWithHint(b, uint32(len(r.Metadata)), SizeHintUint32)
		b = append(b, r.Metadata...)
	}

	return b
}

// AppendObjectHashes appends the 32-byte hash trailer to b.
func AppendObjectHashes(b []byte, h ObjectHashes) []byte {
	engine := endian.GetLittleEndianEngine()
	b = engine.AppendUint64(b, h.Data[0])
	b = engine.AppendUint64(b, h.Data[1])
	b = engine.AppendUint64(b, h.Children[0])
	b = engine.AppendUint64(b, h.Children[1])

	return b
}

// ParseObjectHeaders decodes an object headers block.
//
// An empty block yields no records and zero hashes. Any other block must end
// with the 32-byte hash trailer.
//
// Returns:
//   - []ObjectRecord: Child headers in order
//   - ObjectHashes: Decoded trailer
//   - error: ErrInvalidStructure or ErrUnexpectedEOF for malformed blocks
func ParseObjectHeaders(data []byte) ([]ObjectRecord, ObjectHashes, error) {
	var hashes ObjectHashes
	if len(data) == 0 {
		return nil, hashes, nil
	}
	if len(data) < ObjectHashesSize {
		return nil, hashes, fmt.Errorf("%w: object headers block of %d bytes", errs.ErrInvalidStructure, len(data))
	}

	engine := endian.GetLittleEndianEngine()
	tail := data[len(data)-ObjectHashesSize:]
	hashes.Data[0] = engine.Uint64(tail[0:8])
	hashes.Data[1] = engine.Uint64(tail[8:16])
	hashes.Children[0] = engine.Uint64(tail[16:24])
	hashes.Children[1] = engine.Uint64(tail[24:32])

	body := data[:len(data)-ObjectHashesSize]
	records := make([]ObjectRecord, 0, 4)

	pos := 0
	for pos < len(body) {
		nameLen, n, err := ReadWithHint(body[pos:], SizeHintUint32)
		if err != nil {
			return nil, hashes, err
		}
		pos += n
		if uint64(pos)+uint64(nameLen)+1 > uint64(len(body)) {
			return nil, hashes, fmt.Errorf("%w: object name of %d bytes at %d", errs.ErrUnexpectedEOF, nameLen, pos)
		}

		r := ObjectRecord{Name: string(body[pos : pos+int(nameLen)])}
		pos += int(nameLen)
		r.MetadataIndex = body[pos]
		pos++

		if r.MetadataIndex == InlineMetadata {
			mdLen, n, err := ReadWithHint(body[pos:], SizeHintUint32)
			if err != nil {
				return nil, hashes, err
			}
			pos += n
			if uint64(pos)+uint64(mdLen) > uint64(len(body)) {
				return nil, hashes, fmt.Errorf("%w: inline metadata of %d bytes at %d", errs.ErrUnexpectedEOF, mdLen, pos)
			}
			r.Metadata = string(body[pos : pos+int(mdLen)])
			pos += int(mdLen)
		}

		records = append(records, r)
	}

	return records, hashes, nil
}
