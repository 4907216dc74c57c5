package timesampling

import (
	"fmt"
	"math"

	"github.com/arloliu/alembic/endian"
	"github.com/arloliu/alembic/errs"
)

// entryHeaderSize is max samples (u32) + time per cycle (f64) + count (u32).
const entryHeaderSize = 4 + 8 + 4

// Table is the archive-wide list of time samplings with the largest sample
// count written against each. Index 0 is always Identity.
type Table struct {
	samplings  []TimeSampling
	maxSamples []uint32
}

// NewTable creates a table holding only Identity.
func NewTable() *Table {
	return &Table{
		samplings:  []TimeSampling{Identity()},
		maxSamples: []uint32{0},
	}
}

// Add returns the index of ts, appending it unless an equivalent sampling is
// already present.
func (t *Table) Add(ts TimeSampling) (uint32, error) {
	if err := ts.Validate(); err != nil {
		return 0, err
	}

	for i, existing := range t.samplings {
		if existing.Equivalent(ts) {
			return uint32(i), nil
		}
	}

	t.samplings = append(t.samplings, ts)
	t.maxSamples = append(t.maxSamples, 0)

	return uint32(len(t.samplings) - 1), nil
}

// Get returns the sampling at idx.
func (t *Table) Get(idx uint32) (TimeSampling, bool) {
	if int(idx) >= len(t.samplings) {
		return TimeSampling{}, false
	}

	return t.samplings[idx], true
}

// Len returns the number of samplings.
func (t *Table) Len() int {
	return len(t.samplings)
}

// UpdateMaxSamples raises the recorded maximum for idx to n.
// Unknown indexes are ignored.
func (t *Table) UpdateMaxSamples(idx uint32, n uint32) {
	if int(idx) >= len(t.maxSamples) {
		return
	}
	if n > t.maxSamples[idx] {
		t.maxSamples[idx] = n
	}
}

// MaxSamples returns the largest sample count recorded for idx.
func (t *Table) MaxSamples(idx uint32) (uint32, bool) {
	if int(idx) >= len(t.maxSamples) {
		return 0, false
	}

	return t.maxSamples[idx], true
}

// Encode appends the table to b. Each entry is max samples (u32), time per
// cycle (f64), stored time count (u32) and the stored times (f64).
func (t *Table) Encode(b []byte) []byte {
	engine := endian.GetLittleEndianEngine()
	for i, ts := range t.samplings {
		times := ts.Times()
		b = engine.AppendUint32(b, t.maxSamples[i])
		b = endian.AppendFloat64(engine, b, ts.TimePerCycle())
		b = engine.AppendUint32(b, uint32(len(times)))
		for _, v := range times {
			b = endian.AppendFloat64(engine, b, v)
		}
	}

	return b
}

// ParseTable decodes an encoded table. Empty input yields a table holding
// only Identity.
func ParseTable(data []byte) (*Table, error) {
	engine := endian.GetLittleEndianEngine()
	t := &Table{}

	for off := 0; off < len(data); {
		if off+entryHeaderSize > len(data) {
			return nil, fmt.Errorf("%w: time sampling %d header truncated", errs.ErrInvalidStructure, len(t.samplings))
		}

		maxSamples := engine.Uint32(data[off:])
		tpc := endian.Float64(engine, data[off+4:])
		count := int(engine.Uint32(data[off+12:]))
		off += entryHeaderSize

		if count == 0 {
			return nil, fmt.Errorf("%w: time sampling %d has no times", errs.ErrInvalidStructure, len(t.samplings))
		}
		if count > (len(data)-off)/8 {
			return nil, fmt.Errorf("%w: time sampling %d times truncated", errs.ErrInvalidStructure, len(t.samplings))
		}

		times := make([]float64, count)
		for i := range times {
			times[i] = endian.Float64(engine, data[off:])
			off += 8
		}

		t.samplings = append(t.samplings, decode(tpc, times))
		t.maxSamples = append(t.maxSamples, maxSamples)
	}

	if len(t.samplings) == 0 {
		return NewTable(), nil
	}

	return t, nil
}

func decode(tpc float64, times []float64) TimeSampling {
	switch {
	case tpc == AcyclicTimePerCycle || tpc == legacyAcyclicTimePerCycle || math.IsInf(tpc, 0):
		return TimeSampling{typ: TypeAcyclic, timePerCycle: AcyclicTimePerCycle, times: times}
	case len(times) == 1:
		if tpc == 1 && times[0] == 0 {
			return Identity()
		}

		return TimeSampling{typ: TypeUniform, timePerCycle: tpc, times: times}
	default:
		return TimeSampling{typ: TypeCyclic, timePerCycle: tpc, times: times}
	}
}
