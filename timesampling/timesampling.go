// Package timesampling maps sample indexes to times and resolves time queries
// to sample indexes.
//
// Four sampling kinds exist:
//
//   - Identity: every sample at time 0
//   - Uniform: start + index * timePerCycle
//   - Cyclic: a pattern of times repeating every timePerCycle
//   - Acyclic: one explicit time per sample
//
// Queries never fail. A property with zero samples resolves every query to
// index 0 at time 0, and indexes past the end clamp to the last sample.
package timesampling

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/arloliu/alembic/errs"
)

// AcyclicTimePerCycle is the time-per-cycle value that marks acyclic sampling
// in the encoded time sampling table.
const AcyclicTimePerCycle = math.MaxFloat64 / 32

// legacyAcyclicTimePerCycle is accepted on read for archives that stored the
// marker as the most negative float.
const legacyAcyclicTimePerCycle = -math.MaxFloat64

// Type is the sampling kind.
type Type uint8

const (
	TypeIdentity Type = iota
	TypeUniform
	TypeCyclic
	TypeAcyclic
)

// String returns the lower-case name of the kind.
func (t Type) String() string {
	switch t {
	case TypeIdentity:
		return "identity"
	case TypeUniform:
		return "uniform"
	case TypeCyclic:
		return "cyclic"
	case TypeAcyclic:
		return "acyclic"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// TimeSampling is an immutable description of when samples were taken.
// The zero value is Identity.
type TimeSampling struct {
	typ          Type
	timePerCycle float64
	times        []float64
}

// Identity returns sampling with every sample at time 0.
func Identity() TimeSampling {
	return TimeSampling{typ: TypeIdentity}
}

// Uniform returns sampling at start + index * timePerCycle.
func Uniform(timePerCycle, start float64) TimeSampling {
	return TimeSampling{typ: TypeUniform, timePerCycle: timePerCycle, times: []float64{start}}
}

// Cyclic returns sampling where times repeat every timePerCycle.
func Cyclic(timePerCycle float64, times []float64) TimeSampling {
	return TimeSampling{typ: TypeCyclic, timePerCycle: timePerCycle, times: slices.Clone(times)}
}

// Acyclic returns sampling with one explicit time per sample.
func Acyclic(times []float64) TimeSampling {
	return TimeSampling{typ: TypeAcyclic, timePerCycle: AcyclicTimePerCycle, times: slices.Clone(times)}
}

// FPS returns uniform sampling at the given frame rate starting at start.
func FPS(fps, start float64) TimeSampling {
	return Uniform(1/fps, start)
}

// Type returns the sampling kind.
func (ts TimeSampling) Type() Type {
	return ts.typ
}

// TimePerCycle returns the cycle length. Identity reports 1 and Acyclic
// reports AcyclicTimePerCycle.
func (ts TimeSampling) TimePerCycle() float64 {
	switch ts.typ {
	case TypeIdentity:
		return 1
	case TypeAcyclic:
		return AcyclicTimePerCycle
	default:
		return ts.timePerCycle
	}
}

// StartTime returns the time of sample 0.
func (ts TimeSampling) StartTime() float64 {
	if len(ts.times) == 0 {
		return 0
	}

	return ts.times[0]
}

// Times returns a copy of the stored times. Identity stores {0}.
func (ts TimeSampling) Times() []float64 {
	if ts.typ == TypeIdentity {
		return []float64{0}
	}

	return slices.Clone(ts.times)
}

// SamplesPerCycle returns the number of stored times; 1 for Identity and Uniform.
func (ts TimeSampling) SamplesPerCycle() int {
	switch ts.typ {
	case TypeIdentity, TypeUniform:
		return 1
	default:
		return len(ts.times)
	}
}

// Validate reports errs.ErrInvalidTimeSampling for a non-positive cycle on
// uniform or cyclic sampling, an empty or decreasing time list on cyclic or
// acyclic sampling, or non-finite values.
func (ts TimeSampling) Validate() error {
	switch ts.typ {
	case TypeIdentity:
		return nil
	case TypeUniform, TypeCyclic:
		if !(ts.timePerCycle > 0) || math.IsInf(ts.timePerCycle, 0) {
			return fmt.Errorf("%w: time per cycle %v must be positive", errs.ErrInvalidTimeSampling, ts.timePerCycle)
		}
	case TypeAcyclic:
	default:
		return fmt.Errorf("%w: unknown type %d", errs.ErrInvalidTimeSampling, ts.typ)
	}

	if len(ts.times) == 0 {
		return fmt.Errorf("%w: %s sampling has no times", errs.ErrInvalidTimeSampling, ts.typ)
	}
	for i, t := range ts.times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("%w: time %d is not finite", errs.ErrInvalidTimeSampling, i)
		}
		if i > 0 && t < ts.times[i-1] {
			return fmt.Errorf("%w: time %d (%v) precedes time %d (%v)", errs.ErrInvalidTimeSampling, i, t, i-1, ts.times[i-1])
		}
	}

	return nil
}

// Equivalent reports whether both samplings encode identically. Identity is
// equivalent to Uniform(1, 0).
func (ts TimeSampling) Equivalent(other TimeSampling) bool {
	if (ts.typ == TypeAcyclic) != (other.typ == TypeAcyclic) {
		return false
	}
	if ts.TimePerCycle() != other.TimePerCycle() {
		return false
	}

	return slices.Equal(ts.Times(), other.Times())
}

// SampleTime returns the time of sample index. numSamples is accepted for
// symmetry with the queries and does not clamp the result.
func (ts TimeSampling) SampleTime(index, numSamples int) float64 {
	_ = numSamples
	switch ts.typ {
	case TypeUniform:
		return ts.StartTime() + float64(index)*ts.timePerCycle
	case TypeCyclic:
		n := len(ts.times)
		if n == 0 {
			return 0
		}
		cycle, offset := index/n, index%n
		if offset < 0 {
			cycle--
			offset += n
		}

		return ts.times[offset] + float64(cycle)*ts.timePerCycle
	case TypeAcyclic:
		if index < 0 || index >= len(ts.times) {
			return 0
		}

		return ts.times[index]
	default:
		return 0
	}
}

// FloorIndex returns the largest index whose time is <= t, or index 0 when t
// precedes the first sample.
func (ts TimeSampling) FloorIndex(t float64, numSamples int) (int, float64) {
	if numSamples <= 0 {
		return 0, 0
	}

	switch ts.typ {
	case TypeIdentity:
		return 0, 0
	case TypeUniform:
		start := ts.StartTime()
		if t <= start {
			return 0, start
		}
		last := numSamples - 1
		f := math.Floor((t - start) / ts.timePerCycle)
		if f >= float64(last) {
			return last, ts.SampleTime(last, numSamples)
		}

		// the division can land one step off a sample time, fix it up
		// against the times SampleTime reports
		idx := int(f)
		if idx > 0 && ts.SampleTime(idx, numSamples) > t {
			idx--
		} else if idx < last && ts.SampleTime(idx+1, numSamples) <= t {
			idx++
		}

		return idx, ts.SampleTime(idx, numSamples)
	default:
		// first index whose time is > t
		upper := sort.Search(numSamples, func(i int) bool {
			return ts.SampleTime(i, numSamples) > t
		})
		idx := 0
		if upper > 0 {
			idx = upper - 1
		}

		return idx, ts.SampleTime(idx, numSamples)
	}
}

// CeilIndex returns the smallest index whose time is >= t, clamped to the
// last sample.
func (ts TimeSampling) CeilIndex(t float64, numSamples int) (int, float64) {
	if numSamples <= 0 {
		return 0, 0
	}

	idx, ft := ts.FloorIndex(t, numSamples)
	if ft >= t {
		return idx, ft
	}

	idx = min(idx+1, numSamples-1)

	return idx, ts.SampleTime(idx, numSamples)
}

// NearIndex returns whichever of the floor and ceil samples is closer to t.
// Ties resolve to the floor.
func (ts TimeSampling) NearIndex(t float64, numSamples int) (int, float64) {
	if numSamples <= 0 {
		return 0, 0
	}

	fi, ft := ts.FloorIndex(t, numSamples)
	if fi >= numSamples-1 {
		return fi, ft
	}

	ci := fi + 1
	ct := ts.SampleTime(ci, numSamples)
	if math.Abs(t-ft) <= math.Abs(ct-t) {
		return fi, ft
	}

	return ci, ct
}

// String returns a short human readable form, e.g. "uniform(tpc=0.0416667, start=0)".
func (ts TimeSampling) String() string {
	switch ts.typ {
	case TypeIdentity:
		return "identity"
	case TypeUniform:
		return fmt.Sprintf("uniform(tpc=%g, start=%g)", ts.timePerCycle, ts.StartTime())
	case TypeCyclic:
		return fmt.Sprintf("cyclic(tpc=%g, times=%s)", ts.timePerCycle, formatTimes(ts.times))
	default:
		return fmt.Sprintf("acyclic(times=%s)", formatTimes(ts.times))
	}
}

func formatTimes(times []float64) string {
	const maxShown = 8

	parts := make([]string, 0, min(len(times), maxShown)+1)
	for i, t := range times {
		if i == maxShown {
			parts = append(parts, fmt.Sprintf("... %d more", len(times)-maxShown))
			break
		}
		parts = append(parts, fmt.Sprintf("%g", t))
	}

	return "[" + strings.Join(parts, " ") + "]"
}
