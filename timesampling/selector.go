package timesampling

import "fmt"

// Policy selects how a time query maps onto sample indexes.
type Policy uint8

const (
	// PolicyFloor picks the last sample at or before the time.
	PolicyFloor Policy = iota
	// PolicyCeil picks the first sample at or after the time.
	PolicyCeil
	// PolicyNear picks the closer of floor and ceil, preferring floor on ties.
	PolicyNear
)

// String returns the lower-case name of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyFloor:
		return "floor"
	case PolicyCeil:
		return "ceil"
	case PolicyNear:
		return "near"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// interpEpsilon is the shortest interval interpolated between two samples.
const interpEpsilon = 1e-9

// Selector picks a sample either by index or by time.
// The zero value selects index 0.
type Selector struct {
	index   int
	time    float64
	policy  Policy
	useTime bool
}

// Index selects sample i.
func Index(i int) Selector {
	return Selector{index: i}
}

// At selects the sample nearest to t under policy.
func At(t float64, policy Policy) Selector {
	return Selector{time: t, policy: policy, useTime: true}
}

// Floor selects the last sample at or before t.
func Floor(t float64) Selector { return At(t, PolicyFloor) }

// Ceil selects the first sample at or after t.
func Ceil(t float64) Selector { return At(t, PolicyCeil) }

// Near selects the sample closest to t.
func Near(t float64) Selector { return At(t, PolicyNear) }

// IsTime reports whether the selector is time based.
func (s Selector) IsTime() bool {
	return s.useTime
}

// RequestedIndex returns the index of an index selector.
func (s Selector) RequestedIndex() int {
	return s.index
}

// RequestedTime returns the time and policy of a time selector.
func (s Selector) RequestedTime() (float64, Policy) {
	return s.time, s.policy
}

// Resolve returns the sample index selected from numSamples samples.
// The result is always within [0, numSamples-1], or 0 when there are no samples.
func (s Selector) Resolve(ts TimeSampling, numSamples int) int {
	if numSamples <= 0 {
		return 0
	}

	if !s.useTime {
		return clampIndex(s.index, numSamples)
	}

	var idx int
	switch s.policy {
	case PolicyCeil:
		idx, _ = ts.CeilIndex(s.time, numSamples)
	case PolicyNear:
		idx, _ = ts.NearIndex(s.time, numSamples)
	default:
		idx, _ = ts.FloorIndex(s.time, numSamples)
	}

	return idx
}

// Interp describes a blend between two samples. Alpha 0 means Floor alone.
type Interp struct {
	Floor int
	Ceil  int
	Alpha float64
}

// IsExact reports whether no blending is needed.
func (i Interp) IsExact() bool {
	return i.Floor == i.Ceil || i.Alpha == 0
}

// Interp returns the samples surrounding the selection and the blend factor
// between them. Index selectors and degenerate intervals yield an exact
// result at the floor index.
func (s Selector) Interp(ts TimeSampling, numSamples int) Interp {
	if numSamples <= 0 {
		return Interp{}
	}

	if !s.useTime {
		idx := clampIndex(s.index, numSamples)
		return Interp{Floor: idx, Ceil: idx}
	}

	fi, ft := ts.FloorIndex(s.time, numSamples)
	ci, ct := ts.CeilIndex(s.time, numSamples)
	if fi == ci || ct-ft < interpEpsilon {
		return Interp{Floor: fi, Ceil: fi}
	}

	alpha := (s.time - ft) / (ct - ft)
	alpha = max(0, min(1, alpha))

	return Interp{Floor: fi, Ceil: ci, Alpha: alpha}
}

// String implements fmt.Stringer.
func (s Selector) String() string {
	if !s.useTime {
		return fmt.Sprintf("index(%d)", s.index)
	}

	return fmt.Sprintf("%s(%g)", s.policy, s.time)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}

	return i
}
