package segment

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultMeanDigits is the number of decimals segment means are rounded to.
const DefaultMeanDigits = 3

// PiecewiseConstantFit summarises a segmentation as segment lengths, start
// offsets and rounded means of the raw values.
type PiecewiseConstantFit struct {
	Lengths []int     `json:"lengths"`
	Starts  []int     `json:"starts"`
	Means   []float64 `json:"means"`
}

// fitOf derives the fit of the segment lengths over raw, rounding the means
// to digits decimals.
func fitOf(lengths []int, raw []float64, digits int) PiecewiseConstantFit {
	fit := PiecewiseConstantFit{
		Lengths: append([]int{}, lengths...),
		Starts:  make([]int, len(lengths)),
		Means:   make([]float64, len(lengths)),
	}

	offset := 0
	for i, l := range lengths {
		fit.Starts[i] = offset
		fit.Means[i] = RoundTo(mean(raw[offset:offset+l]), digits)
		offset += l
	}
	return fit
}

// SingleSegmentFit is the fit of raw as one segment. An empty series has no
// segments.
func SingleSegmentFit(raw []float64, digits int) PiecewiseConstantFit {
	if len(raw) == 0 {
		return fitOf(nil, raw, digits)
	}
	return fitOf([]int{len(raw)}, raw, digits)
}

// Len returns the number of segments.
func (p PiecewiseConstantFit) Len() int {
	return len(p.Lengths)
}

// End returns the exclusive end offset of segment i.
func (p PiecewiseConstantFit) End(i int) int {
	return p.Starts[i] + p.Lengths[i]
}

// Equal compares lengths, starts and means element-wise.
func (p PiecewiseConstantFit) Equal(other PiecewiseConstantFit) bool {
	if len(p.Lengths) != len(other.Lengths) || len(p.Starts) != len(other.Starts) || len(p.Means) != len(other.Means) {
		return false
	}
	for i := range p.Lengths {
		if p.Lengths[i] != other.Lengths[i] {
			return false
		}
	}
	for i := range p.Starts {
		if p.Starts[i] != other.Starts[i] {
			return false
		}
	}
	for i := range p.Means {
		if p.Means[i] != other.Means[i] {
			return false
		}
	}
	return true
}

// RoundTo rounds x to digits decimals, halves away from zero. A negative
// digits value leaves x unchanged.
func RoundTo(x float64, digits int) float64 {
	if digits < 0 {
		return x
	}
	scale := math.Pow(10, float64(digits))
	return math.Round(x*scale) / scale
}

func mean(values []float64) float64 {
	return stat.Mean(values, nil)
}
