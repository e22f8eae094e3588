package segment

import (
	"fmt"
	"math"
)

// MaxExhaustiveLength bounds the series accepted by the exhaustive search,
// which visits 2^(n-1) partitions.
const MaxExhaustiveLength = 20

// ExhaustiveSearchSegmenter finds the least-cost segmentation by enumerating
// every partition. It is a verification oracle for Segmenter and is only
// usable on tiny series.
type ExhaustiveSearchSegmenter struct {
	values  []float64
	penalty float64
}

// NewExhaustiveSearchSegmenter computes the penalty of raw with calc. Series
// longer than MaxExhaustiveLength are refused.
func NewExhaustiveSearchSegmenter(raw []float64, calc PenaltyCalculator) (*ExhaustiveSearchSegmenter, error) {
	if len(raw) > MaxExhaustiveLength {
		return nil, fmt.Errorf("%w: exhaustive search limited to %d points, got %d",
			ErrInvalidArgument, MaxExhaustiveLength, len(raw))
	}

	penalty, err := calc.Penalty(raw)
	if err != nil {
		return nil, fmt.Errorf("computing segment penalty: %w", err)
	}

	return &ExhaustiveSearchSegmenter{
		values:  raw,
		penalty: penalty,
	}, nil
}

// Penalty returns the penalty charged per segment.
func (e *ExhaustiveSearchSegmenter) Penalty() float64 {
	return e.penalty
}

// CheapestSegmentation returns a segmentation of minimal cost. Bit i of the
// enumeration mask places a split before index i+1.
func (e *ExhaustiveSearchSegmenter) CheapestSegmentation() Segmentation {
	n := len(e.values)
	if n < 2 {
		return fromSplits(e.values, nil)
	}

	var best Segmentation
	bestCost := math.Inf(1)
	splits := make([]int, 0, n-1)

	for mask := 0; mask < 1<<(n-1); mask++ {
		splits = splits[:0]
		for i := 0; i < n-1; i++ {
			if mask&(1<<i) != 0 {
				splits = append(splits, i+1)
			}
		}

		candidate := fromSplits(e.values, splits)
		if c := candidate.Cost(e.penalty); c < bestCost {
			bestCost = c
			best = candidate
		}
	}
	return best
}
