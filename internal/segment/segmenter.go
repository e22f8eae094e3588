package segment

import (
	"fmt"
	"math"
)

// Segmenter finds the least-cost segmentation of a series for a per-segment
// penalty fixed once at construction.
type Segmenter struct {
	data         DataForSegmentation
	penalty      float64
	segmentation Segmentation
}

// NewSegmenter computes the penalty of data.RawValues with calc and then the
// least-cost segmentation of data.SegmentationValues.
func NewSegmenter(data DataForSegmentation, calc PenaltyCalculator) (*Segmenter, error) {
	if len(data.SegmentationValues) != len(data.RawValues) {
		return nil, fmt.Errorf("%w: %d segmentation values but %d raw values",
			ErrInvalidArgument, len(data.SegmentationValues), len(data.RawValues))
	}
	for i := range data.SegmentationValues {
		if v := data.SegmentationValues[i]; !isFinite(v) {
			return nil, fmt.Errorf("%w: non-finite segmentation value %v at index %d", ErrInvalidArgument, v, i)
		}
		if v := data.RawValues[i]; !isFinite(v) {
			return nil, fmt.Errorf("%w: non-finite raw value %v at index %d", ErrInvalidArgument, v, i)
		}
	}

	penalty, err := calc.Penalty(data.RawValues)
	if err != nil {
		return nil, fmt.Errorf("computing segment penalty: %w", err)
	}
	if penalty < 0 || !isFinite(penalty) {
		return nil, fmt.Errorf("%w: segment penalty must be finite and non-negative, got %v", ErrInvalidArgument, penalty)
	}

	splits := optimalSplits(data.SegmentationValues, penalty)

	return &Segmenter{
		data:         data,
		penalty:      penalty,
		segmentation: fromSplits(data.SegmentationValues, splits),
	}, nil
}

// NewGammaSegmenter segments raw with a penalty of gamma calibrated on the
// noise of raw.
func NewGammaSegmenter(raw []float64, gamma float64, normalise bool) (*Segmenter, error) {
	return NewSegmenter(NewRawData(raw), GammaPenaltyCalculator{Gamma: gamma, Normalise: normalise})
}

// NewFixedPenaltySegmenter segments raw with a constant penalty.
func NewFixedPenaltySegmenter(raw []float64, penalty float64) (*Segmenter, error) {
	return NewSegmenter(NewRawData(raw), FixedPenalty(penalty))
}

// Penalty returns the penalty charged per segment.
func (s *Segmenter) Penalty() float64 {
	return s.penalty
}

// LeastCostSegmentation returns the segmentation of minimal Cost(Penalty()).
func (s *Segmenter) LeastCostSegmentation() Segmentation {
	return s.segmentation
}

// SegmentBy splits the segmented values at explicit positions, independently
// of the cost search.
func (s *Segmenter) SegmentBy(splits []int) (Segmentation, error) {
	return SegmentationFromSplits(s.data.SegmentationValues, splits)
}

// PCF summarises the least-cost segmentation with means of the raw values
// rounded to DefaultMeanDigits decimals.
func (s *Segmenter) PCF() PiecewiseConstantFit {
	return s.PCFWithDigits(DefaultMeanDigits)
}

// PCFWithDigits is PCF with means rounded to digits decimals.
func (s *Segmenter) PCFWithDigits(digits int) PiecewiseConstantFit {
	return fitOf(s.segmentation.Lengths(), s.data.RawValues, digits)
}

// optimalSplits returns the split positions of the least-cost segmentation of
// values by optimal partitioning:
//
//	F(0) = 0
//	F(t) = min over s < t of F(s) + C(s, t) + penalty
//
// where C(s, t) is the sum of squared deviations of values[s:t] from its
// mean. A candidate s with F(s) + C(s, t) > F(t) can never be the last split
// of a later optimum and is pruned (PELT).
func optimalSplits(values []float64, penalty float64) []int {
	n := len(values)
	if n < 2 {
		return nil
	}

	costs := newSegmentCosts(values)

	best := make([]float64, n+1)
	lastSplit := make([]int, n+1)

	admissible := make([]int, 1, n+1)
	candidates := make([]float64, 0, n+1)

	for t := 1; t <= n; t++ {
		candidates = candidates[:0]
		minCost := math.Inf(1)
		argMin := 0
		for _, s := range admissible {
			c := best[s] + costs.cost(s, t)
			candidates = append(candidates, c)
			if c < minCost {
				minCost = c
				argMin = s
			}
		}
		best[t] = minCost + penalty
		lastSplit[t] = argMin

		pruned := admissible[:0]
		for i, s := range admissible {
			if candidates[i] <= best[t] {
				pruned = append(pruned, s)
			}
		}
		admissible = append(pruned, t)
	}

	var splits []int
	for t := lastSplit[n]; t > 0; t = lastSplit[t] {
		splits = append(splits, t)
	}
	for i, j := 0, len(splits)-1; i < j; i, j = i+1, j-1 {
		splits[i], splits[j] = splits[j], splits[i]
	}
	return splits
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
