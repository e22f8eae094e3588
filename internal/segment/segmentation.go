package segment

import (
	"fmt"
)

// Segmentation is an ordered partition of a series into non-empty contiguous
// segments. It is immutable once built.
type Segmentation struct {
	segments [][]float64
}

// NewSegmentation builds a Segmentation from explicit segments. Empty segments
// are rejected.
func NewSegmentation(segments [][]float64) (Segmentation, error) {
	copied := make([][]float64, len(segments))
	for i, seg := range segments {
		if len(seg) == 0 {
			return Segmentation{}, fmt.Errorf("%w: segment %d is empty", ErrInvalidArgument, i)
		}
		copied[i] = append([]float64(nil), seg...)
	}
	return Segmentation{segments: copied}, nil
}

// SegmentationFromSplits splits series at the given 0-indexed positions. Each
// split must lie in (0, len(series)) and the splits must be strictly
// increasing. No splits yields a single segment, or none for an empty series.
func SegmentationFromSplits(series []float64, splits []int) (Segmentation, error) {
	n := len(series)
	prev := 0
	for _, s := range splits {
		if s <= 0 || s >= n {
			return Segmentation{}, fmt.Errorf("%w: split %d outside (0, %d)", ErrInvalidArgument, s, n)
		}
		if s <= prev {
			return Segmentation{}, fmt.Errorf("%w: splits must be strictly increasing, got %v", ErrInvalidArgument, splits)
		}
		prev = s
	}
	return fromSplits(series, splits), nil
}

// fromSplits trusts that splits are valid.
func fromSplits(series []float64, splits []int) Segmentation {
	if len(series) == 0 {
		return Segmentation{}
	}

	segments := make([][]float64, 0, len(splits)+1)
	start := 0
	for _, s := range splits {
		segments = append(segments, append([]float64(nil), series[start:s]...))
		start = s
	}
	segments = append(segments, append([]float64(nil), series[start:]...))
	return Segmentation{segments: segments}
}

// Len returns the number of segments.
func (s Segmentation) Len() int {
	return len(s.segments)
}

// Segments returns a copy of the segments.
func (s Segmentation) Segments() [][]float64 {
	out := make([][]float64, len(s.segments))
	for i, seg := range s.segments {
		out[i] = append([]float64(nil), seg...)
	}
	return out
}

// Lengths returns the size of each segment.
func (s Segmentation) Lengths() []int {
	lengths := make([]int, len(s.segments))
	for i, seg := range s.segments {
		lengths[i] = len(seg)
	}
	return lengths
}

// Starts returns the 0-indexed offset of each segment.
func (s Segmentation) Starts() []int {
	starts := make([]int, len(s.segments))
	offset := 0
	for i, seg := range s.segments {
		starts[i] = offset
		offset += len(seg)
	}
	return starts
}

// CompleteSeries concatenates the segments back into the original series.
func (s Segmentation) CompleteSeries() []float64 {
	total := 0
	for _, seg := range s.segments {
		total += len(seg)
	}

	series := make([]float64, 0, total)
	for _, seg := range s.segments {
		series = append(series, seg...)
	}
	return series
}

// Cost returns the within-segment sum of squared deviations from each
// segment mean plus penalty for every segment.
func (s Segmentation) Cost(penalty float64) float64 {
	total := 0.0
	for _, seg := range s.segments {
		total += sumOfSquares(seg)
	}
	return total + penalty*float64(len(s.segments))
}

// Equal reports whether both segmentations hold the same ordered segments.
func (s Segmentation) Equal(other Segmentation) bool {
	if len(s.segments) != len(other.segments) {
		return false
	}
	for i := range s.segments {
		a, b := s.segments[i], other.segments[i]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}

// String formats the segments, e.g. [[2 3 1] [12 13 11]].
func (s Segmentation) String() string {
	return fmt.Sprint(s.segments)
}

func sumOfSquares(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum
}
