// Package segment computes least-cost piecewise-constant segmentations of a
// numeric series. The optimum is found by exact optimal partitioning with
// PELT pruning, using a per-segment penalty that is either fixed or
// calibrated from the noise of the series itself.
package segment

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned for malformed segmentation input.
var ErrInvalidArgument = errors.New("segment: invalid argument")

// DataForSegmentation pairs the values that are segmented with the raw values
// used to report segment means. Both series have the same length.
type DataForSegmentation struct {
	SegmentationValues []float64
	RawValues          []float64
}

// NewDataForSegmentation validates that both series have equal length.
func NewDataForSegmentation(segmentationValues, rawValues []float64) (DataForSegmentation, error) {
	if len(segmentationValues) != len(rawValues) {
		return DataForSegmentation{}, fmt.Errorf("%w: %d segmentation values but %d raw values",
			ErrInvalidArgument, len(segmentationValues), len(rawValues))
	}
	return DataForSegmentation{
		SegmentationValues: segmentationValues,
		RawValues:          rawValues,
	}, nil
}

// NewRawData segments and reports the same values.
func NewRawData(values []float64) DataForSegmentation {
	return DataForSegmentation{
		SegmentationValues: values,
		RawValues:          values,
	}
}

// Count returns the number of points.
func (d DataForSegmentation) Count() int {
	return len(d.RawValues)
}

// IsEmpty reports whether there are no points.
func (d DataForSegmentation) IsEmpty() bool {
	return d.Count() == 0
}
