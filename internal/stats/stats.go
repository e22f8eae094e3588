// Package stats provides the robust univariate statistics used to calibrate
// segmentation penalties.
package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// MADScale makes the median absolute deviation a consistent estimator of the
// standard deviation for normally distributed data.
const MADScale = 1.4826

// ErrEmptyInput is returned when a statistic is requested over no values.
var ErrEmptyInput = errors.New("stats: empty input")

// Median returns the median of values. Even-length input averages the two
// middle elements. The input is not modified.
func Median(values []float64) (float64, error) {
	n := len(values)
	if n == 0 {
		return 0, ErrEmptyInput
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 1 {
		return sorted[mid], nil
	}
	return (sorted[mid-1] + sorted[mid]) / 2, nil
}

// MedianAbsoluteDeviation returns MADScale * median(|x - median(x)|).
func MedianAbsoluteDeviation(values []float64) (float64, error) {
	med, err := Median(values)
	if err != nil {
		return 0, err
	}

	deviations := make([]float64, len(values))
	for i, v := range values {
		deviations[i] = math.Abs(v - med)
	}

	mad, err := Median(deviations)
	if err != nil {
		return 0, err
	}
	return MADScale * mad, nil
}

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyInput
	}
	return stat.Mean(values, nil), nil
}
