// Package smoothing provides running-median filters used to denoise series
// before and during segmentation.
package smoothing

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidWindow is returned for a non-positive, even or oversized window.
var ErrInvalidWindow = errors.New("smoothing: invalid window")

func validateWindow(k int) error {
	if k < 1 || k%2 == 0 {
		return fmt.Errorf("%w: window must be a positive odd integer, got %d", ErrInvalidWindow, k)
	}
	return nil
}

// Runmed applies a running median of width k with Tukey's end rule: points
// with a full window take their centred median, and the (k-1)/2 points at
// each end are smoothed by successively narrower odd medians followed by the
// median-of-3 extrapolation rule at the two outermost points.
//
// k must be odd and no larger than len(values).
func Runmed(values []float64, k int) ([]float64, error) {
	if err := validateWindow(k); err != nil {
		return nil, err
	}
	n := len(values)
	if k > n {
		return nil, fmt.Errorf("%w: window %d exceeds series length %d", ErrInvalidWindow, k, n)
	}

	result := append([]float64(nil), values...)
	if k == 1 {
		return result, nil
	}

	half := k / 2
	window := make([]float64, k)
	for i := half; i < n-half; i++ {
		copy(window, values[i-half:i+half+1])
		sort.Float64s(window)
		result[i] = window[half]
	}

	return smoothEnds(result, half), nil
}

// smoothEnds applies Tukey's end rule to y, whose interior already holds the
// running median and whose first and last half points still hold raw values.
func smoothEnds(y []float64, half int) []float64 {
	n := len(y)
	sm := append([]float64(nil), y...)

	if half >= 2 {
		sm[1] = med3(y[0], y[1], y[2])
		sm[n-2] = med3(y[n-1], y[n-2], y[n-3])

		for i := 3; i <= half; i++ {
			if 2*i > n {
				break
			}
			sm[i-1] = medianOdd(y[:2*i-1])
			sm[n-i] = medianOdd(y[n+1-2*i:])
		}
	}

	sm[0] = med3(y[0], sm[1], 3*sm[1]-2*sm[2])
	sm[n-1] = med3(y[n-1], sm[n-2], 3*sm[n-2]-2*sm[n-3])
	return sm
}

func med3(a, b, c float64) float64 {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
	}
	if a > b {
		return a
	}
	return b
}

// medianOdd returns the middle element of an odd-length slice.
func medianOdd(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}
