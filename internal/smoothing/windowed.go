package smoothing

import (
	"github.com/chrissnell/pcfseg/internal/stats"
)

// WindowedMedian replaces each point with the median of the window of width k
// centred on it. Near the ends the window shrinks to the points actually
// available, so edge windows may hold an even number of values, in which case
// the two middle values are averaged.
func WindowedMedian(values []float64, k int) ([]float64, error) {
	if err := validateWindow(k); err != nil {
		return nil, err
	}

	n := len(values)
	result := make([]float64, n)
	half := k / 2

	for i := 0; i < n; i++ {
		lo := max(0, i-half)
		hi := min(n, i+half+1)

		m, err := stats.Median(values[lo:hi])
		if err != nil {
			return nil, err
		}
		result[i] = m
	}
	return result, nil
}
