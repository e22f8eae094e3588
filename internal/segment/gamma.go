package segment

import (
	"fmt"

	"github.com/chrissnell/pcfseg/internal/smoothing"
	"github.com/chrissnell/pcfseg/internal/stats"
)

// maxFilterWidth caps the running-median window used for noise estimation.
const maxFilterWidth = 51

// FilterWidth returns the running-median window used to estimate the noise of
// a series of n points: the largest odd number not above n, capped at 51.
// There is no window for an empty series, reported as -1.
func FilterWidth(n int) int {
	if n <= 0 {
		return -1
	}
	w := min(n, maxFilterWidth)
	if w%2 == 0 {
		w--
	}
	return w
}

// Gamma computes the automatic segment penalty of a series. The noise of the
// series is the median absolute deviation of its residuals from a running
// median; with normalise set the penalty is multiplier * noise^2, so the
// multiplier is expressed in noise units, otherwise it is the multiplier
// itself.
type Gamma struct {
	raw        []float64
	multiplier float64
	normalise  bool
}

// NewGamma creates a penalty calculator over raw.
func NewGamma(raw []float64, multiplier float64, normalise bool) *Gamma {
	return &Gamma{
		raw:        raw,
		multiplier: multiplier,
		normalise:  normalise,
	}
}

// Noise estimates the standard deviation of the noise in the series. An empty
// series has no noise.
func (g *Gamma) Noise() (float64, error) {
	n := len(g.raw)
	if n == 0 {
		return 0, nil
	}

	smoothed, err := smoothing.Runmed(g.raw, FilterWidth(n))
	if err != nil {
		return 0, fmt.Errorf("smoothing series for noise estimate: %w", err)
	}

	residuals := make([]float64, n)
	for i, v := range g.raw {
		residuals[i] = v - smoothed[i]
	}
	return stats.MedianAbsoluteDeviation(residuals)
}

// SegmentPenalty returns the penalty charged for each segment.
func (g *Gamma) SegmentPenalty() (float64, error) {
	if !g.normalise {
		return g.multiplier, nil
	}

	noise, err := g.Noise()
	if err != nil {
		return 0, err
	}
	return g.multiplier * noise * noise, nil
}
