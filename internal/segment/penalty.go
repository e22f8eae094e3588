package segment

// PenaltyCalculator derives the per-segment penalty for a series.
type PenaltyCalculator interface {
	Penalty(series []float64) (float64, error)
}

// FixedPenalty always charges the same penalty, whatever the series.
type FixedPenalty float64

// Penalty returns p.
func (p FixedPenalty) Penalty([]float64) (float64, error) {
	return float64(p), nil
}

// GammaPenaltyCalculator charges a penalty calibrated on the noise of the
// series; see Gamma.
type GammaPenaltyCalculator struct {
	Gamma     float64
	Normalise bool
}

// Penalty returns the Gamma segment penalty of series.
func (g GammaPenaltyCalculator) Penalty(series []float64) (float64, error) {
	return NewGamma(series, g.Gamma, g.Normalise).SegmentPenalty()
}
