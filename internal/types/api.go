package types

import "github.com/chrissnell/pcfseg/internal/segment"

// SegmentRequest asks for the segmentation of a single series. Penalty, when
// set, replaces the gamma-derived penalty.
type SegmentRequest struct {
	Values     []float64 `json:"values"`
	Gamma      *float64  `json:"gamma,omitempty"`
	Normalise  *bool     `json:"normalise,omitempty"`
	Penalty    *float64  `json:"penalty,omitempty"`
	MeanDigits *int      `json:"mean_digits,omitempty"`
}

// SegmentResponse is the least-cost segmentation of a SegmentRequest.
type SegmentResponse struct {
	Penalty float64                      `json:"penalty"`
	Cost    float64                      `json:"cost"`
	Fit     segment.PiecewiseConstantFit `json:"fit"`
}

// ArmsRequest asks for the per-arm segmentation of depth ratios. Unset
// parameters take the server's configured values.
type ArmsRequest struct {
	Build        string       `json:"build,omitempty"`
	Gamma        *float64     `json:"gamma,omitempty"`
	Normalise    *bool        `json:"normalise,omitempty"`
	MinArmPoints *int         `json:"min_arm_points,omitempty"`
	Windowed     *bool        `json:"windowed,omitempty"`
	Points       []DepthRatio `json:"points"`
}

// ArmSummary describes the segmentation of one arm.
type ArmSummary struct {
	Chromosome string  `json:"chromosome"`
	Arm        string  `json:"arm"`
	Points     int     `json:"points"`
	Penalty    float64 `json:"penalty"`
	Segments   int     `json:"segments"`
}

// ArmsResponse lists the segments of every arm. RunID is set when the run
// was stored.
type ArmsResponse struct {
	RunID    string       `json:"run_id,omitempty"`
	Build    string       `json:"build"`
	Arms     []ArmSummary `json:"arms"`
	Segments []ArmSegment `json:"segments"`
}

// StatusResponse reports server health. BusyWorkers is only reported by the
// pool executor.
type StatusResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Build       string `json:"build"`
	Storage     bool   `json:"storage"`
	Executor    string `json:"executor"`
	BusyWorkers int    `json:"busy_workers"`
}
