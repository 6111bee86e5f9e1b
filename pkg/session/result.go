package session

import "github.com/teslashibe/recemotion/pkg/facs"

// Outcome describes what a frame did to the session.
type Outcome int

const (
	// OutcomeRejected means the frame failed validation and changed nothing.
	OutcomeRejected Outcome = iota

	// OutcomeCalibrating means the frame was stored as a baseline sample.
	OutcomeCalibrating

	// OutcomeCalibrated means the frame completed calibration.
	OutcomeCalibrated

	// OutcomeClassified means the frame produced an emotion.
	OutcomeClassified
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeCalibrating:
		return "calibrating"
	case OutcomeCalibrated:
		return "calibrated"
	case OutcomeClassified:
		return "classified"
	default:
		return "unknown"
	}
}

// FrameResult reports the effect of one frame.
type FrameResult struct {
	Outcome Outcome
	Err     error // Rejection reason

	Samples    int                                // Calibration samples collected
	Calibrated bool                               // Baseline finalized when the frame was processed
	Baseline   map[facs.Feature]facs.FeatureStats // Set when calibration completed

	Emotion facs.Emotion // Set when classified
	ZScores facs.ZScores // Set when classified
}

// Accepted reports whether the frame reached the calibrator or classifier.
func (r FrameResult) Accepted() bool {
	return r.Outcome != OutcomeRejected
}
