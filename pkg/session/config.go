package session

import (
	"github.com/teslashibe/recemotion/pkg/facs"
)

// Config holds the tunable parameters of a session.
type Config struct {
	// Calibration
	CalibrationSamples int // Frames collected before the baseline is finalized

	// Classification
	Threshold float64         // Z-score magnitude treated as significant
	Gate      facs.GateConfig // Head-pose quality gate

	// History
	HistorySize int // Most recent classified emotions kept for the summary
}

// DefaultConfig returns the standard session parameters.
func DefaultConfig() Config {
	return Config{
		CalibrationSamples: 30, // ~1 second of camera frames
		Threshold:          facs.DefaultThreshold,
		Gate:               facs.DefaultGateConfig(),
		HistorySize:        100,
	}
}

// normalized replaces unusable values with defaults.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.CalibrationSamples <= 0 {
		c.CalibrationSamples = def.CalibrationSamples
	}
	if c.Threshold <= 0 {
		c.Threshold = def.Threshold
	}
	if c.Gate.MaxYawRatio <= 0 {
		c.Gate.MaxYawRatio = def.Gate.MaxYawRatio
	}
	if c.Gate.MinIPD < 0 {
		c.Gate.MinIPD = def.Gate.MinIPD
	}
	if c.HistorySize <= 0 {
		c.HistorySize = def.HistorySize
	}
	return c
}

// Stress bounds.
const (
	MinStress = 1
	MaxStress = 5
)

// ClampStress restricts a self-reported stress level to [MinStress, MaxStress].
func ClampStress(level int) int {
	if level < MinStress {
		return MinStress
	}
	if level > MaxStress {
		return MaxStress
	}
	return level
}
