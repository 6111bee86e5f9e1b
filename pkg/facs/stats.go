package facs

import (
	"math"
	"slices"
)

const (
	// madScale makes the MAD a consistent estimator of sigma for normal data.
	madScale = 1.4826

	// minSigma keeps z-scores finite for features that never moved.
	minSigma = 1e-6
)

// FeatureStats is the baseline for one feature.
type FeatureStats struct {
	Median float64 `json:"median"`
	Sigma  float64 `json:"sigma"`
}

// Median returns the middle value of values, averaging the two middle
// values for even lengths. An empty slice yields 0. values is not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// RobustStats computes the median and a MAD-based sigma, floored at minSigma.
func RobustStats(values []float64) FeatureStats {
	median := Median(values)

	devs := make([]float64, len(values))
	for i, v := range values {
		devs[i] = math.Abs(v - median)
	}

	return FeatureStats{
		Median: median,
		Sigma:  math.Max(madScale*Median(devs), minSigma),
	}
}
