package facs

// ZScores maps features to their deviation from the user baseline.
// Missing features are read as 0.
type ZScores map[Feature]float64

// Calibrator learns a per-user baseline from sample frames.
// It is not safe for concurrent use; the session layer serializes access.
type Calibrator struct {
	samples    []FeatureVector
	stats      map[Feature]FeatureStats
	calibrated bool
}

// NewCalibrator returns an empty, uncalibrated Calibrator.
func NewCalibrator() *Calibrator {
	return &Calibrator{
		stats: make(map[Feature]FeatureStats),
	}
}

// AddSample appends a baseline sample.
func (c *Calibrator) AddSample(fv FeatureVector) {
	c.samples = append(c.samples, fv)
}

// SampleCount returns the number of collected samples.
func (c *Calibrator) SampleCount() int {
	return len(c.samples)
}

// IsCalibrated reports whether Finalize produced at least one baseline.
func (c *Calibrator) IsCalibrated() bool {
	return c.calibrated
}

// Finalize computes the baseline from every collected sample.
// Features are those present in the first sample; samples lacking a feature
// are skipped for that feature only. Returns false when there are no samples
// or no feature produced stats. Calling it again recomputes from scratch.
func (c *Calibrator) Finalize() bool {
	if len(c.samples) == 0 {
		return false
	}

	stats := make(map[Feature]FeatureStats, len(c.samples[0]))
	for f := range c.samples[0] {
		values := make([]float64, 0, len(c.samples))
		for _, s := range c.samples {
			if v, ok := s[f]; ok {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			stats[f] = RobustStats(values)
		}
	}

	c.stats = stats
	c.calibrated = len(stats) > 0
	return c.calibrated
}

// Stats returns the baseline for f.
func (c *Calibrator) Stats(f Feature) (FeatureStats, bool) {
	s, ok := c.stats[f]
	return s, ok
}

// Baseline returns a copy of all feature baselines.
func (c *Calibrator) Baseline() map[Feature]FeatureStats {
	out := make(map[Feature]FeatureStats, len(c.stats))
	for f, s := range c.stats {
		out[f] = s
	}
	return out
}

// ZScore returns (value - median) / sigma. ok is false when the calibrator
// is not calibrated or has no baseline for f, in which case z is 0.
func (c *Calibrator) ZScore(f Feature, value float64) (z float64, ok bool) {
	if !c.calibrated {
		return 0, false
	}
	s, ok := c.stats[f]
	if !ok {
		return 0, false
	}
	return (value - s.Median) / s.Sigma, true
}

// GetZScore is ZScore with the neutral default folded in.
func (c *Calibrator) GetZScore(f Feature, value float64) float64 {
	z, _ := c.ZScore(f, value)
	return z
}

// ZScores scores every feature in fv.
func (c *Calibrator) ZScores(fv FeatureVector) ZScores {
	out := make(ZScores, len(fv))
	for f, v := range fv {
		out[f] = c.GetZScore(f, v)
	}
	return out
}
