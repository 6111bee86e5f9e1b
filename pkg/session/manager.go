// Package session holds the per-user inference state: calibration, the current
// emotion, a bounded emotion history, self-reported stress and wake time.
//
// A Manager is safe for concurrent use. Every operation holds a single mutex for
// its whole duration, so a frame-processing goroutine and a query goroutine see
// state transitions in a linearizable order.
package session

import (
	"sync"
	"time"

	"github.com/teslashibe/recemotion/internal/log"
	"github.com/teslashibe/recemotion/pkg/debug"
	"github.com/teslashibe/recemotion/pkg/facs"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the wall clock used for energy and report timestamps.
func WithClock(c Clock) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

// state is the mutable session context. Guarded by Manager.mu.
type state struct {
	wakeTime   time.Time
	hasWake    bool
	stress     int
	calibrator *facs.Calibrator
	current    facs.Emotion
	history    *History
}

// Manager owns the session state.
type Manager struct {
	mu    sync.Mutex
	cfg   Config
	clock Clock
	state state
}

// New creates a Manager in the default, uninitialized state: no wake time,
// stress 1, Neutral, empty history, uncalibrated.
func New(cfg Config, opts ...Option) *Manager {
	cfg = cfg.normalized()
	m := &Manager{
		cfg:   cfg,
		clock: realClock{},
		state: state{
			stress:     MinStress,
			calibrator: facs.NewCalibrator(),
			current:    facs.EmotionNeutral,
			history:    NewHistory(cfg.HistorySize),
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Now returns the current time from the manager's clock.
func (m *Manager) Now() time.Time {
	return m.clock.Now()
}

// Config returns the session configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

// InitSession starts a new session: it records the wake time and discards
// calibration, history and the current emotion.
func (m *Manager) InitSession(wake time.Time) {
	m.reset(wake)
	log.Info("session initialized", "wake_time", wake.Unix())
}

func (m *Manager) reset(wake time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.wakeTime = wake
	m.state.hasWake = true
	m.state.calibrator = facs.NewCalibrator()
	m.state.history.Clear()
	m.state.current = facs.EmotionNeutral
}

// UpdateStress clamps level into [1,5], stores it and returns the stored value.
func (m *Manager) UpdateStress(level int) int {
	stored := m.setStress(level)
	log.Info("stress updated", "requested", level, "stored", stored)
	return stored
}

func (m *Manager) setStress(level int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.stress = ClampStress(level)
	return m.state.stress
}

// PushFlat accepts packed x,y,z coordinates as delivered by capture clients.
// Frames with fewer than 468 points are ignored.
func (m *Manager) PushFlat(coords []float64) FrameResult {
	return m.ProcessFrame(facs.FrameFromFlat(coords))
}

// ProcessFrame runs one frame through gating, extraction and either
// calibration or classification. Rejected frames leave the state untouched.
func (m *Manager) ProcessFrame(frame facs.Frame) FrameResult {
	res := m.processFrame(frame)

	switch res.Outcome {
	case OutcomeRejected:
		debug.FrameLog("frame rejected", "reason", res.Err)
	case OutcomeCalibrating:
		debug.FrameLog("calibration sample", "samples", res.Samples)
	case OutcomeCalibrated:
		log.Info("calibration finalized", "samples", res.Samples, "baseline", res.Baseline)
	case OutcomeClassified:
		debug.FrameLog("frame classified", "emotion", res.Emotion, "z", res.ZScores)
	}
	return res
}

func (m *Manager) processFrame(frame facs.Frame) FrameResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	cal := m.state.calibrator
	rejected := func(err error) FrameResult {
		return FrameResult{
			Outcome:    OutcomeRejected,
			Err:        err,
			Samples:    cal.SampleCount(),
			Calibrated: cal.IsCalibrated(),
		}
	}

	if err := facs.CheckHeadPose(frame, m.cfg.Gate); err != nil {
		return rejected(err)
	}

	features, err := facs.Extract(frame)
	if err != nil {
		return rejected(err)
	}

	if !cal.IsCalibrated() {
		cal.AddSample(features)
		res := FrameResult{Outcome: OutcomeCalibrating, Samples: cal.SampleCount()}
		if cal.SampleCount() >= m.cfg.CalibrationSamples && cal.Finalize() {
			res.Outcome = OutcomeCalibrated
			res.Calibrated = true
			res.Baseline = cal.Baseline()
		}
		return res
	}

	z := cal.ZScores(features)
	emotion := facs.ClassifyWithThreshold(z, m.cfg.Threshold)
	m.state.current = emotion
	m.state.history.Push(emotion)

	return FrameResult{
		Outcome:    OutcomeClassified,
		Samples:    cal.SampleCount(),
		Calibrated: true,
		Emotion:    emotion,
		ZScores:    z,
	}
}

// ComputeEnergy returns the energy level at now, or DefaultEnergy when no
// session has been initialized.
func (m *Manager) ComputeEnergy(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.energyLocked(now)
}

func (m *Manager) energyLocked(now time.Time) int {
	if !m.state.hasWake {
		return DefaultEnergy
	}
	return EnergyLevel(m.state.wakeTime.Unix(), now.Unix())
}

// CurrentEmotion returns the most recently classified emotion.
func (m *Manager) CurrentEmotion() facs.Emotion {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.current
}

// IsCalibrated reports whether the baseline has been finalized.
func (m *Manager) IsCalibrated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.calibrator.IsCalibrated()
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	WakeTime           time.Time
	HasWakeTime        bool
	Stress             int
	Emotion            facs.Emotion
	History            []facs.Emotion
	Calibrated         bool
	CalibrationSamples int
	Baseline           map[facs.Feature]facs.FeatureStats
}

// Snapshot copies the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		WakeTime:           m.state.wakeTime,
		HasWakeTime:        m.state.hasWake,
		Stress:             m.state.stress,
		Emotion:            m.state.current,
		History:            m.state.history.Entries(),
		Calibrated:         m.state.calibrator.IsCalibrated(),
		CalibrationSamples: m.state.calibrator.SampleCount(),
		Baseline:           m.state.calibrator.Baseline(),
	}
}
