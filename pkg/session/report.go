package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/teslashibe/recemotion/pkg/facs"
)

// Report is the analysis document returned to capture clients.
type Report struct {
	Status       string        `json:"status"`
	Timestamp    int64         `json:"timestamp"`
	Context      ReportContext `json:"context"`
	EmotionData  EmotionData   `json:"emotion_data"`
	InsightHints InsightHints  `json:"insight_hints"`
}

// ReportContext describes the user's situation.
type ReportContext struct {
	EnergyLevel int    `json:"energy_level"`
	StressLevel int    `json:"stress_level"`
	WakeTime    int64  `json:"wake_time"`
	InputText   string `json:"input_text"`
}

// EmotionData summarizes the classifier output.
type EmotionData struct {
	CurrentEmotion  facs.Emotion `json:"current_emotion"`
	DominantEmotion facs.Emotion `json:"dominant_emotion_last_Session"`
	IsCalibrated    bool         `json:"is_calibrated"`
	SampleCount     int          `json:"sample_count"`
}

// InsightHints flags patterns worth following up on.
type InsightHints struct {
	// HasDiscrepancy is set when the face shows an emotion while the user
	// reports the lowest stress level.
	HasDiscrepancy bool `json:"has_discrepancy"`
}

// StatusSuccess is the only status BuildReport produces.
const StatusSuccess = "success"

// BuildReport assembles a Report as of now.
func (m *Manager) BuildReport(inputText string, now time.Time) Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	var wake int64
	if m.state.hasWake {
		wake = m.state.wakeTime.Unix()
	}

	return Report{
		Status:    StatusSuccess,
		Timestamp: now.Unix(),
		Context: ReportContext{
			EnergyLevel: m.energyLocked(now),
			StressLevel: m.state.stress,
			WakeTime:    wake,
			InputText:   inputText,
		},
		EmotionData: EmotionData{
			CurrentEmotion:  m.state.current,
			DominantEmotion: m.state.history.Dominant(),
			IsCalibrated:    m.state.calibrator.IsCalibrated(),
			SampleCount:     m.state.history.Len(),
		},
		InsightHints: InsightHints{
			HasDiscrepancy: m.state.current != facs.EmotionNeutral && m.state.stress == MinStress,
		},
	}
}

// Report builds a Report using the manager's clock.
func (m *Manager) Report(inputText string) Report {
	return m.BuildReport(inputText, m.clock.Now())
}

// AnalysisJSON returns the current report encoded as JSON.
func (m *Manager) AnalysisJSON(inputText string) (string, error) {
	data, err := json.Marshal(m.Report(inputText))
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}
