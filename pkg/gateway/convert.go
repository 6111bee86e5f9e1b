package gateway

import (
	"github.com/teslashibe/recemotion/pkg/protocol"
	"github.com/teslashibe/recemotion/pkg/session"
)

// EmotionData converts a frame result into its wire form.
func EmotionData(frameID uint64, res session.FrameResult) protocol.EmotionData {
	data := protocol.EmotionData{
		FrameID:    frameID,
		Outcome:    res.Outcome.String(),
		Calibrated: res.Calibrated,
		Samples:    res.Samples,
	}
	if res.Err != nil {
		data.Reason = res.Err.Error()
	}
	if res.Outcome == session.OutcomeClassified {
		data.Emotion = string(res.Emotion)
		data.ZScores = make(map[string]float64, len(res.ZScores))
		for f, z := range res.ZScores {
			data.ZScores[f.String()] = z
		}
	}
	return data
}
