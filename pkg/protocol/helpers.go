package protocol

import "encoding/json"

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewLandmarksMessage creates a landmarks message from packed coordinates
func NewLandmarksMessage(coords []float64, frameID uint64) (*Message, error) {
	return NewMessage(TypeLandmarks, LandmarksData{
		Coords:  coords,
		FrameID: frameID,
	})
}

// NewSessionMessage creates a session start message
func NewSessionMessage(wakeTime int64) (*Message, error) {
	return NewMessage(TypeSession, SessionData{WakeTime: wakeTime})
}

// NewStressMessage creates a stress update message
func NewStressMessage(level int) (*Message, error) {
	return NewMessage(TypeStress, StressData{Level: level})
}

// NewAnalyzeMessage creates an analysis request
func NewAnalyzeMessage(text string, save bool) (*Message, error) {
	return NewMessage(TypeAnalyze, AnalyzeData{Text: text, Save: save})
}

// NewEmotionMessage creates a per-frame result message
func NewEmotionMessage(data EmotionData) (*Message, error) {
	return NewMessage(TypeEmotion, data)
}

// NewAnalysisMessage creates an analysis reply from an encoded report
func NewAnalysisMessage(report json.RawMessage, entryID string) (*Message, error) {
	return NewMessage(TypeAnalysis, AnalysisData{
		EntryID: entryID,
		Report:  report,
	})
}

// NewErrorMessage creates an error reply
func NewErrorMessage(request MessageType, message string) (*Message, error) {
	return NewMessage(TypeError, ErrorData{
		Request: request,
		Message: message,
	})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: 0, // Will be set by NewMessage
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetLandmarksData extracts landmarks from a message
func (m *Message) GetLandmarksData() (*LandmarksData, error) {
	var data LandmarksData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetSessionData extracts session data from a message
func (m *Message) GetSessionData() (*SessionData, error) {
	var data SessionData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetStressData extracts stress data from a message
func (m *Message) GetStressData() (*StressData, error) {
	var data StressData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetAnalyzeData extracts an analysis request from a message
func (m *Message) GetAnalyzeData() (*AnalyzeData, error) {
	var data AnalyzeData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetEmotionData extracts a per-frame result from a message
func (m *Message) GetEmotionData() (*EmotionData, error) {
	var data EmotionData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetAnalysisData extracts an analysis reply from a message
func (m *Message) GetAnalysisData() (*AnalysisData, error) {
	var data AnalysisData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts an error reply from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
