// Package protocol defines the WebSocket message types exchanged between
// capture devices (phones, webcams running a face mesh) and the recemotion service.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Device → Service messages
	TypeLandmarks MessageType = "landmarks" // One face mesh frame
	TypeSession   MessageType = "session"   // Start a new session
	TypeStress    MessageType = "stress"    // Self-reported stress level
	TypeAnalyze   MessageType = "analyze"   // Request an analysis report

	// Service → Device messages
	TypeEmotion  MessageType = "emotion"  // Per-frame inference result
	TypeAnalysis MessageType = "analysis" // Analysis report
	TypeError    MessageType = "error"    // Request could not be handled

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// =============================================================================
// Device → Service Message Types
// =============================================================================

// LandmarksData carries one face mesh as packed x,y,z triples.
type LandmarksData struct {
	Coords  []float64 `json:"coords"`             // len = 3 × point count
	FrameID uint64    `json:"frame_id,omitempty"` // Optional sequence number
}

// PointCount returns the number of complete points in Coords.
func (l *LandmarksData) PointCount() int {
	return len(l.Coords) / 3
}

// SessionData starts a new session.
type SessionData struct {
	WakeTime int64 `json:"wake_time"` // Unix seconds
}

// StressData carries a self-reported stress level. Out of range values are clamped.
type StressData struct {
	Level int `json:"level"`
}

// AnalyzeData requests an analysis report.
type AnalyzeData struct {
	Text string `json:"text"`
	Save bool   `json:"save,omitempty"` // Store the report in the journal
}

// =============================================================================
// Service → Device Message Types
// =============================================================================

// EmotionData reports what a landmarks frame did.
type EmotionData struct {
	FrameID    uint64             `json:"frame_id,omitempty"`
	Outcome    string             `json:"outcome"` // "rejected", "calibrating", "calibrated", "classified"
	Emotion    string             `json:"emotion,omitempty"`
	Calibrated bool               `json:"calibrated"`
	Samples    int                `json:"samples"`
	ZScores    map[string]float64 `json:"z_scores,omitempty"`
	Reason     string             `json:"reason,omitempty"` // Rejection reason
}

// AnalysisData wraps an analysis report.
type AnalysisData struct {
	EntryID string          `json:"entry_id,omitempty"` // Set when the report was saved
	Report  json.RawMessage `json:"report"`
}

// ErrorData describes a failed request.
type ErrorData struct {
	Request MessageType `json:"request,omitempty"`
	Message string      `json:"message"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
