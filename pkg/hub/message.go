// Package hub provides a thread-safe websocket broadcast hub
// using the channel-based fan-out pattern.
package hub

// Message is one payload queued for every client.
type Message struct {
	Data []byte
}

// NewJSONMessage wraps pre-encoded JSON.
func NewJSONMessage(data []byte) Message {
	return Message{Data: data}
}
