package websocket

import "encoding/json"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// Encode marshals a message, falling back to an empty action on failure.
func Encode(action string, payload interface{}) []byte {
	b, err := json.Marshal(Message{Action: action, Payload: payload})
	if err != nil {
		return []byte(`{"action":"error","payload":"encoding failure"}`)
	}
	return b
}

// NewErrorMessage builds an error message for a single connection.
func NewErrorMessage(msg string) []byte {
	return Encode("error", msg)
}
