package server

import "encoding/json"

// Message types.
const (
	TypeAction = "action"
	TypeView   = "view"
	TypeError  = "error"
)

// Message is one JSON text frame in either direction.
type Message struct {
	Type    string          `json:"type"`
	Name    string          `json:"name,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Seq     uint64          `json:"seq,omitempty"`
	View    any             `json:"view,omitempty"`
	Error   string          `json:"error,omitempty"`
}
