package model

// WebSocket message types
const (
	WSMessageTypePing = "ping"
	WSMessageTypePong = "pong"
)

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}
