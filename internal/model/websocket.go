package model

// WebSocket message types
const (
	WSMessageTypeNotification = "notification"
	WSMessageTypeState        = "state"
	WSMessageTypePing         = "ping"
	WSMessageTypePong         = "pong"
)

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}

// WSNotificationMessage carries a toast to a composer session
type WSNotificationMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
}

// WSStateMessage carries a composer state transition
type WSStateMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	State     interface{} `json:"state"`
}
