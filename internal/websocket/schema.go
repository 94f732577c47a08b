package websocket

import "encoding/json"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventReady    Event = "ready"
	EventRegistry Event = "registry"
	EventPong     Event = "pong"
)

// ReadyResponse is sent once after the upgrade succeeds.
type ReadyResponse struct {
	Event       Event    `json:"event"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// RegistryResponse wraps a registry event published on the admin feed.
// Data is the event JSON exactly as published.
type RegistryResponse struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
