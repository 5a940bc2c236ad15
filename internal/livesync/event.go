package livesync

import "encoding/json"

// Push event names.
const (
	EventSessionCreated = "session:created"
	EventSessionDeleted = "session:deleted"
	EventSessionStatus  = "session:status"
	EventSessionQR      = "session:qr"
	EventSessionReady   = "session:ready"
	EventWebhookSent    = "webhook:sent"
	EventLog            = "event:log"
)

// Event is one push event from the gateway.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent builds an Event by marshaling data. Intended for tests and tools.
func NewEvent(name string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{Name: name, Data: raw}, nil
}

type sessionPayload struct {
	SessionID string `json:"sessionId"`
}

type statusPayload struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
}

type qrPayload struct {
	SessionID string `json:"sessionId"`
	QR        string `json:"qr"`
}

type logPayload struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}
