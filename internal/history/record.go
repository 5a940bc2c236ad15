package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Unknown is shown in place of a missing session id, event name or URL.
const Unknown = "-"

// TimestampLayout is the ISO-8601 layout assigned to records on insertion.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// DeliveryRecord is one logged attempt to call a webhook endpoint.
//
// Payload and Response are kept as raw JSON so that any value the gateway
// sends (object, array, string, number, bool) survives persistence untouched.
type DeliveryRecord struct {
	SessionID string          `json:"sessionId,omitempty"`
	Event     string          `json:"event,omitempty"`
	URL       string          `json:"url,omitempty"`
	Success   bool            `json:"success"`
	Status    *int            `json:"status,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Response  json.RawMessage `json:"response,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// ResolvedSessionID returns the top-level session id, falling back to
// payload.sessionId, then Unknown.
func (r DeliveryRecord) ResolvedSessionID() string {
	if r.SessionID != "" {
		return r.SessionID
	}
	if len(r.Payload) > 0 {
		var nested struct {
			SessionID string `json:"sessionId"`
		}
		if err := json.Unmarshal(r.Payload, &nested); err == nil && nested.SessionID != "" {
			return nested.SessionID
		}
	}
	return Unknown
}

// HasStatus reports whether a non-zero status code is present.
func (r DeliveryRecord) HasStatus() bool {
	return r.Status != nil && *r.Status != 0
}

// Time parses Timestamp. ok is false when the timestamp is absent or invalid.
func (r DeliveryRecord) Time() (t time.Time, ok bool) {
	if r.Timestamp == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IntPtr is a convenience for building records with a status code.
func IntPtr(n int) *int {
	return &n
}

// DecodeDelivery parses a gateway delivery report without rejecting
// off-type fields. data must be a JSON object. Status accepts numbers and
// numeric strings; a non-string error is kept as its compact JSON text;
// success follows truthiness. Fields that cannot be read are left empty.
func DecodeDelivery(data []byte) (DeliveryRecord, error) {
	var raw struct {
		SessionID json.RawMessage `json:"sessionId"`
		Event     json.RawMessage `json:"event"`
		URL       json.RawMessage `json:"url"`
		Success   json.RawMessage `json:"success"`
		Status    json.RawMessage `json:"status"`
		Timestamp json.RawMessage `json:"timestamp"`
		Payload   json.RawMessage `json:"payload"`
		Response  json.RawMessage `json:"response"`
		Error     json.RawMessage `json:"error"`
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return DeliveryRecord{}, errors.New("delivery is not a JSON object")
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return DeliveryRecord{}, err
	}
	rec := DeliveryRecord{
		SessionID: scalarText(raw.SessionID),
		Event:     scalarText(raw.Event),
		URL:       scalarText(raw.URL),
		Success:   truthy(raw.Success),
		Status:    statusCode(raw.Status),
		Timestamp: stringValue(raw.Timestamp),
		Payload:   raw.Payload,
		Response:  raw.Response,
	}
	if s, ok := stringOf(raw.Error); ok {
		rec.Error = s
	} else if len(raw.Error) > 0 && !isNull(raw.Error) {
		var buf bytes.Buffer
		if json.Compact(&buf, raw.Error) == nil {
			rec.Error = buf.String()
		}
	}
	return rec, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func stringOf(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func stringValue(raw json.RawMessage) string {
	s, _ := stringOf(raw)
	return s
}

// scalarText reads strings as-is and numbers or booleans as their literal.
func scalarText(raw json.RawMessage) string {
	if s, ok := stringOf(raw); ok {
		return s
	}
	if isNull(raw) {
		return ""
	}
	switch raw[0] {
	case '{', '[':
		return ""
	}
	return string(raw)
}

func truthy(raw json.RawMessage) bool {
	if isNull(raw) {
		return false
	}
	if s, ok := stringOf(raw); ok {
		return s != ""
	}
	switch string(raw) {
	case "false":
		return false
	case "true":
		return true
	}
	if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// statusCode accepts 200, 200.0 and "200". Anything else is absent.
func statusCode(raw json.RawMessage) *int {
	text := string(raw)
	if s, ok := stringOf(raw); ok {
		text = strings.TrimSpace(s)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	return IntPtr(int(f))
}
