package livesync

import "context"

// Level is the severity of an event-log line.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// SessionDirectory owns the list of messaging sessions and its aggregates.
type SessionDirectory interface {
	// Reload refetches and redraws the session list and aggregate counts.
	Reload(ctx context.Context)
}

// StatisticsAggregator receives one signal per webhook delivery.
type StatisticsAggregator interface {
	RecordWebhook(success bool)
}

// EventLogger is the dashboard's event-log panel.
type EventLogger interface {
	Log(level Level, source, text string)
}

// SessionBoard shows one element per session.
type SessionBoard interface {
	// PatchStatus replaces the status of the element for sessionID in place.
	// Reports false when no such element is displayed.
	PatchStatus(sessionID, status string) bool
}

// DetailSurface is the per-session detail view (QR pairing dialog).
type DetailSurface interface {
	// ActiveSession returns the session the surface is showing, if open.
	ActiveSession() (sessionID string, open bool)
	ShowQR(sessionID, qr string)
	MarkReady(sessionID string)
}

// StatusIndicator shows whether the push transport is connected.
// SetConnected must be idempotent.
type StatusIndicator interface {
	SetConnected(connected bool)
}
