package harness

import (
	"context"

	"github.com/roach88/hookwatch/internal/gateway"
	"github.com/roach88/hookwatch/internal/livesync"
)

// recorder stands in for every dashboard collaborator and writes each call
// to the trace.
type recorder struct {
	result    *Result
	sessions  []gateway.Session
	active    string
	connected bool
}

func newRecorder(result *Result, seeds []SessionSeed, active string) *recorder {
	r := &recorder{result: result, active: active}
	for _, s := range seeds {
		r.sessions = append(r.sessions, gateway.Session{ID: s.ID, Status: s.Status})
	}
	return r
}

func (r *recorder) collaborators() livesync.Collaborators {
	return livesync.Collaborators{
		Directory: r,
		Stats:     r,
		Events:    r,
		Board:     r,
		Detail:    r,
		Indicator: r,
	}
}

func (r *recorder) Reload(context.Context) {
	r.result.AddTrace(ActionReload, nil)
}

func (r *recorder) RecordWebhook(success bool) {
	r.result.AddTrace(ActionRecordWebhook, map[string]interface{}{"success": success})
}

func (r *recorder) Log(level livesync.Level, source, text string) {
	r.result.AddTrace(ActionLog, map[string]interface{}{
		"level":  string(level),
		"source": source,
		"text":   text,
	})
}

func (r *recorder) PatchStatus(sessionID, status string) bool {
	found := false
	for i := range r.sessions {
		if r.sessions[i].ID == sessionID {
			r.sessions[i].Status = status
			found = true
			break
		}
	}
	r.result.AddTrace(ActionPatchStatus, map[string]interface{}{
		"session": sessionID,
		"status":  status,
		"found":   found,
	})
	return found
}

func (r *recorder) ActiveSession() (string, bool) {
	return r.active, r.active != ""
}

func (r *recorder) ShowQR(sessionID, qr string) {
	r.result.AddTrace(ActionShowQR, map[string]interface{}{"session": sessionID, "qr": qr})
}

func (r *recorder) MarkReady(sessionID string) {
	r.active = ""
	r.result.AddTrace(ActionMarkReady, map[string]interface{}{"session": sessionID})
}

// SetConnected only records changes, like the on-screen indicator.
func (r *recorder) SetConnected(connected bool) {
	if connected == r.connected {
		return
	}
	r.connected = connected
	r.result.AddTrace(ActionSetConnected, map[string]interface{}{"connected": connected})
}
