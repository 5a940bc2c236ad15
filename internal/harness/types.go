package harness

import "github.com/roach88/hookwatch/internal/gateway"

// TraceEvent is one observable effect of the replay, in order.
type TraceEvent struct {
	Seq    int                    `json:"seq"`
	Action string                 `json:"action"`
	Args   map[string]interface{} `json:"args,omitempty"`
}

// Trace actions.
const (
	ActionSetConnected   = "set_connected"
	ActionReload         = "reload"
	ActionPatchStatus    = "patch_status"
	ActionLog            = "log"
	ActionShowQR         = "show_qr"
	ActionMarkReady      = "mark_ready"
	ActionRecordWebhook  = "record_webhook"
	ActionHistoryChanged = "history_changed"
	ActionDropped        = "dropped"
)

// HistoryRow is one projected history row after the replay.
type HistoryRow struct {
	Index   int    `json:"index"`
	Session string `json:"session"`
	Event   string `json:"event"`
	URL     string `json:"url"`
	Status  string `json:"status"`
	Success bool   `json:"success"`
	Time    string `json:"time"`
}

// Result is the outcome of a scenario replay.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace lists collaborator calls in the order the loop made them.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// History is the whole retained history, newest first.
	History []HistoryRow `json:"history"`

	// Sessions is the final session board.
	Sessions []gateway.Session `json:"sessions"`

	// Connection is the final connection state.
	Connection string `json:"connection"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Trace:    []TraceEvent{},
		Errors:   []string{},
		History:  []HistoryRow{},
		Sessions: []gateway.Session{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an action to the trace.
func (r *Result) AddTrace(action string, args map[string]interface{}) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:    len(r.Trace) + 1,
		Action: action,
		Args:   args,
	})
}
