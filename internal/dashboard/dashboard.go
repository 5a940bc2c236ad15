// Package dashboard is the text rendering of the operations dashboard.
//
// A Dashboard owns no data of its own beyond what the browser page kept in
// the DOM: the session board, the connection indicator, the open QR dialog
// and the event-log panel. Webhook history comes from history.Store through
// the Paginator's current window.
//
// All methods must be called from the livesync.Loop goroutine.
package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/roach88/hookwatch/internal/gateway"
	"github.com/roach88/hookwatch/internal/history"
	"github.com/roach88/hookwatch/internal/livesync"
	"github.com/roach88/hookwatch/internal/pager"
	"github.com/roach88/hookwatch/internal/project"
	"github.com/roach88/hookwatch/internal/stats"
)

// DefaultEventLimit bounds the event-log panel.
const DefaultEventLimit = 50

// EmptyHistory is shown instead of the table when there is no history.
const EmptyHistory = "No webhook history yet. Webhooks will appear here in real-time."

// TotalsSource supplies the webhook counters shown in the header.
type TotalsSource interface {
	Totals() stats.Totals
}

type logLine struct {
	at     time.Time
	level  livesync.Level
	source string
	text   string
}

// Dashboard renders the whole screen to an io.Writer on every change.
type Dashboard struct {
	out       io.Writer
	store     *history.Store
	pager     *pager.Paginator
	projector *project.Projector
	totals    TotalsSource
	logger    *slog.Logger
	now       func() time.Time
	location  *time.Location
	limit     int

	connected bool
	sessions  []gateway.Session
	active    string
	qr        string
	events    []logLine
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithTotals shows webhook counters in the header.
func WithTotals(src TotalsSource) Option {
	return func(d *Dashboard) {
		d.totals = src
	}
}

// WithClock sets the clock used to stamp event-log lines.
func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) {
		if now != nil {
			d.now = now
		}
	}
}

// WithLocation sets the time zone of event-log stamps.
func WithLocation(loc *time.Location) Option {
	return func(d *Dashboard) {
		if loc != nil {
			d.location = loc
		}
	}
}

// WithEventLimit bounds the event-log panel to n lines.
func WithEventLimit(n int) Option {
	return func(d *Dashboard) {
		if n > 0 {
			d.limit = n
		}
	}
}

// WithLogger sets the logger for write failures.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dashboard) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a Dashboard and installs it as pg's renderer.
func New(out io.Writer, store *history.Store, pg *pager.Paginator, projector *project.Projector, opts ...Option) *Dashboard {
	d := &Dashboard{
		out:       out,
		store:     store,
		pager:     pg,
		projector: projector,
		logger:    slog.Default(),
		now:       time.Now,
		location:  time.Local,
		limit:     DefaultEventLimit,
	}
	for _, opt := range opts {
		opt(d)
	}
	pg.SetRenderer(d)
	return d
}

// Render redraws the screen. It implements pager.Renderer.
func (d *Dashboard) Render() {
	if err := d.RenderTo(d.out); err != nil {
		d.logger.Warn("failed to render dashboard", "error", err)
	}
}

// RenderTo writes the screen to w.
func (d *Dashboard) RenderTo(w io.Writer) error {
	var buf bytes.Buffer
	d.writeHeader(&buf)
	buf.WriteString("\n")
	d.writeSessions(&buf)
	buf.WriteString("\n")
	d.writeHistory(&buf)
	buf.WriteString("\n")
	d.writeEvents(&buf)
	_, err := w.Write(buf.Bytes())
	return err
}

func (d *Dashboard) writeHeader(buf *bytes.Buffer) {
	buf.WriteString("hookwatch  ")
	buf.WriteString(indicatorLabel(d.connected))
	if d.totals != nil {
		t := d.totals.Totals()
		fmt.Fprintf(buf, "  sent %d  success %d  failed %d", t.Sent, t.Success, t.Failed)
	}
	buf.WriteString("\n")
	if d.active != "" {
		if d.qr == "" {
			fmt.Fprintf(buf, "QR %s: waiting for code\n", d.active)
		} else {
			fmt.Fprintf(buf, "QR %s: %s\n", d.active, d.qr)
		}
	}
}

func (d *Dashboard) writeSessions(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "SESSIONS (%d)\n", len(d.sessions))
	if len(d.sessions) == 0 {
		buf.WriteString("No sessions.\n")
		return
	}
	tw := tabwriter.NewWriter(buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS")
	for _, s := range d.sessions {
		fmt.Fprintf(tw, "%s\t%s\n", s.ID, s.Status)
	}
	_ = tw.Flush()
}

func (d *Dashboard) writeHistory(buf *bytes.Buffer) {
	buf.WriteString("WEBHOOK HISTORY\n")
	_ = WriteTable(buf, d.projector.Rows(d.pager.WindowStart(), d.pager.Window()))
	buf.WriteString(PagerLine(d.pager.State()))
	buf.WriteString("\n")
}

// WriteTable writes the history table for rows, or the empty-state line.
// Row numbers are 1-based history positions.
func WriteTable(w io.Writer, rows []project.Row) error {
	if len(rows) == 0 {
		_, err := io.WriteString(w, EmptyHistory+"\n")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSESSION\tEVENT\tURL\tSTATUS\tTIME")
	for _, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			row.Index+1, row.SessionID, row.Event, row.URL, row.Status, row.Time)
	}
	return tw.Flush()
}

func (d *Dashboard) writeEvents(buf *bytes.Buffer) {
	buf.WriteString("EVENTS\n")
	if len(d.events) == 0 {
		buf.WriteString("No events.\n")
		return
	}
	for _, e := range d.events {
		fmt.Fprintf(buf, "%s [%s] %s: %s\n", e.at.In(d.location).Format("15:04:05"), e.level, e.source, e.text)
	}
}

// PagerLine renders the pager controls. Disabled buttons are dashed out.
func PagerLine(s pager.State) string {
	return fmt.Sprintf("%s %s Page %d of %d %s %s (%d total)",
		button("<<", !s.IsFirst),
		button("<", !s.IsFirst),
		s.CurrentPage+1,
		s.TotalPages,
		button(">", !s.IsLast),
		button(">>", !s.IsLast),
		s.TotalRecords,
	)
}

func button(label string, enabled bool) string {
	if !enabled {
		label = strings.Repeat("-", len(label))
	}
	return "[" + label + "]"
}

func indicatorLabel(connected bool) string {
	if connected {
		return "WebSocket Connected"
	}
	return "WebSocket Disconnected"
}

// SetConnected updates the connection indicator. Repeated calls with the
// same value do nothing.
func (d *Dashboard) SetConnected(connected bool) {
	if d.connected == connected {
		return
	}
	d.connected = connected
	d.Render()
}

// Connected reports the indicator state.
func (d *Dashboard) Connected() bool {
	return d.connected
}

// ReplaceSessions swaps the whole session board.
func (d *Dashboard) ReplaceSessions(sessions []gateway.Session) {
	d.sessions = append(d.sessions[:0:0], sessions...)
	d.Render()
}

// PatchStatus updates the status of one displayed session in place.
func (d *Dashboard) PatchStatus(sessionID, status string) bool {
	for i := range d.sessions {
		if d.sessions[i].ID == sessionID {
			d.sessions[i].Status = status
			d.Render()
			return true
		}
	}
	return false
}

// Sessions returns a copy of the session board.
func (d *Dashboard) Sessions() []gateway.Session {
	return append([]gateway.Session(nil), d.sessions...)
}

// OpenSession opens the QR pairing dialog for sessionID.
func (d *Dashboard) OpenSession(sessionID string) {
	d.active = sessionID
	d.qr = ""
	d.Render()
}

// CloseSession closes the QR pairing dialog.
func (d *Dashboard) CloseSession() {
	if d.active == "" {
		return
	}
	d.active = ""
	d.qr = ""
	d.Render()
}

// ActiveSession returns the session whose dialog is open.
func (d *Dashboard) ActiveSession() (string, bool) {
	return d.active, d.active != ""
}

// ShowQR displays qr in the open dialog if it belongs to sessionID.
func (d *Dashboard) ShowQR(sessionID, qr string) {
	if d.active != sessionID {
		return
	}
	d.qr = qr
	d.Render()
}

// MarkReady closes the dialog and announces the session.
func (d *Dashboard) MarkReady(sessionID string) {
	if d.active != sessionID {
		return
	}
	d.active = ""
	d.qr = ""
	if _, err := fmt.Fprintf(d.out, "%s Connected!\n", sessionID); err != nil {
		d.logger.Warn("failed to write to dashboard", "error", err)
	}
	d.Render()
}

// Log appends a line to the event-log panel, dropping the oldest line past
// the limit.
func (d *Dashboard) Log(level livesync.Level, source, text string) {
	d.events = append(d.events, logLine{at: d.now(), level: level, source: source, text: text})
	if over := len(d.events) - d.limit; over > 0 {
		d.events = append(d.events[:0], d.events[over:]...)
	}
	d.Render()
}

// EventCount returns the number of lines in the event-log panel.
func (d *Dashboard) EventCount() int {
	return len(d.events)
}
