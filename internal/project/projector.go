package project

import (
	"fmt"
	"time"

	"github.com/roach88/hookwatch/internal/history"
)

// Placeholder is shown for absent values.
const Placeholder = history.Unknown

// invalidTime matches what browsers print for an unparseable date.
const invalidTime = "Invalid Date"

// Row is one line of the history table.
type Row struct {
	Index     int    `json:"index"` // position in the history, 0 is newest
	SessionID string `json:"sessionId"`
	Event     string `json:"event"`
	URL       string `json:"url"`
	Status    string `json:"status"`
	Success   bool   `json:"success"`
	Time      string `json:"time"`
}

// Detail is the full view of one delivery.
type Detail struct {
	SessionID string `json:"sessionId"`
	Event     string `json:"event"`
	Status    string `json:"status"`
	Success   bool   `json:"success"`
	Time      string `json:"time"`
	URL       string `json:"url"`
	Payload   string `json:"payload"`
	Response  string `json:"response"`
}

// Projector renders records for display.
type Projector struct {
	locale   Locale
	location *time.Location
	now      func() time.Time
}

// Option configures a Projector.
type Option func(*Projector)

// WithLocale selects the date layout by BCP 47 tag.
func WithLocale(tag string) Option {
	return func(p *Projector) {
		p.locale = LocaleFor(tag)
	}
}

// WithLocation sets the time zone timestamps are shown in.
// Default: time.Local.
func WithLocation(loc *time.Location) Option {
	return func(p *Projector) {
		if loc != nil {
			p.location = loc
		}
	}
}

// WithClock sets the clock used for records without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(p *Projector) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a Projector with DefaultLocale in the local time zone.
func New(opts ...Option) *Projector {
	p := &Projector{
		locale:   DefaultLocale,
		location: time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Locale returns the active locale.
func (p *Projector) Locale() Locale {
	return p.locale
}

// Row projects the record at history index into a table row.
func (p *Projector) Row(index int, rec history.DeliveryRecord) Row {
	return Row{
		Index:     index,
		SessionID: rec.ResolvedSessionID(),
		Event:     orPlaceholder(rec.Event),
		URL:       orPlaceholder(rec.URL),
		Status:    StatusLabel(rec),
		Success:   rec.Success,
		Time:      p.formatTime(rec, p.locale.RowLayout),
	}
}

// Rows projects a window whose first record sits at history index start.
func (p *Projector) Rows(start int, recs []history.DeliveryRecord) []Row {
	rows := make([]Row, len(recs))
	for i, rec := range recs {
		rows[i] = p.Row(start+i, rec)
	}
	return rows
}

// Detail projects a record into the detail view.
func (p *Projector) Detail(rec history.DeliveryRecord) Detail {
	return Detail{
		SessionID: rec.ResolvedSessionID(),
		Event:     orPlaceholder(rec.Event),
		Status:    StatusLabel(rec),
		Success:   rec.Success,
		Time:      p.formatTime(rec, p.locale.FullLayout),
		URL:       orPlaceholder(rec.URL),
		Payload:   NormalizePayload(rec.Payload),
		Response:  NormalizeResponse(rec),
	}
}

// StatusLabel is "HTTP <status>" when a status code is present, otherwise
// "Success" or "Failed".
func StatusLabel(rec history.DeliveryRecord) string {
	if rec.HasStatus() {
		return fmt.Sprintf("HTTP %d", *rec.Status)
	}
	if rec.Success {
		return "Success"
	}
	return "Failed"
}

func (p *Projector) formatTime(rec history.DeliveryRecord, layout string) string {
	if rec.Timestamp == "" {
		return p.now().In(p.location).Format(layout)
	}
	t, ok := rec.Time()
	if !ok {
		return invalidTime
	}
	return t.In(p.location).Format(layout)
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
