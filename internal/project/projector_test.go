package project

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/hookwatch/internal/history"
)

var jakarta = time.FixedZone("WIB", 7*60*60)

func newTestProjector(opts ...Option) *Projector {
	frozen := func() time.Time { return time.Date(2026, 10, 18, 1, 2, 3, 0, time.UTC) }
	base := []Option{WithLocation(jakarta), WithClock(frozen)}
	return New(append(base, opts...)...)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "HTTP 404", StatusLabel(history.DeliveryRecord{Status: history.IntPtr(404), Success: false}))
	assert.Equal(t, "Success", StatusLabel(history.DeliveryRecord{Success: true}))
	assert.Equal(t, "Failed", StatusLabel(history.DeliveryRecord{}))
	assert.Equal(t, "Success", StatusLabel(history.DeliveryRecord{Status: history.IntPtr(0), Success: true}))
}

func TestRow(t *testing.T) {
	p := newTestProjector()
	rec := history.DeliveryRecord{
		Payload:   json.RawMessage(`{"sessionId":"sales-01"}`),
		Event:     "message.received",
		Success:   true,
		Status:    history.IntPtr(200),
		Timestamp: "2026-10-18T09:30:45.123Z",
	}

	assert.Equal(t, Row{
		Index:     3,
		SessionID: "sales-01",
		Event:     "message.received",
		URL:       "-",
		Status:    "HTTP 200",
		Success:   true,
		Time:      "18/10/2026, 16.30",
	}, p.Row(3, rec))
}

func TestRows_IndexesFromStart(t *testing.T) {
	p := newTestProjector()
	rows := p.Rows(20, []history.DeliveryRecord{{Event: "a"}, {Event: "b"}})

	assert.Equal(t, 20, rows[0].Index)
	assert.Equal(t, 21, rows[1].Index)
}

func TestDetail(t *testing.T) {
	p := newTestProjector()
	rec := history.DeliveryRecord{
		SessionID: "sales-01",
		Event:     "message.received",
		URL:       "https://hooks.example.com/in",
		Success:   false,
		Timestamp: "2026-10-18T09:30:45.123Z",
		Payload:   json.RawMessage(`{"text":"hi"}`),
		Response:  json.RawMessage(`"bad gateway"`),
	}

	assert.Equal(t, Detail{
		SessionID: "sales-01",
		Event:     "message.received",
		Status:    "Failed",
		Success:   false,
		Time:      "18/10/2026, 16.30.45",
		URL:       "https://hooks.example.com/in",
		Payload:   "{\n  \"text\": \"hi\"\n}",
		Response:  "bad gateway",
	}, p.Detail(rec))
}

func TestFormatTime_MissingAndInvalid(t *testing.T) {
	p := newTestProjector()

	assert.Equal(t, "18/10/2026, 08.02", p.Row(0, history.DeliveryRecord{}).Time, "missing timestamp uses now")
	assert.Equal(t, "Invalid Date", p.Row(0, history.DeliveryRecord{Timestamp: "soon"}).Time)
}

func TestLocales(t *testing.T) {
	rec := history.DeliveryRecord{Timestamp: "2026-03-04T05:06:07.000Z"}

	us := newTestProjector(WithLocale("en-US"), WithLocation(time.UTC))
	assert.Equal(t, "03/04/2026, 05:06", us.Row(0, rec).Time)

	gb := newTestProjector(WithLocale("en-GB"), WithLocation(time.UTC))
	assert.Equal(t, "04/03/2026, 05:06:07", gb.Detail(rec).Time)

	id := newTestProjector(WithLocale("id-ID"), WithLocation(time.UTC))
	assert.Equal(t, "04/03/2026, 05.06", id.Row(0, rec).Time)
}

func TestLocaleFor_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultLocale.RowLayout, LocaleFor("!!not a tag").RowLayout)
	assert.Equal(t, DefaultLocale.RowLayout, LocaleFor("").RowLayout)
}
