package livesync

import (
	"context"
	"fmt"
)

type fakeDirectory struct{ reloads int }

func (d *fakeDirectory) Reload(context.Context) { d.reloads++ }

type fakeStats struct{ results []bool }

func (s *fakeStats) RecordWebhook(success bool) { s.results = append(s.results, success) }

type fakeEvents struct{ lines []string }

func (e *fakeEvents) Log(level Level, source, text string) {
	e.lines = append(e.lines, fmt.Sprintf("%s|%s|%s", level, source, text))
}

type fakeBoard struct {
	statuses map[string]string
	patches  int
}

func (b *fakeBoard) PatchStatus(sessionID, status string) bool {
	if _, ok := b.statuses[sessionID]; !ok {
		return false
	}
	b.statuses[sessionID] = status
	b.patches++
	return true
}

type fakeDetail struct {
	active string
	open   bool
	qr     string
	ready  []string
}

func (d *fakeDetail) ActiveSession() (string, bool) { return d.active, d.open }
func (d *fakeDetail) ShowQR(_ string, qr string)     { d.qr = qr }
func (d *fakeDetail) MarkReady(sessionID string)    { d.ready = append(d.ready, sessionID) }

type fakeIndicator struct{ states []bool }

func (i *fakeIndicator) SetConnected(connected bool) { i.states = append(i.states, connected) }
