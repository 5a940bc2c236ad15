package livesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/hookwatch/internal/history"
)

// ErrMalformedEvent is returned by Handle when a payload cannot be decoded.
var ErrMalformedEvent = errors.New("malformed event payload")

// ConnectionState is the push transport's connection state.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connected
)

func (s ConnectionState) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Collaborators are the consumer's outbound dependencies. Nil fields are
// replaced by no-ops.
type Collaborators struct {
	Directory SessionDirectory
	Stats     StatisticsAggregator
	Events    EventLogger
	Board     SessionBoard
	Detail    DetailSurface
	Indicator StatusIndicator
}

// Consumer routes push events to the history store and the dashboard
// collaborators.
//
// Not safe for concurrent use; drive it through Loop.
type Consumer struct {
	history   *history.Store
	directory SessionDirectory
	stats     StatisticsAggregator
	events    EventLogger
	board     SessionBoard
	detail    DetailSurface
	indicator StatusIndicator
	logger    *slog.Logger
	state     ConnectionState
}

// NewConsumer creates a Consumer in the Disconnected state.
func NewConsumer(store *history.Store, c Collaborators, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	consumer := &Consumer{
		history:   store,
		directory: c.Directory,
		stats:     c.Stats,
		events:    c.Events,
		board:     c.Board,
		detail:    c.Detail,
		indicator: c.Indicator,
		logger:    logger,
	}
	if consumer.directory == nil {
		consumer.directory = nopDirectory{}
	}
	if consumer.stats == nil {
		consumer.stats = nopStats{}
	}
	if consumer.events == nil {
		consumer.events = nopEvents{}
	}
	if consumer.board == nil {
		consumer.board = nopBoard{}
	}
	if consumer.detail == nil {
		consumer.detail = nopDetail{}
	}
	if consumer.indicator == nil {
		consumer.indicator = nopIndicator{}
	}
	return consumer
}

// State returns the current connection state.
func (c *Consumer) State() ConnectionState {
	return c.state
}

// Connect records a transport connect notification.
func (c *Consumer) Connect() {
	if c.state != Connected {
		c.logger.Info("connected to gateway push stream")
	}
	c.state = Connected
	c.indicator.SetConnected(true)
}

// Disconnect records a transport disconnect notification.
func (c *Consumer) Disconnect() {
	if c.state != Disconnected {
		c.logger.Info("disconnected from gateway push stream")
	}
	c.state = Disconnected
	c.indicator.SetConnected(false)
}

// Handle routes one push event. Unknown events are ignored (nil error).
// The returned error is informational: the event was dropped and the
// caller should log it.
func (c *Consumer) Handle(ctx context.Context, ev Event) error {
	switch ev.Name {
	case EventSessionCreated:
		var p sessionPayload
		if err := decode(ev, &p); err != nil {
			return err
		}
		c.directory.Reload(ctx)
		c.events.Log(LevelInfo, "System", fmt.Sprintf("New session created: %s", p.SessionID))

	case EventSessionDeleted:
		var p sessionPayload
		if err := decode(ev, &p); err != nil {
			return err
		}
		c.directory.Reload(ctx)
		c.events.Log(LevelWarning, "System", fmt.Sprintf("Session deleted: %s", p.SessionID))

	case EventSessionStatus:
		var p statusPayload
		if err := decode(ev, &p); err != nil {
			return err
		}
		if !c.board.PatchStatus(p.SessionID, p.Status) {
			c.logger.Debug("no session element to patch", "session", p.SessionID, "status", p.Status)
		}
		c.directory.Reload(ctx)

	case EventSessionQR:
		var p qrPayload
		if err := decode(ev, &p); err != nil {
			return err
		}
		if c.isActive(p.SessionID) {
			c.detail.ShowQR(p.SessionID, p.QR)
		}
		c.events.Log(LevelInfo, p.SessionID, "QR Code received")

	case EventSessionReady:
		var p sessionPayload
		if err := decode(ev, &p); err != nil {
			return err
		}
		if !c.isActive(p.SessionID) {
			c.logger.Debug("session ready with no open detail view", "session", p.SessionID)
			return nil
		}
		c.detail.MarkReady(p.SessionID)
		c.events.Log(LevelSuccess, p.SessionID, fmt.Sprintf("%s Connected!", p.SessionID))
		c.directory.Reload(ctx)

	case EventWebhookSent:
		if len(ev.Data) == 0 {
			return fmt.Errorf("%w: %s: empty data", ErrMalformedEvent, ev.Name)
		}
		rec, err := history.DecodeDelivery(ev.Data)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedEvent, ev.Name, err)
		}
		c.history.Add(ctx, rec)
		c.stats.RecordWebhook(rec.Success)

	case EventLog:
		var p logPayload
		if err := decode(ev, &p); err != nil {
			return err
		}
		level := Level(p.Type)
		if level == "" {
			level = LevelInfo
		}
		c.events.Log(level, p.SessionID, p.Text)

	default:
		c.logger.Debug("ignoring unrecognized event", "event", ev.Name)
	}
	return nil
}

func (c *Consumer) isActive(sessionID string) bool {
	active, open := c.detail.ActiveSession()
	return open && active == sessionID
}

func decode(ev Event, v any) error {
	if len(ev.Data) == 0 {
		return fmt.Errorf("%w: %s: empty data", ErrMalformedEvent, ev.Name)
	}
	if err := json.Unmarshal(ev.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedEvent, ev.Name, err)
	}
	return nil
}

type nopDirectory struct{}

func (nopDirectory) Reload(context.Context) {}

type nopStats struct{}

func (nopStats) RecordWebhook(bool) {}

type nopEvents struct{}

func (nopEvents) Log(Level, string, string) {}

type nopBoard struct{}

func (nopBoard) PatchStatus(string, string) bool { return false }

type nopDetail struct{}

func (nopDetail) ActiveSession() (string, bool) { return "", false }
func (nopDetail) ShowQR(string, string)         {}
func (nopDetail) MarkReady(string)              {}

type nopIndicator struct{}

func (nopIndicator) SetConnected(bool) {}
