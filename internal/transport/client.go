// Package transport connects the dashboard to the gateway's push stream.
//
// The gateway speaks JSON text frames over a WebSocket:
//
//	{"event": "webhook:sent", "data": {...}}
//
// After every successful dial the client sends one subscribe frame carrying
// a client id that stays the same across reconnects, so the gateway can treat
// resubscription as idempotent. Events missed while disconnected are not
// replayed.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/roach88/hookwatch/internal/livesync"
)

// FrameSubscribe is the event name of the subscribe frame.
const FrameSubscribe = "subscribe"

const (
	defaultMinBackoff = 250 * time.Millisecond
	defaultMaxBackoff = 15 * time.Second
	defaultReadLimit  = 4 << 20
)

// Sink receives everything the transport observes. *livesync.Loop
// implements it.
type Sink interface {
	Publish(ev livesync.Event) bool
	NotifyConnect() bool
	NotifyDisconnect() bool
}

// IDGenerator produces the client id sent in the subscribe frame.
type IDGenerator interface {
	Generate() string
}

// Options configures a Client.
type Options struct {
	URL        string
	Token      string
	IDs        IDGenerator // default UUIDv7Generator
	HTTPClient *http.Client
	MinBackoff time.Duration
	MaxBackoff time.Duration
	Logger     *slog.Logger
}

// Client is a reconnecting push-stream client.
type Client struct {
	url        string
	token      string
	clientID   string
	httpClient *http.Client
	minBackoff time.Duration
	maxBackoff time.Duration
	logger     *slog.Logger
}

type subscribeData struct {
	ClientID string `json:"clientId"`
}

// NewClient validates opts and creates a Client.
// The URL may use ws, wss, http or https.
func NewClient(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.URL)
	if raw == "" {
		return nil, fmt.Errorf("push url is required")
	}
	switch {
	case strings.HasPrefix(raw, "http://"):
		raw = "ws://" + strings.TrimPrefix(raw, "http://")
	case strings.HasPrefix(raw, "https://"):
		raw = "wss://" + strings.TrimPrefix(raw, "https://")
	case strings.HasPrefix(raw, "ws://"), strings.HasPrefix(raw, "wss://"):
	default:
		return nil, fmt.Errorf("unsupported push url %q", opts.URL)
	}

	ids := opts.IDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	c := &Client{
		url:        raw,
		token:      strings.TrimSpace(opts.Token),
		clientID:   ids.Generate(),
		httpClient: opts.HTTPClient,
		minBackoff: opts.MinBackoff,
		maxBackoff: opts.MaxBackoff,
		logger:     opts.Logger,
	}
	if c.minBackoff <= 0 {
		c.minBackoff = defaultMinBackoff
	}
	if c.maxBackoff < c.minBackoff {
		c.maxBackoff = defaultMaxBackoff
		if c.maxBackoff < c.minBackoff {
			c.maxBackoff = c.minBackoff
		}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// ClientID returns the id sent with every subscribe frame.
func (c *Client) ClientID() string {
	return c.clientID
}

// Run connects and reconnects until ctx is done, forwarding frames to sink.
// Always returns ctx.Err().
func (c *Client) Run(ctx context.Context, sink Sink) error {
	attempt := 0
	for {
		connected, err := c.session(ctx, sink)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			attempt = 0
		}
		attempt++
		delay := c.backoff(attempt)
		c.logger.Warn("push stream unavailable, retrying", "url", c.url, "retry_in", delay, "error", err)
		if waitErr := waitWithContext(ctx, delay); waitErr != nil {
			return waitErr
		}
	}
}

// session runs one connection. connected reports whether the dial succeeded.
func (c *Client) session(ctx context.Context, sink Sink) (connected bool, err error) {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}
	conn, _, err := websocket.Dial(ctx, c.url, &websocket.DialOptions{
		HTTPClient: c.httpClient,
		HTTPHeader: header,
	})
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	conn.SetReadLimit(defaultReadLimit)

	sub, err := livesync.NewEvent(FrameSubscribe, subscribeData{ClientID: c.clientID})
	if err != nil {
		return true, err
	}
	if err := wsjson.Write(ctx, conn, sub); err != nil {
		return true, fmt.Errorf("subscribe: %w", err)
	}

	sink.NotifyConnect()
	defer sink.NotifyDisconnect()
	c.logger.Debug("subscribed to push stream", "url", c.url, "client_id", c.clientID)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return true, fmt.Errorf("read: %w", err)
		}
		if typ != websocket.MessageText {
			continue
		}
		var ev livesync.Event
		if err := json.Unmarshal(data, &ev); err != nil || ev.Name == "" {
			c.logger.Warn("ignoring malformed push frame", "bytes", len(data), "error", err)
			continue
		}
		if !sink.Publish(ev) {
			return true, errSinkClosed
		}
	}
}

var errSinkClosed = errors.New("sink closed")

// backoff returns the delay before reconnect attempt n (1-based).
func (c *Client) backoff(n int) time.Duration {
	delay := c.minBackoff
	for i := 1; i < n && delay < c.maxBackoff; i++ {
		delay *= 2
	}
	if delay > c.maxBackoff {
		delay = c.maxBackoff
	}
	return delay
}

func waitWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
