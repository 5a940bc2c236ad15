package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/roach88/hookwatch/internal/livesync"
	"github.com/roach88/hookwatch/internal/testutil"
)

type recordingSink struct {
	mu          sync.Mutex
	events      []livesync.Event
	connects    int
	disconnects int
}

func (s *recordingSink) Publish(ev livesync.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return true
}

func (s *recordingSink) NotifyConnect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connects++
	return true
}

func (s *recordingSink) NotifyDisconnect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnects++
	return true
}

func (s *recordingSink) snapshot() ([]livesync.Event, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]livesync.Event, len(s.events))
	copy(out, s.events)
	return out, s.connects, s.disconnects
}

type subscription struct {
	ClientID      string
	Authorization string
}

// newPushServer accepts a connection, records its subscribe frame, sends
// frames and then closes the connection.
func newPushServer(t *testing.T, frames ...string) (*httptest.Server, <-chan subscription) {
	t.Helper()
	subs := make(chan subscription, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "done")

		ctx := r.Context()
		var sub livesync.Event
		if err := wsjson.Read(ctx, conn, &sub); err != nil || sub.Name != FrameSubscribe {
			return
		}
		var data subscribeData
		_ = json.Unmarshal(sub.Data, &data)

		for _, frame := range frames {
			if err := conn.Write(ctx, websocket.MessageText, []byte(frame)); err != nil {
				return
			}
		}
		subs <- subscription{ClientID: data.ClientID, Authorization: r.Header.Get("Authorization")}
	}))
	t.Cleanup(srv.Close)
	return srv, subs
}

func receive(t *testing.T, ch <-chan subscription) subscription {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for subscribe frame")
		return subscription{}
	}
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient(Options{})
	require.Error(t, err)
}

func TestNewClient_RejectsUnknownScheme(t *testing.T) {
	_, err := NewClient(Options{URL: "ftp://example.com/ws"})
	require.Error(t, err)
}

func TestNewClient_NormalizesHTTPScheme(t *testing.T) {
	c, err := NewClient(Options{URL: "https://gw.example.com/ws"})
	require.NoError(t, err)
	assert.Equal(t, "wss://gw.example.com/ws", c.url)

	c, err = NewClient(Options{URL: "http://localhost:3000/ws"})
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:3000/ws", c.url)
}

func TestNewClient_DefaultClientIDIsUUIDv7(t *testing.T) {
	c, err := NewClient(Options{URL: "ws://localhost/ws"})
	require.NoError(t, err)
	assert.Len(t, c.ClientID(), 36)
	assert.Equal(t, byte('7'), c.ClientID()[14], "version nibble")
}

func TestClient_Backoff(t *testing.T) {
	c, err := NewClient(Options{
		URL:        "ws://localhost/ws",
		MinBackoff: 100 * time.Millisecond,
		MaxBackoff: time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, 100*time.Millisecond, c.backoff(1))
	assert.Equal(t, 200*time.Millisecond, c.backoff(2))
	assert.Equal(t, 400*time.Millisecond, c.backoff(3))
	assert.Equal(t, 800*time.Millisecond, c.backoff(4))
	assert.Equal(t, time.Second, c.backoff(5))
	assert.Equal(t, time.Second, c.backoff(50))
}

func TestClient_ForwardsFramesAndResubscribesWithSameID(t *testing.T) {
	srv, subs := newPushServer(t,
		`{"event":"webhook:sent","data":{"sessionId":"s1","success":true}}`,
		`not json`,
		`{"data":{}}`,
		`{"event":"event:log","data":{"sessionId":"s1","text":"hi"}}`,
	)

	var logs bytes.Buffer
	c, err := NewClient(Options{
		URL:        "ws" + strings.TrimPrefix(srv.URL, "http"),
		Token:      "secret",
		IDs:        testutil.NewFixedIDGenerator("client-1"),
		MinBackoff: 10 * time.Millisecond,
		MaxBackoff: 20 * time.Millisecond,
		Logger:     slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, err)

	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, sink) }()

	first := receive(t, subs)
	second := receive(t, subs)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.Equal(t, "client-1", first.ClientID)
	assert.Equal(t, "client-1", second.ClientID)
	assert.Equal(t, "Bearer secret", first.Authorization)

	events, connects, disconnects := sink.snapshot()
	assert.GreaterOrEqual(t, connects, 2)
	assert.GreaterOrEqual(t, disconnects, 1)

	// Two good frames per connection; malformed frames are skipped.
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, livesync.EventWebhookSent, events[0].Name)
	assert.Equal(t, livesync.EventLog, events[1].Name)
	assert.Contains(t, logs.String(), "ignoring malformed push frame")
}

func TestClient_RunReturnsWhenServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	c, err := NewClient(Options{
		URL:        url,
		MinBackoff: 5 * time.Millisecond,
		MaxBackoff: 10 * time.Millisecond,
		Logger:     slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
	require.NoError(t, err)

	sink := &recordingSink{}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = c.Run(ctx, sink)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, connects, disconnects := sink.snapshot()
	assert.Zero(t, connects)
	assert.Zero(t, disconnects)
}
