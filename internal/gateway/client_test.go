package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "tok", srv.Client(), WithBaseDelay(time.Millisecond))
}

func TestListSessions_Envelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sessions", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"s1","status":"connected"},{"id":"s2","status":"qr"}]}`))
	})

	sessions, err := c.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Session{{ID: "s1", Status: "connected"}, {ID: "s2", Status: "qr"}}, sessions)
}

func TestListSessions_BareArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"s1","status":"disconnected","name":"Sales"}]`))
	})

	sessions, err := c.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Sales", sessions[0].Name)
}

func TestListSessions_EnvelopeFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"not ready"}`))
	})

	_, err := c.ListSessions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ready")
}

func TestListSessions_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	sessions, err := c.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.Equal(t, int32(3), calls.Load())
}

func TestListSessions_RetriesTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestListSessions_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"success":false,"message":"upstream down"}`))
	}))
	defer srv.Close()
	c := NewClient(srv.URL, "", srv.Client(), WithMaxRetries(2), WithBaseDelay(time.Millisecond))

	_, err := c.ListSessions(context.Background())
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.Equal(t, "upstream down", httpErr.Message)
	assert.Equal(t, int32(3), calls.Load())
}

func TestListSessions_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.ListSessions(context.Background())
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Equal(t, "http 401", httpErr.Error())
	assert.Equal(t, int32(1), calls.Load())
}

func TestListSessions_NoTokenNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "  ", srv.Client()).ListSessions(context.Background())
	require.NoError(t, err)
}

func TestRetryDelay(t *testing.T) {
	c := NewClient("http://x", "", nil, WithBaseDelay(100*time.Millisecond))

	assert.Equal(t, 100*time.Millisecond, c.retryDelay(1, ""))
	assert.Equal(t, 200*time.Millisecond, c.retryDelay(2, ""))
	assert.Equal(t, 2*time.Second, c.retryDelay(1, "2"))
	assert.Equal(t, maxRetryDelay, c.retryDelay(1, "120"))
	assert.Equal(t, maxRetryDelay, c.retryDelay(30, ""))
}
