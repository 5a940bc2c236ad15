package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/hookwatch/internal/kv"
	"github.com/roach88/hookwatch/internal/testutil"
)

var testStart = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

// createTestBackend opens a SQLite kv store under t.TempDir().
func createTestBackend(t *testing.T) *kv.SQLite {
	t.Helper()
	s, err := kv.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestStore builds a Store with a deterministic clock and a captured log.
func createTestStore(t *testing.T, backend kv.Store, opts ...Option) (*Store, *bytes.Buffer) {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	base := []Option{
		WithClock(testutil.NewDeterministicClock(testStart, time.Second).Now),
		WithLogger(logger),
	}
	return New(backend, append(base, opts...)...), logs
}

// delivery builds a record whose event name encodes n, so eviction order is
// easy to assert.
func delivery(n int) DeliveryRecord {
	return DeliveryRecord{
		SessionID: "s1",
		Event:     fmt.Sprintf("message-%d", n),
		URL:       "https://hooks.example.com/in",
		Success:   true,
		Status:    IntPtr(200),
		Payload:   json.RawMessage(fmt.Sprintf(`{"n":%d}`, n)),
	}
}
