package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/hookwatch/internal/config"
	"github.com/roach88/hookwatch/internal/history"
	"github.com/roach88/hookwatch/internal/kv"
	"github.com/roach88/hookwatch/internal/pager"
)

// cliFixture is a config file pointing at a file-backed store in a temp dir.
type cliFixture struct {
	statePath  string
	configPath string
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	t.Setenv(config.TokenEnv, "")

	dir := t.TempDir()
	fx := &cliFixture{
		statePath:  filepath.Join(dir, "state.json"),
		configPath: filepath.Join(dir, "hookwatch.yaml"),
	}
	doc := fmt.Sprintf(`store:
  dsn: file://%s
display:
  locale: en-GB
  timezone: UTC
`, fx.statePath)
	require.NoError(t, os.WriteFile(fx.configPath, []byte(doc), 0644))
	return fx
}

func (fx *cliFixture) backend() kv.Store {
	return kv.NewFile(fx.statePath)
}

// seed appends n deliveries, oldest first, so row 1 is session s-n.
func (fx *cliFixture) seed(t *testing.T, n int) {
	t.Helper()
	ctx := context.Background()
	store := history.New(fx.backend(), history.WithCapacity(history.AllCapacity))
	store.Hydrate(ctx)
	for i := 1; i <= n; i++ {
		rec := history.DeliveryRecord{
			SessionID: fmt.Sprintf("s-%d", i),
			Event:     "message",
			URL:       "https://hooks.example.com/in",
			Success:   i%2 == 1,
			Status:    history.IntPtr(200),
			Timestamp: fmt.Sprintf("2024-01-15T10:%02d:05.000Z", i%60),
			Payload:   json.RawMessage(fmt.Sprintf(`{"text":"hello %d"}`, i)),
		}
		if !rec.Success {
			rec.Status = history.IntPtr(500)
			rec.Response = json.RawMessage(`{"error":"upstream"}`)
		}
		store.Add(ctx, rec)
	}
}

func (fx *cliFixture) setPageSize(t *testing.T, raw string) {
	t.Helper()
	require.NoError(t, fx.backend().Set(context.Background(), pager.DefaultKey, []byte(raw)))
}

// run executes the root command with the fixture's config.
func (fx *cliFixture) run(args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", fx.configPath}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func decodeResponse(t *testing.T, out string, data interface{}) CLIResponse {
	t.Helper()
	resp := CLIResponse{Data: data}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp
}
