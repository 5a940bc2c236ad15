package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hookwatch/internal/dashboard"
	"github.com/roach88/hookwatch/internal/project"
)

func TestHistoryCommand_Text(t *testing.T) {
	fx := newCLIFixture(t)
	fx.seed(t, 3)

	out, err := fx.run("history")
	require.NoError(t, err)

	assert.Contains(t, out, "#  SESSION  EVENT    URL                           STATUS    TIME\n")
	assert.Contains(t, out, "1  s-3      message  https://hooks.example.com/in  HTTP 200  15/01/2024, 10:03\n")
	assert.Contains(t, out, "2  s-2      message  https://hooks.example.com/in  HTTP 500  15/01/2024, 10:02\n")
	assert.Contains(t, out, "[--] [-] Page 1 of 1 [-] [--] (3 total)\n")
}

func TestHistoryCommand_Empty(t *testing.T) {
	fx := newCLIFixture(t)

	out, err := fx.run("history")
	require.NoError(t, err)
	assert.Contains(t, out, dashboard.EmptyHistory)
	assert.Contains(t, out, "Page 1 of 1")
	assert.Contains(t, out, "(0 total)")
}

func TestHistoryCommand_JSONSecondPage(t *testing.T) {
	fx := newCLIFixture(t)
	fx.setPageSize(t, "10")
	fx.seed(t, 12)

	out, err := fx.run("history", "--page", "2", "--format", "json")
	require.NoError(t, err)

	var page HistoryPage
	resp := decodeResponse(t, out, &page)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 12, page.TotalRecords)
	assert.Equal(t, "10", page.PageSize)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, 10, page.Rows[0].Index)
	assert.Equal(t, "s-2", page.Rows[0].SessionID)
	assert.Equal(t, "s-1", page.Rows[1].SessionID)
}

func TestHistoryCommand_PageIsClamped(t *testing.T) {
	fx := newCLIFixture(t)
	fx.seed(t, 3)

	out, err := fx.run("history", "--page", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "Page 1 of 1")
}

func TestHistoryCommand_InvalidPage(t *testing.T) {
	fx := newCLIFixture(t)

	_, err := fx.run("history", "--page", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestHistoryCommand_BadStore(t *testing.T) {
	fx := newCLIFixture(t)

	out, err := fx.run("--store", "redis://localhost", "history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E020]: failed to open store")
}

func TestShowCommand_Text(t *testing.T) {
	fx := newCLIFixture(t)
	fx.seed(t, 2)

	out, err := fx.run("show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "WEBHOOK DETAIL\n")
	assert.Contains(t, out, "Session:  s-2\n")
	assert.Contains(t, out, "Status:   HTTP 500\n")
	assert.Contains(t, out, "Time:     15/01/2024, 10:02:05\n")
	assert.Contains(t, out, `"text": "hello 2"`)
	assert.Contains(t, out, `"error": "upstream"`)
}

func TestShowCommand_JSON(t *testing.T) {
	fx := newCLIFixture(t)
	fx.seed(t, 2)

	out, err := fx.run("show", "2", "--format", "json")
	require.NoError(t, err)

	var detail project.Detail
	decodeResponse(t, out, &detail)
	assert.Equal(t, "s-1", detail.SessionID)
	assert.Equal(t, "HTTP 200", detail.Status)
	assert.True(t, detail.Success)
}

func TestShowCommand_NotFound(t *testing.T) {
	fx := newCLIFixture(t)
	fx.seed(t, 2)

	out, err := fx.run("show", "3")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]: no delivery at row 3 (2 in history)")
}

func TestShowCommand_InvalidRow(t *testing.T) {
	fx := newCLIFixture(t)

	_, err := fx.run("show", "first")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestClearCommand_RequiresConfirmation(t *testing.T) {
	fx := newCLIFixture(t)
	fx.seed(t, 2)

	_, err := fx.run("clear")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := fx.run("history")
	require.NoError(t, err)
	assert.Contains(t, out, "(2 total)")
}

func TestClearCommand(t *testing.T) {
	fx := newCLIFixture(t)
	fx.setPageSize(t, "25")
	fx.seed(t, 4)

	out, err := fx.run("clear", "--yes")
	require.NoError(t, err)
	assert.Equal(t, "Cleared 4 deliveries\n", out)

	out, err = fx.run("history")
	require.NoError(t, err)
	assert.Contains(t, out, dashboard.EmptyHistory)

	// The page-size preference survives a clear.
	out, err = fx.run("page-size")
	require.NoError(t, err)
	assert.Contains(t, out, "Page size is 25")
}

func TestClearCommand_JSON(t *testing.T) {
	fx := newCLIFixture(t)
	fx.seed(t, 3)

	out, err := fx.run("clear", "-y", "--format", "json")
	require.NoError(t, err)

	var result ClearResult
	decodeResponse(t, out, &result)
	assert.Equal(t, 3, result.Cleared)
}

func TestPageSizeCommand(t *testing.T) {
	fx := newCLIFixture(t)
	fx.seed(t, 3)

	out, err := fx.run("page-size")
	require.NoError(t, err)
	assert.Equal(t, "Page size is 50 (keeping up to 500 deliveries, 3 stored)\n", out)

	out, err = fx.run("page-size", "25")
	require.NoError(t, err)
	assert.Equal(t, "Page size set to 25 (keeping up to 250 deliveries, 3 stored)\n", out)

	out, err = fx.run("page-size", "--format", "json")
	require.NoError(t, err)
	var result PageSizeResult
	decodeResponse(t, out, &result)
	assert.Equal(t, PageSizeResult{PageSize: "25", Capacity: 250, Records: 3}, result)
}

func TestPageSizeCommand_ShrinkEvictsOldest(t *testing.T) {
	fx := newCLIFixture(t)
	fx.setPageSize(t, "all")
	fx.seed(t, 120)

	out, err := fx.run("page-size", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "100 stored")

	out, err = fx.run("show", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Session:  s-21\n")
}

func TestPageSizeCommand_Invalid(t *testing.T) {
	fx := newCLIFixture(t)

	out, err := fx.run("page-size", "30")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, `Error [E030]: invalid page size "30"`)
}

func TestConfigCommand_RedactsToken(t *testing.T) {
	fx := newCLIFixture(t)
	t.Setenv("HOOKWATCH_TOKEN", "s3cret")

	out, err := fx.run("config")
	require.NoError(t, err)
	assert.NotContains(t, out, "s3cret")
	assert.Contains(t, out, redacted)
	assert.Contains(t, out, "timezone: UTC")
}

func TestConfigCommand_JSONWithOverrides(t *testing.T) {
	fx := newCLIFixture(t)

	out, err := fx.run("--gateway", "https://gw.example.com", "--locale", "en-US", "config", "--format", "json")
	require.NoError(t, err)

	var doc map[string]interface{}
	decodeResponse(t, out, &doc)
	gateway := doc["gateway"].(map[string]interface{})
	assert.Equal(t, "https://gw.example.com", gateway["url"])
	assert.Equal(t, "", gateway["token"])
	display := doc["display"].(map[string]interface{})
	assert.Equal(t, "en-US", display["locale"])
}

func TestConfigCommand_MissingFile(t *testing.T) {
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", "/nonexistent/hookwatch.yaml", "config"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E010]: failed to load config")
}
