package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_RoundTripAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	ctx := context.Background()

	require.NoError(t, NewFile(path).Set(ctx, "k", []byte(`[{"event":"message"}]`)))

	value, found, err := NewFile(path).Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `[{"event":"message"}]`, string(value))
}

func TestFile_MissingFileIsEmpty(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "absent.json"))

	_, found, err := f.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFile_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, _, err := NewFile(path).Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestFile_DeleteKeepsOtherKeys(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "state.json"))
	ctx := context.Background()

	require.NoError(t, f.Set(ctx, "a", []byte("1")))
	require.NoError(t, f.Set(ctx, "b", []byte("2")))
	require.NoError(t, f.Delete(ctx, "a"))

	_, found, err := f.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)

	value, found, err := f.Get(ctx, "b")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "2", string(value))
}
