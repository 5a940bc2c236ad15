package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v")))
	value, found, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v", string(value))

	require.NoError(t, m.Delete(ctx, "k"))
	_, found, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf))
	buf[0] = 'z'

	value, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(value))
}

func TestMemory_QuotaExceeded(t *testing.T) {
	m := NewMemory(WithQuota(10))
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("12345")))

	err := m.Set(ctx, "k", []byte("0123456789"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	value, _, getErr := m.Get(ctx, "k")
	require.NoError(t, getErr)
	assert.Equal(t, "12345", string(value), "failed write keeps the previous value")
}

func TestMemory_QuotaFreedByDelete(t *testing.T) {
	m := NewMemory(WithQuota(8))
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", []byte("1234567")))
	require.Error(t, m.Set(ctx, "b", []byte("1")))

	require.NoError(t, m.Delete(ctx, "a"))
	assert.NoError(t, m.Set(ctx, "b", []byte("1")))
}
