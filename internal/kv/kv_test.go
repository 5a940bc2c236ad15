package kv

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SchemeDispatch(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		dsn  string
		want any
	}{
		{"bare path", filepath.Join(dir, "a.db"), &SQLite{}},
		{"sqlite scheme", "sqlite://" + filepath.Join(dir, "b.db"), &SQLite{}},
		{"memory", "memory://", &Memory{}},
		{"file", "file://" + filepath.Join(dir, "c.json"), &File{}},
		{"postgres", "postgres://u:p@localhost/hookwatch", &Postgres{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.dsn)
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestOpen_UnsupportedScheme(t *testing.T) {
	_, err := Open("redis://localhost")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestOpen_RegisteredFactoryWins(t *testing.T) {
	custom := NewMemory()
	RegisterFactory("custom", func(string) (Store, error) { return custom, nil })

	s, err := Open("custom://anything")
	require.NoError(t, err)
	assert.Same(t, custom, s)
}

func TestPostgres_OpenFailureSurfacesOnUse(t *testing.T) {
	p, err := NewPostgres("postgres://u:p@localhost/hookwatch")
	require.NoError(t, err)
	p.openDB = func(string, string) (*sql.DB, error) {
		return nil, errors.New("dial refused")
	}

	_, _, getErr := p.Get(context.Background(), "k")
	require.Error(t, getErr)
	assert.Contains(t, getErr.Error(), "dial refused")

	assert.Error(t, p.Set(context.Background(), "k", []byte("v")))
	assert.NoError(t, p.Close())
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"hookwatch_kv"`, quoteIdentifier("hookwatch_kv"))
	assert.Equal(t, `"a""b"`, quoteIdentifier(`a"b`))
}
