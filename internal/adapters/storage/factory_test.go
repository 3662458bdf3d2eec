package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("Default engine is sqlite", func(t *testing.T) {
		backend, err := NewByEngine(ctx, Options{SQLitePath: filepath.Join(t.TempDir(), "state.db")})
		require.NoError(t, err)
		defer backend.Close()

		_, ok := backend.Store.(*SQLiteStore)
		assert.True(t, ok)
		assert.NoError(t, backend.Ping(ctx))
	})

	t.Run("Memory engine", func(t *testing.T) {
		backend, err := NewByEngine(ctx, Options{Engine: " Memory "})
		require.NoError(t, err)

		_, ok := backend.Store.(*MemoryStore)
		assert.True(t, ok)
		assert.NoError(t, backend.Close())
	})

	t.Run("Unknown engine", func(t *testing.T) {
		_, err := NewByEngine(ctx, Options{Engine: "etcd"})
		assert.ErrorContains(t, err, "unsupported storage engine")
	})
}

func TestEnsureInstallationID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first, err := EnsureInstallationID(ctx, s)
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	assert.NoError(t, err)

	second, err := EnsureInstallationID(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, first, second, "id must be stable once persisted")
}
