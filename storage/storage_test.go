package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"eduadmin-client/utils/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logger.Logger {
	return logger.NewLogger("error", "text")
}

// TestMemoryStore tests the in-memory store round trip
func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, KeyUser, `{"id":"u-1"}`))

	value, found, err := store.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"id":"u-1"}`, value)

	require.NoError(t, store.Delete(ctx, KeyUser))

	_, found, err = store.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.False(t, found)
}

// TestFileStore tests persistence across reopen
func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	store, err := NewFileStore(path, testLogger())
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, KeyContext, `{"schoolId":"S1"}`))
	require.NoError(t, store.Set(ctx, KeyLastSelection, `{"type":"school","schoolId":"S1"}`))
	require.NoError(t, store.Delete(ctx, KeyLastSelection))

	// Reopen from disk and verify only the surviving record is there
	reopened, err := NewFileStore(path, testLogger())
	require.NoError(t, err)

	value, found, err := reopened.Get(ctx, KeyContext)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"schoolId":"S1"}`, value)

	_, found, err = reopened.Get(ctx, KeyLastSelection)
	require.NoError(t, err)
	assert.False(t, found)
}

// TestFileStoreMissingFile tests that a missing file yields an empty store
func TestFileStoreMissingFile(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "does-not-exist.json"), testLogger())
	require.NoError(t, err)

	_, found, err := store.Get(context.Background(), KeyUser)
	require.NoError(t, err)
	assert.False(t, found)
}

// TestFileStoreCorruptFile tests that a corrupt file is set aside and the
// store starts empty and usable instead of refusing to open
func TestFileStoreCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := NewFileStore(path, testLogger())
	require.NoError(t, err)

	_, found, err := store.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.False(t, found)

	// The broken content was moved out of the way, not silently deleted
	_, err = os.Stat(path + ".corrupt")
	assert.NoError(t, err)

	// The store is fully usable and persists again
	require.NoError(t, store.Set(ctx, KeyUser, `{"id":"u-1"}`))
	reopened, err := NewFileStore(path, testLogger())
	require.NoError(t, err)
	value, found, err := reopened.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"id":"u-1"}`, value)
}

// TestKVTokenStore tests the token slot adapter over a key/value store
func TestKVTokenStore(t *testing.T) {
	tokens := NewKVTokenStore(NewMemoryStore())

	current, err := tokens.GetToken()
	require.NoError(t, err)
	assert.Empty(t, current)

	require.NoError(t, tokens.SetToken("header.payload.sig"))

	current, err = tokens.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "header.payload.sig", current)

	require.NoError(t, tokens.ClearToken())

	current, err = tokens.GetToken()
	require.NoError(t, err)
	assert.Empty(t, current)
}
