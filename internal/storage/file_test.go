package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/dinobot/pkg/user"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), testLogger())
	require.NoError(t, err)
	return store
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	rec := user.NewRecord()
	rec.Metadata.Points = 1200
	rec.MessageCount = 4
	rec.AddEgg()

	require.NoError(t, store.Save(ctx, "42", rec))

	loaded, err := store.Load(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 1200, loaded.Metadata.Points)
	assert.Equal(t, 4, loaded.MessageCount)
	require.Len(t, loaded.Eggs, 1)
	assert.Equal(t, 1, loaded.Eggs[0].ID)
}

func TestFileStore_LoadAbsent(t *testing.T) {
	store := newTestFileStore(t)

	loaded, err := store.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileStore_LoadMalformed(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, testLogger())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "99.json"), []byte("{not json"), 0o644))

	// Malformed documents degrade to absent so callers re-initialize.
	loaded, err := store.Load(context.Background(), "99")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileStore_Overwrite(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	rec := user.NewRecord()
	rec.Metadata.Points = 100
	require.NoError(t, store.Save(ctx, "7", rec))

	rec.Metadata.Points = 50
	require.NoError(t, store.Save(ctx, "7", rec))

	loaded, err := store.Load(ctx, "7")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 50, loaded.Metadata.Points)
}

func TestFileStore_Delete(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "7", user.NewRecord()))
	require.NoError(t, store.Delete(ctx, "7"))

	loaded, err := store.Load(ctx, "7")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Deleting an absent record is not an error.
	require.NoError(t, store.Delete(ctx, "7"))
}

func TestFileStore_InvalidUserID(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	for _, id := range []string{"", "..", "a/b", `a\b`} {
		_, err := store.Load(ctx, id)
		assert.Error(t, err, "id %q", id)
		assert.Error(t, store.Save(ctx, id, user.NewRecord()), "id %q", id)
	}
}

func TestFileStore_Ping(t *testing.T) {
	store := newTestFileStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
