package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/dinobot/pkg/user"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store := NewRedisStore(mr.Addr(), testLogger())
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Failed to close redis store: %v", err)
		}
	})
	return store, mr
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	rec := user.NewRecord()
	rec.Metadata.Points = 750
	rec.XP = 5
	require.NoError(t, store.Save(ctx, "42", rec))

	loaded, err := store.Load(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 750, loaded.Metadata.Points)
	assert.Equal(t, 5, loaded.XP)
}

func TestRedisStore_LoadAbsent(t *testing.T) {
	store, _ := newTestRedisStore(t)

	loaded, err := store.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStore_LoadMalformed(t *testing.T) {
	store, mr := newTestRedisStore(t)

	require.NoError(t, mr.Set("user:99", "{not json"))

	loaded, err := store.Load(context.Background(), "99")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "7", user.NewRecord()))
	require.NoError(t, store.Delete(ctx, "7"))

	loaded, err := store.Load(ctx, "7")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
