package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/cache"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "dates", cache.Key("dates"))
	assert.Equal(t, "measurements:pm25:2026-08-28", cache.Key("measurements", "pm25", "2026-08-28"))
}

func TestMemory_GetSet(t *testing.T) {
	store := cache.NewMemory()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	value, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), value)
}

func TestMemory_ExpiryIsAgeBased(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	store := cache.NewMemoryWithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 300*time.Second))

	// Still fresh one second before the window closes.
	now = now.Add(299 * time.Second)
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	// An entry exactly as old as the window is treated as absent.
	now = now.Add(1 * time.Second)
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_SetOverwrites(t *testing.T) {
	store := cache.NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("old"), time.Minute))
	require.NoError(t, store.Set(ctx, "k", []byte("new"), time.Minute))

	value, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("new"), value)
}
