package oauth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, mr, cleanup
}

func TestStateStore_GenerateAndConsume(t *testing.T) {
	rdb, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewStateStore(rdb)
	ctx := context.Background()

	state, err := store.GenerateState(ctx, "https://console.example.com/login")
	require.NoError(t, err)
	assert.Len(t, state, 64)
	assert.True(t, mr.Exists(stateKeyPrefix+state))

	returnURL, err := store.ConsumeState(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, "https://console.example.com/login", returnURL)

	// 只能使用一次
	_, err = store.ConsumeState(ctx, state)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateStore_Expired(t *testing.T) {
	rdb, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewStateStore(rdb)
	ctx := context.Background()

	state, err := store.GenerateState(ctx, "")
	require.NoError(t, err)

	mr.FastForward(stateTTL + time.Second)

	_, err = store.ConsumeState(ctx, state)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateStore_Invalid(t *testing.T) {
	rdb, _, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewStateStore(rdb)

	_, err := store.ConsumeState(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = store.ConsumeState(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateStore_Unique(t *testing.T) {
	rdb, _, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewStateStore(rdb)
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		state, err := store.GenerateState(context.Background(), "")
		require.NoError(t, err)
		assert.False(t, seen[state])
		seen[state] = true
	}
}
