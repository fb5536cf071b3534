package oauth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*StateStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStateStore(client, "", ttl), mr
}

func TestStateStore_CreateAndConsumeOnce(t *testing.T) {
	store, mr := newTestStore(t, 5*time.Minute)
	ctx := context.Background()

	state, verifier, err := store.Create(ctx)
	require.NoError(t, err)
	assert.Len(t, state, 64)
	assert.NotEmpty(t, verifier)

	assert.True(t, mr.Exists("oauth_state:"+state))
	assert.Equal(t, 5*time.Minute, mr.TTL("oauth_state:"+state))

	got, err := store.Consume(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, verifier, got)

	_, err = store.Consume(ctx, state)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestStateStore_Expires(t *testing.T) {
	store, mr := newTestStore(t, time.Second)
	ctx := context.Background()

	state, _, err := store.Create(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = store.Consume(ctx, state)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestStateStore_UnknownOrEmptyState(t *testing.T) {
	store, _ := newTestStore(t, time.Minute)

	_, err := store.Consume(context.Background(), "")
	assert.ErrorIs(t, err, ErrStateNotFound)

	_, err = store.Consume(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestStateStore_RedisDown(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	mr.Close()

	_, _, err := store.Create(context.Background())
	assert.Error(t, err)

	_, err = store.Consume(context.Background(), "s")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStateNotFound)
}

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	_ = c.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), mr.Addr(), "", 0)
	assert.Error(t, err)
}
