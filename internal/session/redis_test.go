package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubware/askbridge/internal/conversation"
	"github.com/clubware/askbridge/internal/session"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*session.Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := session.NewRedis(context.Background(), client, ttl)
	require.NoError(t, err)
	return store, mr
}

func TestRedisRoundTrip(t *testing.T) {
	t.Parallel()
	store, _ := newRedisStore(t, time.Hour)
	ctx := context.Background()

	got, err := store.Get(ctx, 1001)
	require.NoError(t, err)
	assert.Nil(t, got)

	sess := conversation.NewSession()
	sess.State = conversation.StateAwaitingText
	sess.Pending = conversation.FieldBody
	sess.Draft = conversation.Draft{Title: "t", Tags: "a, b", RoomSet: true}
	require.NoError(t, store.Put(ctx, 1001, sess))

	got, err = store.Get(ctx, 1001)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, conversation.StateAwaitingText, got.State)
	assert.Equal(t, conversation.FieldBody, got.Pending)
	assert.Equal(t, sess.Draft, got.Draft)

	require.NoError(t, store.Delete(ctx, 1001))
	got, err = store.Get(ctx, 1001)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Delete(ctx, 1001))
}

func TestRedisTTL(t *testing.T) {
	t.Parallel()
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, 1001, conversation.NewSession()))

	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, 1001)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisPutResetsTTL(t *testing.T) {
	t.Parallel()
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, 1001, conversation.NewSession()))
	mr.FastForward(30 * time.Second)
	require.NoError(t, store.Put(ctx, 1001, conversation.NewSession()))
	mr.FastForward(45 * time.Second)

	got, err := store.Get(ctx, 1001)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestNewRedisFailsOnDeadServer(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	_, err := session.NewRedis(context.Background(), client, time.Hour)
	require.Error(t, err)
}
