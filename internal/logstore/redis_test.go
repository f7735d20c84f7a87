package logstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/thereayou/club3-chat/internal/models"
	"github.com/thereayou/club3-chat/internal/pairkey"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore(t *testing.T) {
	_, client := newTestRedis(t)
	testStoreContract(t, NewRedisStore(client))
}

func TestRedisStore_Keys(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client)
	key := pairkey.MustNew("bob", "alice")

	require.NoError(t, store.Append(context.Background(), key,
		models.Message{From: "bob", To: "alice", Text: "hey", Timestamp: at(0)}))

	require.True(t, mr.Exists("chat:alice_bob:messages"))
	seq, err := mr.Get("chat:alice_bob:seq")
	require.NoError(t, err)
	require.Equal(t, "1", seq)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client)
	mr.Close()

	key := pairkey.MustNew("alice", "bob")

	_, err := store.LoadAll(context.Background(), key)
	require.ErrorIs(t, err, ErrUnavailable)

	err = store.Append(context.Background(), key, models.Message{From: "alice", Text: "x", Timestamp: at(0)})
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestRedisStore_CorruptEntryIsNotDropped(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client)
	key := pairkey.MustNew("alice", "bob")

	require.NoError(t, store.Append(context.Background(), key,
		models.Message{From: "alice", To: "bob", Text: "ok", Timestamp: at(0)}))
	_, err := mr.ZAdd("chat:alice_bob:messages", float64(at(1).UnixMilli()), "{not json")
	require.NoError(t, err)

	_, err = store.LoadAll(context.Background(), key)
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorContains(t, err, "decode entry")
}
