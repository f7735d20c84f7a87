package logstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thereayou/club3-chat/internal/models"
	"github.com/thereayou/club3-chat/internal/pairkey"
)

// fakeChatDB ведет себя как database.Database: строки с автоинкрементом id
type fakeChatDB struct {
	rows []models.ChatMessage
	err  error
}

func (f *fakeChatDB) AppendChatMessage(_ context.Context, message *models.ChatMessage) error {
	if f.err != nil {
		return f.err
	}
	message.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, *message)
	return nil
}

func (f *fakeChatDB) GetChatMessages(_ context.Context, pairKey string) ([]models.ChatMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.ChatMessage
	for _, row := range f.rows {
		if row.PairKey == pairKey {
			out = append(out, row)
		}
	}
	return out, nil
}

func TestPostgresStore(t *testing.T) {
	db := &fakeChatDB{}
	store := NewPostgresStore(db)
	ctx := context.Background()
	key := pairkey.MustNew("alice", "bob")

	require.NoError(t, store.Append(ctx, key, models.Message{From: "alice", To: "bob", Text: "late", Timestamp: at(9)}))
	require.NoError(t, store.Append(ctx, key, models.Message{From: "bob", To: "alice", Text: "early", Timestamp: at(2)}))

	require.Equal(t, "alice_bob", db.rows[0].PairKey)

	messages, err := store.LoadAll(ctx, key)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "early", messages[0].Text)
	require.Equal(t, int64(2), messages[0].Seq)

	empty, err := store.LoadAll(ctx, pairkey.MustNew("x", "y"))
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestPostgresStore_Unavailable(t *testing.T) {
	store := NewPostgresStore(&fakeChatDB{err: errors.New("connection refused")})
	key := pairkey.MustNew("alice", "bob")

	require.ErrorIs(t, store.Append(context.Background(), key, models.Message{}), ErrUnavailable)
	_, err := store.LoadAll(context.Background(), key)
	require.ErrorIs(t, err, ErrUnavailable)
}
