package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/thereayou/club3-chat/internal/handlers/dto"
	"github.com/thereayou/club3-chat/internal/logstore"
	"github.com/thereayou/club3-chat/internal/logstore/mocks"
	"github.com/thereayou/club3-chat/internal/models"
	"github.com/thereayou/club3-chat/internal/pairkey"
)

func newMessageRouter(store logstore.Store, user string) *gin.Engine {
	_, chats := newChats(store)
	h := NewHTTPMessageHandler(chats)

	r := gin.New()
	api := r.Group("/api", asUser(user))
	api.GET("/chats", h.GetChat)
	api.POST("/chats", h.SendChat)
	return r
}

type chatResponse struct {
	RoomID   string                `json:"room_id"`
	Messages []dto.MessageResponse `json:"messages"`
}

func TestHTTPMessage_SendThenGet(t *testing.T) {
	store := logstore.NewMemoryStore()
	alice := newMessageRouter(store, "alice")
	bob := newMessageRouter(store, "bob")

	w := doJSON(alice, http.MethodPost, "/api/chats", dto.SendChatRequest{
		Receiver:  "bob",
		Message:   "hi",
		Timestamp: "2024-05-01T10:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var sent dto.SendChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))
	assert.True(t, sent.Stored)
	assert.Equal(t, "alice", sent.Message.Sender)
	assert.Equal(t, 0, sent.Delivered)

	doJSON(bob, http.MethodPost, "/api/chats", dto.SendChatRequest{
		Receiver:  "alice",
		Message:   "hey",
		Timestamp: "2024-05-01T10:00:05Z",
	})

	w = doJSON(bob, http.MethodGet, "/api/chats?peer=alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got chatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "alice_bob", got.RoomID)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "hi", got.Messages[0].Text)
	assert.Equal(t, "hey", got.Messages[1].Text)
}

func TestHTTPMessage_GetEmptyChat(t *testing.T) {
	r := newMessageRouter(logstore.NewMemoryStore(), "alice")

	w := doJSON(r, http.MethodGet, "/api/chats?peer=carol", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got chatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "alice_carol", got.RoomID)
	assert.Empty(t, got.Messages)
}

func TestHTTPMessage_BadRequests(t *testing.T) {
	r := newMessageRouter(logstore.NewMemoryStore(), "alice")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"missing peer", http.MethodGet, "/api/chats", nil},
		{"invalid peer", http.MethodGet, "/api/chats?peer=bad_id", nil},
		{"missing fields", http.MethodPost, "/api/chats", map[string]string{"receiver": "bob"}},
		{"bad timestamp", http.MethodPost, "/api/chats", dto.SendChatRequest{Receiver: "bob", Message: "x", Timestamp: "yesterday"}},
		{"invalid receiver", http.MethodPost, "/api/chats", dto.SendChatRequest{Receiver: "bad_id", Message: "x", Timestamp: "2024-05-01T10:00:00Z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestHTTPMessage_StoreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	down := errors.New("connection refused")

	store.EXPECT().
		LoadAll(gomock.Any(), pairkey.MustNew("alice", "bob")).
		Return(nil, fmt.Errorf("%w: load: %w", logstore.ErrUnavailable, down))
	store.EXPECT().
		Append(gomock.Any(), pairkey.MustNew("alice", "bob"), gomock.Any()).
		DoAndReturn(func(context.Context, pairkey.Key, models.Message) error {
			return fmt.Errorf("%w: append: %w", logstore.ErrUnavailable, down)
		})

	r := newMessageRouter(store, "alice")

	// недоступный лог не выдается за пустую переписку
	w := doJSON(r, http.MethodGet, "/api/chats?peer=bob", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doJSON(r, http.MethodPost, "/api/chats", dto.SendChatRequest{
		Receiver:  "bob",
		Message:   "hi",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"stored":false`)
}
