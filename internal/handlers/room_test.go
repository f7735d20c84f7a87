package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thereayou/club3-chat/internal/handlers/dto"
	"github.com/thereayou/club3-chat/internal/logstore"
)

func TestRoomHandler_GetPresence(t *testing.T) {
	hub, _ := newChats(logstore.NewMemoryStore())
	h := NewRoomHandler(hub)

	r := gin.New()
	r.GET("/api/chats/:peer/presence", asUser("alice"), h.GetPresence)

	get := func(peer string) (*dto.PresenceResponse, int) {
		w := doJSON(r, http.MethodGet, "/api/chats/"+peer+"/presence", nil)
		if w.Code != http.StatusOK {
			return nil, w.Code
		}
		var resp dto.PresenceResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return &resp, w.Code
	}

	resp, _ := get("bob")
	require.NotNil(t, resp)
	assert.Equal(t, "alice_bob", resp.RoomID)
	assert.Zero(t, resp.Connections)
	assert.Empty(t, resp.Participants)
	assert.False(t, resp.PeerOnline)

	bob := hub.Connect("bob", 4)
	require.NoError(t, hub.JoinRoom(bob, "alice_bob"))
	// второе соединение того же участника
	bobTab := hub.Connect("bob", 4)
	require.NoError(t, hub.JoinRoom(bobTab, "alice_bob"))

	resp, _ = get("bob")
	require.NotNil(t, resp)
	assert.Equal(t, 2, resp.Connections)
	assert.Equal(t, []string{"bob"}, resp.Participants)
	assert.True(t, resp.PeerOnline)

	_, code := get("bad_peer")
	assert.Equal(t, http.StatusBadRequest, code)
}
