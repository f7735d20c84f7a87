package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/thereayou/club3-chat/internal/logstore"
	"github.com/thereayou/club3-chat/internal/middleware"
	"github.com/thereayou/club3-chat/internal/models"
	"github.com/thereayou/club3-chat/internal/session"
	"github.com/thereayou/club3-chat/internal/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser подставляет идентичность вместо проверки токена
func asUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.IdentityKey, models.Identity{ParticipantID: id, DisplayName: id})
		c.Next()
	}
}

func newChats(store logstore.Store) (*websocket.Hub, *session.Controller) {
	hub := websocket.NewHub(nil)
	return hub, session.NewController(hub, store, session.WithStoreTimeout(time.Second))
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// nextFrame ждет следующий кадр в очереди соединения
func nextFrame(t *testing.T, c *websocket.Client) websocket.Envelope {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		require.True(t, ok, "send queue closed")
		var env websocket.Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("no frame received")
		return websocket.Envelope{}
	}
}

func noFrame(t *testing.T, c *websocket.Client) {
	t.Helper()
	select {
	case raw := <-c.Send:
		t.Fatalf("unexpected frame: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}
