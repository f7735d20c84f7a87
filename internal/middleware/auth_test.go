package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/thereayou/club3-chat/internal/services"
	"github.com/thereayou/club3-chat/pkg/auth"
)

func newTestEngine(t *testing.T) (*gin.Engine, *auth.JWTManager, services.Blacklist) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtMgr := auth.NewJWTManager("secret", time.Hour)
	blacklist := services.NewMemoryBlacklist()
	identity := services.NewJWTIdentityService(jwtMgr, blacklist)

	r := gin.New()
	whoami := func(c *gin.Context) {
		c.JSON(http.StatusOK, CurrentIdentity(c))
	}
	r.GET("/api", AuthMiddleware(identity), whoami)
	r.GET("/ws", WSAuthMiddleware(identity), whoami)

	return r, jwtMgr, blacklist
}

func do(r http.Handler, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r, jwtMgr, blacklist := newTestEngine(t)
	token, err := jwtMgr.Generate("alice", "Alice")
	require.NoError(t, err)

	w := do(r, "/api", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"participant_id":"alice","display_name":"Alice"}`, w.Body.String())

	require.Equal(t, http.StatusUnauthorized, do(r, "/api", "").Code)
	require.Equal(t, http.StatusUnauthorized, do(r, "/api", "Bearer nope").Code)
	// query токен принимает только websocket маршрут
	require.Equal(t, http.StatusUnauthorized, do(r, "/api?token="+token, "").Code)

	require.NoError(t, blacklist.Revoke(context.Background(), token, time.Minute))
	w = do(r, "/api", "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "blacklisted")
}

func TestWSAuthMiddleware(t *testing.T) {
	r, jwtMgr, _ := newTestEngine(t)
	token, err := jwtMgr.Generate("bob", "")
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, do(r, "/ws?token="+token, "").Code)
	require.Equal(t, http.StatusOK, do(r, "/ws", "Bearer "+token).Code)
	require.Equal(t, http.StatusUnauthorized, do(r, "/ws", "").Code)
}
