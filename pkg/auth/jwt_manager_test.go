package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, err := m.Generate("alice", "Alice")
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, "Alice", claims.Name)

	exp, err := m.Expiry(token)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	other, err := NewJWTManager("other", time.Hour).Generate("alice", "")
	require.NoError(t, err)
	_, err = m.Verify(other)
	require.Error(t, err)

	expired, err := NewJWTManager("secret", -time.Minute).Generate("alice", "")
	require.NoError(t, err)
	_, err = m.Verify(expired)
	require.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Verify(unsigned)
	require.Error(t, err)

	_, err = m.Verify("garbage")
	require.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	_, err := ExtractTokenFromHeader(r)
	require.Error(t, err)

	r.Header.Set("Authorization", "bearer abc")
	token, err := ExtractTokenFromHeader(r)
	require.NoError(t, err)
	require.Equal(t, "abc", token)

	r.Header.Set("Authorization", "Basic abc")
	_, err = ExtractTokenFromHeader(r)
	require.Error(t, err)
}
