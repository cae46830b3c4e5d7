package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/exercise-platform/internal/auth/jwt"
)

func serve(t *testing.T, token string) (*httptest.ResponseRecorder, *jwt.Claims) {
	t.Helper()
	tokens := jwt.NewManager(jwt.TokenConfig{Secret: []byte("secretKey")})
	var seen *jwt.Claims
	handler := Middleware(tokens, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/all", nil)
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error
}

func TestMiddlewareMissingToken(t *testing.T) {
	rec, seen := serve(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, MsgUnauthorized, errorMessage(t, rec))
	assert.Nil(t, seen)
}

func TestMiddlewareInvalidToken(t *testing.T) {
	rec, seen := serve(t, "garbage")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, MsgInvalidToken, errorMessage(t, rec))
	assert.Nil(t, seen)
}

func TestMiddlewareValidToken(t *testing.T) {
	token, err := jwt.NewManager(jwt.TokenConfig{Secret: []byte("secretKey")}).Issue("docente-1", "")
	require.NoError(t, err)

	rec, seen := serve(t, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "docente-1", seen.Subject)
}
