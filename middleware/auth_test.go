package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		role, err := GetUserRoleFromContext(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Write([]byte(id + ":" + string(role)))
	})
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	h := Authenticate(testSecret)(echoIdentity())

	token, err := NewToken(testSecret, "user-7", RoleOrganizer, nil)
	require.NoError(t, err)
	rec := serve(h, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-7:organizer", rec.Body.String())

	rec = serve(h, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing bearer token"}`, rec.Body.String())

	forged, err := NewToken([]byte("other-secret"), "user-7", RoleAdmin, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(h, forged).Code)

	expired, err := NewToken(testSecret, "user-7", RolePlayer, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(h, expired).Code)
}

func TestNumericUserID(t *testing.T) {
	h := Authenticate(testSecret)(echoIdentity())
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"role":    "player",
	}).SignedString(testSecret)
	require.NoError(t, err)

	rec := serve(h, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42:player", rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	h := Authenticate(testSecret)(RequireRole(RoleOrganizer, RoleAdmin)(echoIdentity()))

	tests := []struct {
		role Role
		want int
	}{
		{RoleOrganizer, http.StatusOK},
		{RoleAdmin, http.StatusOK},
		{RolePlayer, http.StatusForbidden},
		{Role("superuser"), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			token, err := NewToken(testSecret, "u1", tt.role, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, serve(h, token).Code)
		})
	}
}
