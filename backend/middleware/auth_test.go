package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveWithAuth(t *testing.T, required bool, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	var authenticated bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authenticated = UserID(r.Context()) != nil
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	NewAuth(tokens, required).Authenticate(next).ServeHTTP(rec, req)
	return rec, authenticated
}

func TestAuthenticate(t *testing.T) {
	token, err := utils.NewTokenManager("test-secret", time.Hour).GenerateToken("507f1f77bcf86cd799439011", "admin")
	require.NoError(t, err)

	tests := []struct {
		name     string
		required bool
		header   string
		status   int
		authed   bool
	}{
		{"optional without header", false, "", http.StatusOK, false},
		{"optional with basic scheme", false, "Basic dXNlcjpwYXNz", http.StatusOK, false},
		{"optional with valid token", false, "Bearer " + token, http.StatusOK, true},
		{"lowercase scheme", false, "bearer " + token, http.StatusOK, true},
		{"optional with bad token", false, "Bearer nope", http.StatusUnauthorized, false},
		{"required without header", true, "", http.StatusUnauthorized, false},
		{"required with basic scheme", true, "Basic dXNlcjpwYXNz", http.StatusUnauthorized, false},
		{"required with empty bearer", true, "Bearer ", http.StatusUnauthorized, false},
		{"required with valid token", true, "Bearer " + token, http.StatusOK, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, authed := serveWithAuth(t, tt.required, tt.header)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.authed, authed)
		})
	}
}

func TestAuthenticateMessages(t *testing.T) {
	rec, _ := serveWithAuth(t, true, "Basic dXNlcjpwYXNz")
	assert.Contains(t, rec.Body.String(), "Not authorized to access this route")

	rec, _ = serveWithAuth(t, false, "Bearer nope")
	assert.Contains(t, rec.Body.String(), "Invalid token")
}
