package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: 50}, ParsePagination("", ""))
	assert.Equal(t, Pagination{Page: 3, Limit: 10}, ParsePagination("3", "10"))
	assert.Equal(t, Pagination{Page: 1, Limit: 100}, ParsePagination("-2", "500"))
	assert.Equal(t, Pagination{Page: 1, Limit: 50}, ParsePagination("abc", "0"))

	p := Pagination{Page: 3, Limit: 10}
	assert.Equal(t, int64(20), p.Skip())
	assert.Equal(t, int64(3), p.Pages(21))
	assert.Equal(t, int64(0), p.Pages(0))
}

func TestTokenManager(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.GenerateToken("507f1f77bcf86cd799439011", "admin")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	_, err = NewTokenManager("other", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, models.ErrInvalidToken)

	_, err = m.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, models.ErrInvalidToken)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, models.ErrTokenExpired)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))
}

func TestWriters(t *testing.T) {
	rec := httptest.NewRecorder()
	WritePage(rec, []string{"a", "b"}, 2, 12, Pagination{Page: 2, Limit: 5})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"count":2,"total":12,"pages":3,"currentPage":2,"data":["a","b"]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteError(rec, http.StatusNotFound, "Project not found")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Project not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteList(rec, []int{}, 0)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0.0, body["count"])
}
