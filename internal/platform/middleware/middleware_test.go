package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentTypeJSON(t *testing.T) {
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusNoContent)
	})
	mw := ContentTypeJSON(next)

	t.Run("rejects non-json body", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("name=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		assert.False(t, reached)
		assert.Contains(t, rec.Body.String(), "bad_request")
	})

	t.Run("allows json body", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"name":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, reached)
	})

	t.Run("allows json with charset", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		assert.True(t, reached)
	})

	t.Run("ignores bodyless requests", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest(http.MethodGet, "/events/abc", nil)
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		assert.True(t, reached)
	})
}
