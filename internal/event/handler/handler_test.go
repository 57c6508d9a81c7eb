package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventmodels "gatherly/internal/event/models"
	"gatherly/internal/event/service"
	"gatherly/internal/event/store"
	id "gatherly/pkg/domain"
)

func newRouter(t *testing.T) chi.Router {
	t.Helper()
	svc := service.New(store.NewInMemory())
	h := New(svc, slog.New(slog.DiscardHandler))
	r := chi.NewRouter()
	h.Register(r)
	h.RegisterStaff(r)
	return r
}

func TestHandleCreateAndGet(t *testing.T) {
	router := newRouter(t)

	body, _ := json.Marshal(map[string]any{"name": "launch night", "max_capacity": 25})
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created eventmodels.Event
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.False(t, created.ID.IsNil())
	assert.Equal(t, eventmodels.StatusOpen, created.Status)
	require.NotNil(t, created.MaxCapacity)
	assert.Equal(t, 25, *created.MaxCapacity)

	getReq := httptest.NewRequest(http.MethodGet, "/events/"+created.ID.String(), nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	require.Equal(t, http.StatusOK, getRec.Code)

	var fetched eventmodels.Event
	require.NoError(t, json.NewDecoder(getRec.Body).Decode(&fetched))
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "launch night", fetched.Name)
}

func TestHandleCreate_Validation(t *testing.T) {
	router := newRouter(t)

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"missing name", map[string]any{"max_capacity": 10}},
		{"blank name", map[string]any{"name": "   "}},
		{"negative capacity", map[string]any{"name": "x", "max_capacity": -1}},
		{"zero capacity", map[string]any{"name": "x", "max_capacity": 0}},
		{"bad starts_at", map[string]any{"name": "x", "starts_at": "tomorrow"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.payload)
			req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleGet_NotFound(t *testing.T) {
	router := newRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/events/"+id.NewEventID().String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
