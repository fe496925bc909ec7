package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartupStatusProgress(t *testing.T) {
	status := NewStartupStatus(StepDatabase, StepMigrations, StepTemplates, StepServices)

	status.CompleteStep(StepDatabase)
	status.CompleteStep("unknown step")
	status.SetCurrentStep(StepMigrations)

	rec := httptest.NewRecorder()
	status.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body healthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Ready)
	assert.Equal(t, 25, body.Progress)
	assert.Equal(t, StepMigrations, body.Current)

	status.MarkReady()
	rec = httptest.NewRecorder()
	status.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Ready)
	assert.Equal(t, 100, body.Progress)
}

func TestRequireReady(t *testing.T) {
	status := NewStartupStatus(StepDatabase)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", status.Health)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {})
	handler := status.RequireReady(mux)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "health answers with progress")

	status.MarkReady()
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
