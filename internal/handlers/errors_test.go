package handlers

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"spellwrite/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, 418, "Teapot", "", nil)

	assert.Equal(t, 418, recorder.Code)
	assert.Equal(t, "Teapot", strings.TrimSpace(recorder.Body.String()))
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	original := logger.Get()
	logger.Set(zap.New(core))
	defer logger.Set(original)

	recorder := httptest.NewRecorder()
	respondWithError(recorder, 500, ErrInternalServerError, "", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, ErrInternalServerError, entries[0].Message)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
	assert.EqualValues(t, 500, entries[0].ContextMap()["status"])
}

func TestRespondWithErrorSkipsLogWithoutError(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	original := logger.Get()
	logger.Set(zap.New(core))
	defer logger.Set(original)

	respondWithError(httptest.NewRecorder(), 400, ErrInvalidFormData, "", nil)

	assert.Zero(t, logs.Len())
}
