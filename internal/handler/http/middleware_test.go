package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/watchdog"
)

func TestWithTraceID_GeneratesID(t *testing.T) {
	h := newTestHandler(t, handlerDeps{})

	rec := doRequest(t, h, http.MethodGet, "/health", "", nil)

	assert.NotEmpty(t, rec.Header().Get(traceIDHeader))
}

func TestWithTraceID_ReusesCallerID(t *testing.T) {
	h := newTestHandler(t, handlerDeps{})

	rec := doRequest(t, h, http.MethodGet, "/health", "",
		map[string]string{traceIDHeader: "trace-123"})

	assert.Equal(t, "trace-123", rec.Header().Get(traceIDHeader))
}

func TestWithActivity_TouchesFile(t *testing.T) {
	h := newTestHandler(t, handlerDeps{})
	h.activity = watchdog.NewActivity(t.TempDir(), logger.Nop())

	_, ok := h.activity.Last()
	require.False(t, ok)

	doRequest(t, h, http.MethodGet, "/health", "", nil)

	_, ok = h.activity.Last()
	assert.True(t, ok)
}

func TestAuth_MalformedBearerHeader(t *testing.T) {
	h := newTestHandler(t, handlerDeps{})

	rec := doRequest(t, h, http.MethodGet, "/api/chat/whoami", "",
		map[string]string{"Authorization": "Bearer"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	h := newTestHandler(t, handlerDeps{})

	rec := doRequest(t, h, http.MethodGet, "/api/chat/whoami", "",
		map[string]string{"Authorization": "Bearer expired"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
