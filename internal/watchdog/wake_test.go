package watchdog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
)

func newTestWakeHandler(containers ContainerManager, cfg config.WatchdogConfig) *WakeHandler {
	h := NewWakeHandler(containers, cfg, logger.Nop())
	h.pollInterval = 10 * time.Millisecond
	return h
}

func TestWake_StartsContainersAndRedirects(t *testing.T) {
	var calls atomic.Int32
	probe := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The gateway needs a couple of polls to come up.
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer probe.Close()

	cfg := testWatchdogConfig()
	cfg.ProbeURL = probe.URL
	cfg.WakeTimeout = 2 * time.Second

	manager := &fakeContainerManager{}
	h := newTestWakeHandler(manager, cfg)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat?session=abc", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/chat?session=abc", rec.Header().Get("Location"))
	assert.Equal(t, []string{"ollama", "emotion"}, manager.started)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestWake_NoProbeRedirectsImmediately(t *testing.T) {
	manager := &fakeContainerManager{}
	h := newTestWakeHandler(manager, testWatchdogConfig())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestWake_StartFailure(t *testing.T) {
	manager := &failingStarter{}
	h := newTestWakeHandler(manager, testWatchdogConfig())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestWake_ProbeNeverReady(t *testing.T) {
	probe := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer probe.Close()

	cfg := testWatchdogConfig()
	cfg.ProbeURL = probe.URL
	cfg.WakeTimeout = 50 * time.Millisecond

	h := newTestWakeHandler(&fakeContainerManager{}, cfg)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

type failingStarter struct{}

func (f *failingStarter) StopContainer(ctx context.Context, name string) error  { return nil }
func (f *failingStarter) StartContainer(ctx context.Context, name string) error { return errors.New("engine down") }
