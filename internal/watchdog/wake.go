package watchdog

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
)

// WakeHandler brings a stopped deployment back: any request starts the
// containers, waits for the gateway's health probe to answer, then redirects
// the visitor back to the path they asked for.
type WakeHandler struct {
	containers ContainerManager
	cfg        config.WatchdogConfig
	probe      *resty.Client

	// pollInterval is shortened in tests.
	pollInterval time.Duration

	logger *logger.Logger
}

func NewWakeHandler(containers ContainerManager, cfg config.WatchdogConfig, logger *logger.Logger) *WakeHandler {
	return &WakeHandler{
		containers:   containers,
		cfg:          cfg,
		probe:        resty.New().SetTimeout(5 * time.Second),
		pollInterval: time.Second,
		logger:       logger,
	}
}

func (h *WakeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.logger.Info().Str("uri", r.RequestURI).Msg("wake request received")

	for _, name := range h.cfg.Containers {
		if err := h.containers.StartContainer(ctx, name); err != nil {
			h.logger.Err(err).Str("container", name).Msg("starting container failed")
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			return
		}
	}

	if !h.waitReady(r) {
		http.Error(w, "gateway did not come up in time", http.StatusGatewayTimeout)
		return
	}

	http.Redirect(w, r, r.URL.RequestURI(), http.StatusFound)
}

// waitReady polls the configured probe URL until it answers 2xx, the wake
// timeout passes, or the visitor goes away. No probe URL means redirect
// immediately after the start calls.
func (h *WakeHandler) waitReady(r *http.Request) bool {
	if h.cfg.ProbeURL == "" {
		return true
	}

	deadline := time.Now().Add(h.cfg.WakeTimeout)
	for time.Now().Before(deadline) {
		resp, err := h.probe.R().
			SetContext(r.Context()).
			Get(h.cfg.ProbeURL)
		if err == nil && resp.IsSuccess() {
			return true
		}
		if r.Context().Err() != nil {
			return false
		}

		time.Sleep(h.pollInterval)
	}

	h.logger.Error().Str("probe_url", h.cfg.ProbeURL).Msg("gateway did not answer before the wake timeout")
	return false
}
