package http

import (
	"net/http"
	"time"
)

// withActivity records the request time in the last-activity file so the
// idle watchdog can tell when the deployment was last used. A nil tracker
// (tests, watchdog disabled) makes this a no-op.
func (h *Handler) withActivity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.activity != nil {
			h.activity.Touch(time.Now())
		}

		next.ServeHTTP(w, r)
	})
}
