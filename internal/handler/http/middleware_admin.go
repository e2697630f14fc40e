package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/cathy-ai/companion-gateway/internal/logger"
)

const adminKeyHeader = "x-admin-key"

// adminOnly gates the user-management endpoints behind the configured admin
// API key. When no key is configured the endpoints are disabled entirely:
// every request is rejected rather than left open.
func (h *Handler) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.validAdminKey(r) {
			logger.FromRequest(r).Warn().Msg("admin request with missing or wrong key")
			http.Error(w, ErrInvalidAdminKey.Error(), http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) validAdminKey(r *http.Request) bool {
	if h.adminKey == "" {
		return false
	}
	provided := r.Header.Get(adminKeyHeader)
	return subtle.ConstantTimeCompare([]byte(provided), []byte(h.adminKey)) == 1
}
