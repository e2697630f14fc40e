package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const traceIDHeader = "X-Trace-ID"

// withTraceID attaches a trace id to every request: the caller's X-Trace-ID
// when present, a fresh uuid otherwise. The id is stamped onto a child
// logger stored in the request context and echoed in the response header.
func (h *Handler) withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		traceID := r.Header.Get(traceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		l := h.logger.GetChildLogger()
		l.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("trace_id", traceID)
		})

		r = r.WithContext(l.WithContext(ctx))
		w.Header().Set(traceIDHeader, traceID)

		next.ServeHTTP(w, r)
	})
}
