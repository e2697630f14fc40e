package http

import "net/http"

// responseWriter decorates [http.ResponseWriter] so middleware can observe
// the status code and body size after the downstream handler has returned.
// It forwards WriteHeader to the underlying writer exactly once and keeps
// [http.Flusher] reachable so streaming handlers still flush through it.
type responseWriter struct {
	http.ResponseWriter

	status      int
	wroteHeader bool

	// size accumulates the bytes written across all Write calls.
	size int
}

func (w *responseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.status = statusCode
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// Flush forwards to the underlying writer when it supports flushing, which
// the NDJSON chat stream relies on to push each delta immediately.
func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
