package server

import (
	"bytes"
	"net/http"
)

// responseWriterWrapper tees the response so the audit middleware can read
// the status code and body after the handler has run.
type responseWriterWrapper struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriterWrapper {
	return &responseWriterWrapper{ResponseWriter: w, status: http.StatusOK}
}

func (w *responseWriterWrapper) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
