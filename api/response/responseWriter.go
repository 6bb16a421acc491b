package response

import (
	"log/slog"
	"net/http"
	"time"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bodySize   int
}

func NewResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader to capture status code
func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Write to count the body size
func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bodySize += n
	return n, err
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func (recw *responseWriter) GetStatusCode() int {
	return recw.statusCode
}

func (recw *responseWriter) GetBodySize() int {
	return recw.bodySize
}

// WithRequestLogging logs every request at debug level once it completes.
func WithRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recw := NewResponseWriter(w)
		next.ServeHTTP(recw, r)

		slog.Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recw.GetStatusCode(),
			"size", recw.GetBodySize(),
			"duration", time.Since(start),
		)
	})
}
