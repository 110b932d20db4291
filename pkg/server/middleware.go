package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// responseWriter captures the status code and the body size.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

type outcomeKey struct{}

// outcome collects attributes a handler wants on the request log line.
type outcome struct {
	attrs []any
}

// recordOutcome appends key/value pairs to the request log line, if any.
func recordOutcome(ctx context.Context, attrs ...any) {
	if o, ok := ctx.Value(outcomeKey{}).(*outcome); ok {
		o.attrs = append(o.attrs, attrs...)
	}
}

// LoggingMiddleware writes one line per request. Upload size, response size
// and whatever the analysis recorded through recordOutcome are included.
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			o := &outcome{}
			next.ServeHTTP(rw, r.WithContext(context.WithValue(r.Context(), outcomeKey{}, o)))

			level := slog.LevelInfo
			switch {
			case rw.statusCode >= http.StatusInternalServerError:
				level = slog.LevelError
			case rw.statusCode >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"upload_bytes", r.ContentLength,
				"response_bytes", rw.written,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			logger.Log(r.Context(), level, "request", append(attrs, o.attrs...)...)
		})
	}
}
