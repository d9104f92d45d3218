package logging

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// unloggedPaths are hit by probes and scrapers every few seconds.
var unloggedPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// RequestLogger logs one "HTTP request" line per browse call. Besides the
// transport fields it records the matched route and the dataset, record and
// session it addressed, read from the chi route context once routing is done.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if unloggedPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			attrs := []any{
				"request_id", requestID(r),
				"method", r.Method,
				"path", r.URL.Path,
			}
			if r.URL.RawQuery != "" {
				attrs = append(attrs, "query", r.URL.RawQuery)
			}
			attrs = append(attrs, routeAttrs(r)...)
			attrs = append(attrs,
				"remote_addr", r.RemoteAddr,
				"status_code", rec.status,
				"bytes_written", rec.written,
				"duration_ms", time.Since(start).Milliseconds(),
			)

			level := slog.LevelInfo
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, "HTTP request", attrs...)
		})
	}
}

func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return "unknown"
}

// routeAttrs names what the request browsed. The {id} param is a session id
// under /v1/sessions and a record or favorite id everywhere else.
func routeAttrs(r *http.Request) []any {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}

	pattern := rctx.RoutePattern()
	if pattern == "" {
		return nil
	}

	attrs := []any{"route", pattern}
	if ds := rctx.URLParam("dataset"); ds != "" {
		attrs = append(attrs, "dataset", ds)
	}
	if section := rctx.URLParam("section"); section != "" {
		attrs = append(attrs, "section", section)
	}
	if id := rctx.URLParam("id"); id != "" {
		if strings.HasPrefix(pattern, "/v1/sessions/") {
			attrs = append(attrs, "session_id", id)
		} else {
			attrs = append(attrs, "record_id", id)
		}
	}
	return attrs
}

// statusRecorder keeps the status code and body size for the log line
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}
