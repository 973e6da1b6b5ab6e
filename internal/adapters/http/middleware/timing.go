package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"mydaylog/internal/adapters/http/perf"
)

// DefaultSlowRequest is the threshold above which a request logs at WARN.
const DefaultSlowRequest = 200 * time.Millisecond

// RequestIDHeader carries the per-request id back to the client.
const RequestIDHeader = "X-Request-Id"

// responseRecorder remembers what the handler wrote.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rr *responseRecorder) WriteHeader(code int) {
	rr.status = code
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(p []byte) (int, error) {
	n, err := rr.ResponseWriter.Write(p)
	rr.bytes += n
	return n, err
}

// Timing tags each response with a request id, logs its duration and, when
// collector is non-nil, records it for /debug/perf.
// PRE: threshold <= 0 selects DefaultSlowRequest
// POST: the entry is recorded even when the handler panics
func Timing(collector *perf.Collector, threshold time.Duration) func(http.Handler) http.Handler {
	if threshold <= 0 {
		threshold = DefaultSlowRequest
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := uuid.NewString()
			w.Header().Set(RequestIDHeader, id)
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				elapsed := time.Since(start)
				ms := float64(elapsed.Microseconds()) / 1000.0
				level := slog.LevelDebug
				msg := "request"
				if elapsed >= threshold {
					level, msg = slog.LevelWarn, "slow_request"
				}
				slog.Log(r.Context(), level, msg,
					"request_id", id,
					"method", r.Method,
					"path", r.URL.Path,
					"status", rec.status,
					"bytes", rec.bytes,
					"duration_ms", ms,
				)
				if collector != nil {
					collector.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Path:       r.Method + " " + r.URL.Path,
						StatusCode: rec.status,
						Failed:     rec.status >= http.StatusInternalServerError,
						DurationMs: ms,
						Timestamp:  start,
					})
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
