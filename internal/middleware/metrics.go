package middleware

import (
	"net/http"
	"time"

	"github.com/editorjakupi/testning-av-crmsystem/internal/metrics"
)

// HTTPMetrics records per-request counters and latency.
func HTTPMetrics(c *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)
			c.RecordHTTP(r.Method, sw.code, time.Since(start))
		})
	}
}
