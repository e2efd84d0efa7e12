package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/blueberrycongee/llmux/pkg/telemetry/metrics"
)

// MetricsMiddleware records request count and duration per path and status.
// A nil collector disables recording.
func MetricsMiddleware(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			collector.RecordRequest(r.URL.Path, strconv.Itoa(rw.statusCode), time.Since(start).Seconds())
		})
	}
}
