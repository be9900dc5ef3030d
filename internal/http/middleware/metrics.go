package middleware

import (
	"net/http"
	"time"

	"github.com/bandera-print/backoffice-api/internal/metrics"
)

// Metrics records request counts and latency per chi route pattern.
// Patterns keep label cardinality bounded; unmatched paths are reported as "unmatched".
func Metrics(recorder *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := wrapResponseWriter(w)
			next.ServeHTTP(rw, r)

			route := routePattern(r)
			if route == r.URL.Path && rw.statusCode == http.StatusNotFound {
				route = "unmatched"
			}
			recorder.ObserveRequest(r.Method, route, rw.statusCode, time.Since(start))
		})
	}
}
