package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"nsecli/internal/infrastructure"
)

// Metrics records request counts and latencies for every handled request.
// Uses the chi route pattern rather than the raw path to keep label
// cardinality bounded.
func Metrics(metrics *infrastructure.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			// Route pattern is populated once routing has completed
			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}

			metrics.RecordHTTPRequest(r.Method, path, strconv.Itoa(ww.Status()), time.Since(start))
		})
	}
}
