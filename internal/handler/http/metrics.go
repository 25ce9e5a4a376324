package http

import (
	"net/http"
	"strconv"
	"time"

	"balanced-news/internal/handler/http/pathutil"
	"balanced-news/internal/handler/http/responsewriter"
	"balanced-news/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsMiddleware instruments HTTP requests with Prometheus metrics.
// Paths are normalized (/api/articles/123 -> /api/articles/:id) so the
// path label cardinality stays bounded.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		wrapped := responsewriter.Wrap(w)
		next.ServeHTTP(wrapped, r)

		requestSize := int(r.ContentLength)
		if requestSize < 0 {
			requestSize = 0
		}

		metrics.RecordHTTPRequest(
			r.Method,
			pathutil.NormalizePath(r.URL.Path),
			strconv.Itoa(wrapped.StatusCode()),
			time.Since(start),
			requestSize,
			wrapped.BytesWritten(),
		)
	})
}

// MetricsHandler returns the Prometheus scrape endpoint handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
