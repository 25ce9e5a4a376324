// Package tracing provides OpenTelemetry tracing integration.
//
// The HTTP middleware creates a server span per request, extracting
// upstream trace context from incoming headers (W3C Trace Context) and
// echoing the trace ID back to clients via the X-Trace-Id response header.
// Without an SDK tracer provider installed, spans are no-ops; the package
// works against the global provider so an exporter can be wired at startup
// without touching call sites.
//
// Features:
//   - Automatic HTTP request tracing via Middleware
//   - Cross-service trace propagation through the global propagator
//   - Status code, method, and path recorded as span attributes
//
// Example usage:
//
//	import "balanced-news/internal/observability/tracing"
//
//	func main() {
//	    mux := http.NewServeMux()
//	    handler := tracing.Middleware(mux)
//	    http.ListenAndServe(":8080", handler)
//	}
//
//	func processEntry(ctx context.Context) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "process-entry")
//	    defer span.End()
//	    // ... process entry ...
//	}
package tracing
