// Package tracing provides OpenTelemetry tracing integration.
//
// Features:
//   - HTTP server middleware (Middleware) that extracts incoming W3C trace
//     context, starts a server span per request, sets the X-Trace-Id
//     response header, and records method, path and status code
//   - A shared tracer (GetTracer) for creating spans elsewhere
//
// The package uses the globally registered OpenTelemetry tracer provider
// and propagator; it does not set up a provider or an exporter itself.
//
// Example usage:
//
//	import "leadscout/internal/observability/tracing"
//
//	func main() {
//	    handler := tracing.Middleware(mux)
//	    http.ListenAndServe(":8080", handler)
//	}
//
//	func processJob(ctx context.Context) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "process-job")
//	    defer span.End()
//	    // ... process job ...
//	}
package tracing
