// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Pipeline metrics (hits fetched, leads persisted, extraction passes)
//   - Content fetch metrics (attempts, duration, size)
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "leadscout/internal/observability/metrics"
//
//	func persistLeads(engine string) {
//	    start := time.Now()
//	    // ... persist leads ...
//
//	    metrics.RecordLeadPersisted("saved")
//	    metrics.RecordOperationDuration("persist_leads", time.Since(start))
//	}
package metrics
