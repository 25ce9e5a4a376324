// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Pipeline metrics (crawls, paywall probes, extraction, ingestion passes)
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "balanced-news/internal/observability/metrics"
//
//	func crawl(sourceID int64) {
//	    start := time.Now()
//	    // ... crawl the feed ...
//	    metrics.RecordFeedCrawl(sourceID, time.Since(start), found, inserted, duplicated)
//	}
package metrics
