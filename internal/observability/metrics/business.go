package metrics

import (
	"fmt"
	"time"
)

// RecordFeedCrawl records metrics for a feed crawl operation.
// It breaks the crawl result down into entries seen, stored, and skipped.
func RecordFeedCrawl(sourceID int64, duration time.Duration, itemsFound, itemsInserted, itemsDuplicated int64) {
	id := fmt.Sprintf("%d", sourceID)

	FeedCrawlDuration.WithLabelValues(id).Observe(duration.Seconds())

	if itemsFound > 0 {
		ArticlesFetchedTotal.WithLabelValues(id).Add(float64(itemsFound))
	}
	if itemsInserted > 0 {
		ArticlesIngestedTotal.WithLabelValues(id).Add(float64(itemsInserted))
	}
	if itemsDuplicated > 0 {
		ArticlesDuplicatedTotal.WithLabelValues(id).Add(float64(itemsDuplicated))
	}
}

// RecordFeedCrawlError records an error during feed crawling.
func RecordFeedCrawlError(sourceID int64, errorType string) {
	FeedCrawlErrors.WithLabelValues(
		fmt.Sprintf("%d", sourceID),
		errorType,
	).Inc()
}

// RecordPaywallCheck records the outcome of a completed paywall probe.
func RecordPaywallCheck(paywalled bool) {
	result := "clear"
	if paywalled {
		result = "paywalled"
	}
	PaywallChecksTotal.WithLabelValues(result).Inc()
}

// RecordPaywallCheckError records a paywall probe that failed to complete.
// Probe failures are treated as not paywalled, so this counter is the only
// place those failures remain visible.
func RecordPaywallCheckError() {
	PaywallChecksTotal.WithLabelValues("error").Inc()
}

// RecordExtractionSuccess records a successful content extraction.
// This tracks both the duration and size of the extracted text.
//
// Example:
//
//	start := time.Now()
//	res, err := extractor.Extract(ctx, url)
//	if err == nil {
//	    RecordExtractionSuccess(time.Since(start), len(res.Text))
//	}
func RecordExtractionSuccess(duration time.Duration, size int) {
	ExtractionAttemptsTotal.WithLabelValues("success").Inc()
	ExtractionDuration.Observe(duration.Seconds())
	ExtractionSize.Observe(float64(size))
}

// RecordExtractionFailed records a failed content extraction.
func RecordExtractionFailed(duration time.Duration) {
	ExtractionAttemptsTotal.WithLabelValues("failure").Inc()
	ExtractionDuration.Observe(duration.Seconds())
}

// RecordExtractionSkipped records an extraction that was not attempted,
// typically because the article is paywalled.
func RecordExtractionSkipped() {
	ExtractionAttemptsTotal.WithLabelValues("skipped").Inc()
}

// RecordIngestPass records the duration of a full ingestion pass.
func RecordIngestPass(duration time.Duration) {
	IngestPassDuration.Observe(duration.Seconds())
}

// UpdateArticlesTotal updates the total count of articles in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdateArticlesTotal(count int64) {
	ArticlesTotal.Set(float64(count))
}

// UpdateSourcesTotal updates the total count of sources in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdateSourcesTotal(count int64) {
	SourcesTotal.Set(float64(count))
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "article_list", "article_create").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
