// Package article provides read-side use cases over stored articles:
// preference-aware listing, lookup by ID, and corpus statistics. Articles
// are written only by the ingestion pipeline; this package never mutates.
package article

import "errors"

// Sentinel errors for article use case operations.
var (
	// ErrArticleNotFound indicates that the requested article was not found.
	ErrArticleNotFound = errors.New("article not found")

	// ErrInvalidArticleID indicates that the provided article ID is invalid.
	// Article IDs must be positive integers.
	ErrInvalidArticleID = errors.New("invalid article ID")
)
