// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Article, Source and PreferencePolicy,
// along with their validation rules and domain-specific errors.
package entity

import "time"

// Article represents a news article ingested from a feed source.
// An article is created exactly once per canonical URL and is never
// updated afterwards; re-ingesting the same URL is a no-op.
type Article struct {
	ID        int64
	SourceID  int64
	Title     string
	URL       string
	Author    *string
	Summary   string
	Content   *string
	ImageURL  *string
	Paywalled bool
	// Classification is nil when content extraction never produced text
	// (paywalled articles, extraction failures).
	Classification *Classification
	PublishedAt    time.Time
	CreatedAt      time.Time
}

// Classification is the heuristic score bundle computed once at ingestion
// time from the extracted content. It is immutable after creation.
//
// All four scores live on a 1-10 scale. BiasScore and PropagandaScore are
// inverted quality scores: 10 means neutral / no propaganda detected.
type Classification struct {
	ReadingLevel       float64
	InformationDensity float64
	BiasScore          float64
	PropagandaScore    float64
	WordCount          int
	Topics             []string
	Region             string
}

// IsClassified reports whether the article carries a classification.
// Only classified articles participate in preference-filtered listings.
func (a *Article) IsClassified() bool {
	return a.Classification != nil
}
