package entity

import (
	"fmt"
	"time"
)

// Default tags applied to sources created without an explicit category or region.
const (
	DefaultCategory = "general"
	DefaultRegion   = "global"
)

// maxSourceNameLength bounds display names to keep listings and logs sane.
const maxSourceNameLength = 255

// Source represents a news feed source in the registry.
// It contains the feed URL, display metadata and polling status.
// FeedURL is unique across all sources.
type Source struct {
	ID            int64
	Name          string
	FeedURL       string
	Category      string
	Region        string
	Active        bool
	LastCheckedAt *time.Time
	CreatedAt     time.Time
}

// Validate validates the Source entity fields and fills tag defaults.
func (s *Source) Validate() error {
	if s.Name == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if len([]rune(s.Name)) > maxSourceNameLength {
		return &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("must not exceed %d characters", maxSourceNameLength),
		}
	}
	if err := ValidateURL(s.FeedURL); err != nil {
		return err
	}

	// カテゴリ・リージョンが空の場合はデフォルト値を適用
	if s.Category == "" {
		s.Category = DefaultCategory
	}
	if s.Region == "" {
		s.Region = DefaultRegion
	}

	return nil
}
