// Package source provides HTTP handlers for the feed registry endpoints.
package source

import (
	"time"

	"balanced-news/internal/domain/entity"
)

// DTO represents the JSON structure for feed source data transfer.
type DTO struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	Category      string     `json:"category"`
	Region        string     `json:"region"`
	Active        bool       `json:"active"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toDTO(s *entity.Source) DTO {
	return DTO{
		ID:            s.ID,
		Name:          s.Name,
		URL:           s.FeedURL,
		Category:      s.Category,
		Region:        s.Region,
		Active:        s.Active,
		LastCheckedAt: s.LastCheckedAt,
		CreatedAt:     s.CreatedAt,
	}
}
