// Package article provides HTTP handlers for the read-only article endpoints.
package article

import (
	"time"

	"balanced-news/internal/domain/entity"
)

// DTO represents the JSON structure for article data transfer.
type DTO struct {
	ID             int64              `json:"id"`
	SourceID       int64              `json:"source_id"`
	Title          string             `json:"title"`
	URL            string             `json:"url"`
	Author         *string            `json:"author,omitempty"`
	Summary        string             `json:"summary,omitempty"`
	Content        *string            `json:"content,omitempty"`
	ImageURL       *string            `json:"image_url,omitempty"`
	Paywalled      bool               `json:"paywalled"`
	Classification *ClassificationDTO `json:"classification,omitempty"`
	PublishedAt    time.Time          `json:"published_at"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ClassificationDTO carries the heuristic scores computed at ingestion time.
type ClassificationDTO struct {
	ReadingLevel       float64  `json:"reading_level"`
	InformationDensity float64  `json:"information_density"`
	BiasScore          float64  `json:"bias_score"`
	PropagandaScore    float64  `json:"propaganda_score"`
	WordCount          int      `json:"word_count"`
	Topics             []string `json:"topics"`
	Region             string   `json:"region"`
}

func toDTO(a *entity.Article) DTO {
	dto := DTO{
		ID:          a.ID,
		SourceID:    a.SourceID,
		Title:       a.Title,
		URL:         a.URL,
		Author:      a.Author,
		Summary:     a.Summary,
		Content:     a.Content,
		ImageURL:    a.ImageURL,
		Paywalled:   a.Paywalled,
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
	}
	if a.Classification != nil {
		dto.Classification = &ClassificationDTO{
			ReadingLevel:       a.Classification.ReadingLevel,
			InformationDensity: a.Classification.InformationDensity,
			BiasScore:          a.Classification.BiasScore,
			PropagandaScore:    a.Classification.PropagandaScore,
			WordCount:          a.Classification.WordCount,
			Topics:             a.Classification.Topics,
			Region:             a.Classification.Region,
		}
	}
	return dto
}
