// Package preference provides HTTP handlers for the per-user reading
// preference endpoints. Both endpoints require a verified bearer token.
package preference

import (
	"balanced-news/internal/domain/entity"
)

// DTO is the JSON shape of a preference policy.
type DTO struct {
	ReadingLevel        float64  `json:"reading_level"`
	InformationDensity  float64  `json:"information_density"`
	BiasThreshold       float64  `json:"bias_threshold"`
	PropagandaThreshold float64  `json:"propaganda_threshold"`
	MinLength           int      `json:"min_length"`
	MaxLength           int      `json:"max_length"`
	Topics              []string `json:"topics"`
	TopicsMode          string   `json:"topics_mode"`
	Regions             []string `json:"regions"`
	ShowPaywalled       bool     `json:"show_paywalled"`
}

func fromPolicy(p *entity.PreferencePolicy) DTO {
	return DTO{
		ReadingLevel:        p.ReadingLevel,
		InformationDensity:  p.InformationDensity,
		BiasThreshold:       p.BiasThreshold,
		PropagandaThreshold: p.PropagandaThreshold,
		MinLength:           p.MinLength,
		MaxLength:           p.MaxLength,
		Topics:              p.Topics,
		TopicsMode:          p.TopicsMode,
		Regions:             p.Regions,
		ShowPaywalled:       p.ShowPaywalled,
	}
}

func (d DTO) toPolicy() entity.PreferencePolicy {
	topics := d.Topics
	if topics == nil {
		topics = []string{}
	}
	regions := d.Regions
	if regions == nil {
		regions = []string{}
	}
	return entity.PreferencePolicy{
		ReadingLevel:        d.ReadingLevel,
		InformationDensity:  d.InformationDensity,
		BiasThreshold:       d.BiasThreshold,
		PropagandaThreshold: d.PropagandaThreshold,
		MinLength:           d.MinLength,
		MaxLength:           d.MaxLength,
		Topics:              topics,
		TopicsMode:          d.TopicsMode,
		Regions:             regions,
		ShowPaywalled:       d.ShowPaywalled,
	}
}
