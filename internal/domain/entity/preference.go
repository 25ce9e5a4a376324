package entity

import "fmt"

// Topic combination modes for PreferencePolicy.
const (
	// TopicsModeAny keeps articles whose topic set intersects the allow-set.
	TopicsModeAny = "ANY"
	// TopicsModeAll keeps articles whose topic set is a superset of the allow-set.
	TopicsModeAll = "ALL"
)

// Preference defaults. MinLength 0 and MaxLength 5000 mark the word-count
// range as inactive; any narrower range participates in store-level filtering.
const (
	DefaultTargetScore    = 5
	DefaultScoreTolerance = 2
	DefaultMinLength      = 0
	DefaultMaxLength      = 5000

	minScore = 1
	maxScore = 10
)

// PreferencePolicy is a user's read-time filter profile. It never affects
// ingestion; the Preference Filter applies it over already-persisted,
// already-classified articles.
type PreferencePolicy struct {
	ReadingLevel        float64
	InformationDensity  float64
	BiasThreshold       float64
	PropagandaThreshold float64
	MinLength           int
	MaxLength           int
	Topics              []string
	TopicsMode          string
	Regions             []string
	ShowPaywalled       bool
}

// DefaultPreferencePolicy returns the policy applied to users who never
// saved preferences: middle targets, thresholds at 5, no topic/region
// restrictions, paywalled content visible.
func DefaultPreferencePolicy() PreferencePolicy {
	return PreferencePolicy{
		ReadingLevel:        DefaultTargetScore,
		InformationDensity:  DefaultTargetScore,
		BiasThreshold:       DefaultTargetScore,
		PropagandaThreshold: DefaultTargetScore,
		MinLength:           DefaultMinLength,
		MaxLength:           DefaultMaxLength,
		Topics:              []string{},
		TopicsMode:          TopicsModeAny,
		Regions:             []string{},
		ShowPaywalled:       true,
	}
}

// Validate checks that the policy's numeric fields are inside their
// documented ranges. Returns a ValidationError naming the offending field.
func (p *PreferencePolicy) Validate() error {
	checks := []struct {
		field string
		value float64
	}{
		{"reading_level", p.ReadingLevel},
		{"information_density", p.InformationDensity},
		{"bias_threshold", p.BiasThreshold},
		{"propaganda_threshold", p.PropagandaThreshold},
	}
	for _, c := range checks {
		if c.value < minScore || c.value > maxScore {
			return &ValidationError{
				Field:   c.field,
				Message: fmt.Sprintf("must be between %d and %d", minScore, maxScore),
			}
		}
	}

	if p.MinLength < 0 {
		return &ValidationError{Field: "min_length", Message: "must not be negative"}
	}
	if p.MaxLength < p.MinLength {
		return &ValidationError{Field: "max_length", Message: "must not be below min_length"}
	}
	if p.TopicsMode != TopicsModeAny && p.TopicsMode != TopicsModeAll {
		return &ValidationError{
			Field:   "topics_mode",
			Message: fmt.Sprintf("must be %q or %q", TopicsModeAny, TopicsModeAll),
		}
	}
	return nil
}

// Matches applies the residual numeric-band filter that the store's query
// layer cannot express: classification presence, the ±2 tolerance bands
// around the reading-level and density targets, and the bias/propaganda
// minimum thresholds. Set-membership and range predicates (topics, regions,
// paywall, word count) are assumed to be handled by the store query.
func (p *PreferencePolicy) Matches(a *Article) bool {
	if a == nil || a.Classification == nil {
		return false
	}
	c := a.Classification

	if c.ReadingLevel < p.ReadingLevel-DefaultScoreTolerance ||
		c.ReadingLevel > p.ReadingLevel+DefaultScoreTolerance {
		return false
	}
	if c.InformationDensity < p.InformationDensity-DefaultScoreTolerance ||
		c.InformationDensity > p.InformationDensity+DefaultScoreTolerance {
		return false
	}
	if c.BiasScore < p.BiasThreshold {
		return false
	}
	if c.PropagandaScore < p.PropagandaThreshold {
		return false
	}
	return true
}

// LengthRangeActive reports whether the word-count range narrows the default
// [0, 5000) window and therefore must reach the store query.
func (p *PreferencePolicy) LengthRangeActive() (minActive, maxActive bool) {
	return p.MinLength > DefaultMinLength, p.MaxLength < DefaultMaxLength
}
