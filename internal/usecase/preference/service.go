// Package preference provides use cases for a user's read-time filter
// profile. Policies apply only at read time; ingestion never consults them.
package preference

import (
	"context"
	"fmt"

	"balanced-news/internal/domain/entity"
	"balanced-news/internal/repository"
)

// Service provides preference policy use cases.
type Service struct {
	Repo repository.PreferenceRepository
}

// Get returns the user's saved policy, or the defaults when the user never
// saved one. Saving is therefore never required before reading.
func (s *Service) Get(ctx context.Context, userID string) (*entity.PreferencePolicy, error) {
	if userID == "" {
		return nil, &entity.ValidationError{Field: "user_id", Message: "is required"}
	}

	policy, err := s.Repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	if policy == nil {
		def := entity.DefaultPreferencePolicy()
		return &def, nil
	}
	return policy, nil
}

// Put validates and stores the user's policy, replacing any previous one.
// Returns a ValidationError when the policy is out of range.
func (s *Service) Put(ctx context.Context, userID string, policy *entity.PreferencePolicy) error {
	if userID == "" {
		return &entity.ValidationError{Field: "user_id", Message: "is required"}
	}
	if policy == nil {
		return &entity.ValidationError{Field: "policy", Message: "is required"}
	}
	if err := policy.Validate(); err != nil {
		return err
	}

	if err := s.Repo.Put(ctx, userID, policy); err != nil {
		return fmt.Errorf("put preferences: %w", err)
	}
	return nil
}
