package repository

import (
	"context"

	"balanced-news/internal/domain/entity"
)

type PreferenceRepository interface {
	// Get returns the stored policy for the user, or (nil, nil) when the
	// user never saved one. Callers fall back to the defaults.
	Get(ctx context.Context, userID string) (*entity.PreferencePolicy, error)
	// Put inserts or replaces the user's policy.
	Put(ctx context.Context, userID string, policy *entity.PreferencePolicy) error
}
