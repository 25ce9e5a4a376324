package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"balanced-news/internal/domain/entity"
	"balanced-news/internal/repository"

	"github.com/lib/pq"
)

type PreferenceRepo struct{ db *sql.DB }

func NewPreferenceRepo(db *sql.DB) repository.PreferenceRepository {
	return &PreferenceRepo{db: db}
}

func (repo *PreferenceRepo) Get(ctx context.Context, userID string) (*entity.PreferencePolicy, error) {
	const query = `
SELECT reading_level, information_density, bias_threshold, propaganda_threshold,
       min_length, max_length, topics, topics_mode, regions, show_paywalled
FROM preferences
WHERE user_id = $1
LIMIT 1`
	var (
		policy          entity.PreferencePolicy
		topics, regions pq.StringArray
	)
	err := repo.db.QueryRowContext(ctx, query, userID).Scan(
		&policy.ReadingLevel, &policy.InformationDensity,
		&policy.BiasThreshold, &policy.PropagandaThreshold,
		&policy.MinLength, &policy.MaxLength,
		&topics, &policy.TopicsMode, &regions, &policy.ShowPaywalled,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	policy.Topics = []string(topics)
	policy.Regions = []string(regions)
	return &policy, nil
}

func (repo *PreferenceRepo) Put(ctx context.Context, userID string, policy *entity.PreferencePolicy) error {
	const query = `
INSERT INTO preferences
       (user_id, reading_level, information_density, bias_threshold, propaganda_threshold,
        min_length, max_length, topics, topics_mode, regions, show_paywalled, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (user_id) DO UPDATE SET
       reading_level        = EXCLUDED.reading_level,
       information_density  = EXCLUDED.information_density,
       bias_threshold       = EXCLUDED.bias_threshold,
       propaganda_threshold = EXCLUDED.propaganda_threshold,
       min_length           = EXCLUDED.min_length,
       max_length           = EXCLUDED.max_length,
       topics               = EXCLUDED.topics,
       topics_mode          = EXCLUDED.topics_mode,
       regions              = EXCLUDED.regions,
       show_paywalled       = EXCLUDED.show_paywalled,
       updated_at           = EXCLUDED.updated_at`
	_, err := repo.db.ExecContext(ctx, query,
		userID, policy.ReadingLevel, policy.InformationDensity,
		policy.BiasThreshold, policy.PropagandaThreshold,
		policy.MinLength, policy.MaxLength,
		pq.Array(policy.Topics), policy.TopicsMode, pq.Array(policy.Regions),
		policy.ShowPaywalled, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("Put: %w", err)
	}
	return nil
}
