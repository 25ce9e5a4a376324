package repository

import (
	"context"
	"time"

	"balanced-news/internal/domain/entity"
)

// SourceStats aggregates registered feeds for the stats endpoint.
// Distributions are over sources, not articles.
type SourceStats struct {
	Total      int64
	Active     int64
	ByCategory map[string]int64
	ByRegion   map[string]int64
}

type SourceRepository interface {
	Get(ctx context.Context, id int64) (*entity.Source, error)
	List(ctx context.Context) ([]*entity.Source, error)
	ListActive(ctx context.Context) ([]*entity.Source, error)
	// Create persists a new source. The store enforces feed-URL uniqueness;
	// a conflicting insert returns entity.ErrDuplicateSource.
	Create(ctx context.Context, source *entity.Source) error
	Delete(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error
	// TouchLastChecked records when a poll pass last visited the source,
	// regardless of whether the fetch succeeded.
	TouchLastChecked(ctx context.Context, id int64, t time.Time) error
	Stats(ctx context.Context) (SourceStats, error)
}
