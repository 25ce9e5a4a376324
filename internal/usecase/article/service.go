package article

import (
	"context"
	"fmt"

	"balanced-news/internal/domain/entity"
	"balanced-news/internal/observability/metrics"
	"balanced-news/internal/repository"
)

// Page size bounds for listings.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// ListInput carries the paging window and the caller's preference policy.
// A nil Policy means anonymous access: the unfiltered, most-recent-first
// page.
type ListInput struct {
	Limit  int
	Skip   int
	Policy *entity.PreferencePolicy
}

func (in ListInput) normalized() ListInput {
	if in.Limit <= 0 {
		in.Limit = DefaultLimit
	}
	if in.Limit > MaxLimit {
		in.Limit = MaxLimit
	}
	if in.Skip < 0 {
		in.Skip = 0
	}
	return in
}

// StatsOutput aggregates feed and article counts for the stats endpoint.
// Distributions count sources per category and per region.
type StatsOutput struct {
	TotalFeeds        int64
	ActiveFeeds       int64
	TotalArticles     int64
	PaywalledArticles int64
	Categories        map[string]int64
	Regions           map[string]int64
}

// Service provides article read use cases. Listing is preference-aware;
// everything the store's query layer can express travels in the query, and
// the numeric score bands are applied as a residual in-app pass.
type Service struct {
	Repo       repository.ArticleRepository
	SourceRepo repository.SourceRepository
}

// List returns a page of articles, newest first. With a policy the store
// query carries the membership predicates (paywall visibility, topics,
// regions, word-count range) and the residual numeric-band filter runs over
// the returned page, so a filtered page may come back shorter than the
// requested limit.
func (s *Service) List(ctx context.Context, in ListInput) ([]*entity.Article, error) {
	in = in.normalized()

	q := repository.ArticleQuery{Limit: in.Limit, Skip: in.Skip}
	if in.Policy == nil {
		articles, err := s.Repo.ListByQuery(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("list articles: %w", err)
		}
		return articles, nil
	}

	p := in.Policy
	q.HidePaywalled = !p.ShowPaywalled
	q.Topics = p.Topics
	q.TopicsMode = p.TopicsMode
	q.Regions = p.Regions
	minActive, maxActive := p.LengthRangeActive()
	if minActive {
		q.MinWordCount = p.MinLength
	}
	if maxActive {
		q.MaxWordCount = p.MaxLength
	}

	candidates, err := s.Repo.ListByQuery(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	// スコアの帯域条件はストア側で表現できないので残余フィルタで落とす
	filtered := make([]*entity.Article, 0, len(candidates))
	for _, a := range candidates {
		if p.Matches(a) {
			filtered = append(filtered, a)
		}
	}
	if len(filtered) > in.Limit {
		filtered = filtered[:in.Limit]
	}
	return filtered, nil
}

// Get retrieves a single article by its ID.
// Returns ErrInvalidArticleID if the ID is not positive.
// Returns ErrArticleNotFound if the article does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Article, error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}

	article, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

// Stats aggregates the stored corpus: feed totals with category and region
// distributions, article totals with the paywalled share. The totals also
// refresh the corresponding gauges.
func (s *Service) Stats(ctx context.Context) (*StatsOutput, error) {
	artStats, err := s.Repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("article stats: %w", err)
	}
	srcStats, err := s.SourceRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("source stats: %w", err)
	}

	metrics.UpdateArticlesTotal(artStats.Total)
	metrics.UpdateSourcesTotal(srcStats.Total)

	return &StatsOutput{
		TotalFeeds:        srcStats.Total,
		ActiveFeeds:       srcStats.Active,
		TotalArticles:     artStats.Total,
		PaywalledArticles: artStats.Paywalled,
		Categories:        srcStats.ByCategory,
		Regions:           srcStats.ByRegion,
	}, nil
}
