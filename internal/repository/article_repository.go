package repository

import (
	"context"

	"balanced-news/internal/domain/entity"
)

// ArticleQuery describes the store-side predicates for listing articles.
// Zero values mean "no constraint"; Limit must be set by the caller.
// Results are always ordered by published_at DESC.
type ArticleQuery struct {
	HidePaywalled bool
	// Topics filters on classification topic tags. TopicsMode selects whether
	// an article must carry all of them or at least one.
	Topics     []string
	TopicsMode string
	Regions    []string
	// Word-count band from the classification. Max <= 0 disables the upper
	// bound.
	MinWordCount int
	MaxWordCount int
	Limit        int
	Skip         int
}

// ArticleStats aggregates stored articles for the stats endpoint.
type ArticleStats struct {
	Total     int64
	Paywalled int64
}

type ArticleRepository interface {
	// Create persists a new article. The store enforces URL uniqueness;
	// a conflicting insert returns entity.ErrDuplicateArticle.
	Create(ctx context.Context, article *entity.Article) error
	Get(ctx context.Context, id int64) (*entity.Article, error)
	// ListByQuery retrieves articles matching the query predicates,
	// newest first, honoring Skip and Limit.
	ListByQuery(ctx context.Context, q ArticleQuery) ([]*entity.Article, error)
	// CountByQuery returns the number of articles matching the query
	// predicates, ignoring Skip and Limit.
	CountByQuery(ctx context.Context, q ArticleQuery) (int64, error)
	// ExistsByURL は取り込み前の重複チェックに使う。最終的な番人は一意制約。
	ExistsByURL(ctx context.Context, url string) (bool, error)
	Stats(ctx context.Context) (ArticleStats, error)
}
