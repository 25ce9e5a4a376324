// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"fmt"
	"strings"

	"balanced-news/internal/domain/entity"
	"balanced-news/internal/repository"

	"github.com/lib/pq"
)

// ArticleQueryBuilder builds WHERE clauses from repository.ArticleQuery
// predicates. The builder is shared between COUNT and SELECT queries so the
// two can never disagree. PostgreSQL-specific: array containment/overlap
// operators and numbered placeholders ($1, $2, etc.).
type ArticleQueryBuilder struct{}

// NewArticleQueryBuilder creates a new query builder instance.
func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{}
}

// BuildWhereClause renders the query's store-side predicates.
// Returns an empty clause when the query carries no predicates.
//
// Topic, region and word-count predicates compare classification columns,
// which are NULL on unclassified rows; such rows drop out of any filtered
// listing, which is exactly the read-path contract.
func (qb *ArticleQueryBuilder) BuildWhereClause(q repository.ArticleQuery) (clause string, args []interface{}) {
	var conditions []string
	paramIndex := 1

	if q.HidePaywalled {
		conditions = append(conditions, "paywalled = FALSE")
	}

	if len(q.Topics) > 0 {
		// ALL は配列包含 (@>)、ANY は配列重複 (&&) で表現する
		op := "&&"
		if q.TopicsMode == entity.TopicsModeAll {
			op = "@>"
		}
		conditions = append(conditions, fmt.Sprintf("topics %s $%d", op, paramIndex))
		args = append(args, pq.Array(q.Topics))
		paramIndex++
	}

	if len(q.Regions) > 0 {
		conditions = append(conditions, fmt.Sprintf("region = ANY($%d)", paramIndex))
		args = append(args, pq.Array(q.Regions))
		paramIndex++
	}

	if q.MinWordCount > 0 {
		conditions = append(conditions, fmt.Sprintf("word_count >= $%d", paramIndex))
		args = append(args, q.MinWordCount)
		paramIndex++
	}
	if q.MaxWordCount > 0 {
		conditions = append(conditions, fmt.Sprintf("word_count <= $%d", paramIndex))
		args = append(args, q.MaxWordCount)
	}

	if len(conditions) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}
