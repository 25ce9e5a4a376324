package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"balanced-news/internal/domain/entity"
	"balanced-news/internal/observability/metrics"
	"balanced-news/internal/repository"

	"github.com/lib/pq"
)

// articleColumns is the canonical column list shared by every full-row
// SELECT; scanArticle depends on this exact order.
const articleColumns = `id, source_id, title, url, author, summary, content, image_url, paywalled,
       reading_level, information_density, bias_score, propaganda_score, word_count, topics, region,
       published_at, created_at`

type ArticleRepo struct {
	db           *sql.DB
	queryBuilder *ArticleQueryBuilder
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{
		db:           db,
		queryBuilder: NewArticleQueryBuilder(),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanArticle reads one row in articleColumns order and reassembles the
// classification bundle. The classification columns are written together or
// not at all, so reading_level doubles as the presence marker.
func scanArticle(s rowScanner) (*entity.Article, error) {
	var (
		article                           entity.Article
		author, content, imageURL, region sql.NullString
		readingLevel, density             sql.NullFloat64
		bias, propaganda                  sql.NullFloat64
		wordCount                         sql.NullInt64
		topics                            pq.StringArray
	)
	if err := s.Scan(&article.ID, &article.SourceID, &article.Title, &article.URL,
		&author, &article.Summary, &content, &imageURL, &article.Paywalled,
		&readingLevel, &density, &bias, &propaganda, &wordCount, &topics, &region,
		&article.PublishedAt, &article.CreatedAt); err != nil {
		return nil, err
	}
	if author.Valid {
		article.Author = &author.String
	}
	if content.Valid {
		article.Content = &content.String
	}
	if imageURL.Valid {
		article.ImageURL = &imageURL.String
	}
	if readingLevel.Valid {
		article.Classification = &entity.Classification{
			ReadingLevel:       readingLevel.Float64,
			InformationDensity: density.Float64,
			BiasScore:          bias.Float64,
			PropagandaScore:    propaganda.Float64,
			WordCount:          int(wordCount.Int64),
			Topics:             []string(topics),
			Region:             region.String,
		}
	}
	return &article, nil
}

func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	const query = `
INSERT INTO articles
       (source_id, title, url, author, summary, content, image_url, paywalled,
        reading_level, information_density, bias_score, propaganda_score,
        word_count, topics, region, published_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	// 未分類の記事は分類カラムをすべて NULL にする
	var (
		readingLevel, density, bias, propaganda any
		wordCount, topics, region               any
	)
	if c := article.Classification; c != nil {
		readingLevel, density = c.ReadingLevel, c.InformationDensity
		bias, propaganda = c.BiasScore, c.PropagandaScore
		wordCount, topics, region = c.WordCount, pq.Array(c.Topics), c.Region
	}

	start := time.Now()
	_, err := repo.db.ExecContext(ctx, query,
		article.SourceID, article.Title, article.URL, article.Author,
		article.Summary, article.Content, article.ImageURL, article.Paywalled,
		readingLevel, density, bias, propaganda, wordCount, topics, region,
		article.PublishedAt, article.CreatedAt,
	)
	metrics.RecordDBQuery("article_create", time.Since(start))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: %w", entity.ErrDuplicateArticle)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM articles
WHERE id = $1
LIMIT 1`, articleColumns)
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) ListByQuery(ctx context.Context, q repository.ArticleQuery) ([]*entity.Article, error) {
	whereClause, args := repo.queryBuilder.BuildWhereClause(q)
	paramIndex := len(args) + 1
	args = append(args, q.Limit, q.Skip)

	query := fmt.Sprintf(`
SELECT %s
FROM articles
%s
ORDER BY published_at DESC
LIMIT $%d OFFSET $%d`, articleColumns, whereClause, paramIndex, paramIndex+1)

	start := time.Now()
	rows, err := repo.db.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("article_list", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("ListByQuery: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// パフォーマンス最適化: メモリ再割り当てを削減するため事前割り当て
	articles := make([]*entity.Article, 0, q.Limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByQuery: Scan: %w", err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// CountByQuery returns the number of articles matching the query predicates.
// Skip and Limit are ignored; the clause comes from the same builder as
// ListByQuery.
func (repo *ArticleRepo) CountByQuery(ctx context.Context, q repository.ArticleQuery) (int64, error) {
	whereClause, args := repo.queryBuilder.BuildWhereClause(q)
	query := "SELECT COUNT(*) FROM articles " + whereClause

	var count int64
	if err := repo.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountByQuery: %w", err)
	}
	return count, nil
}

func (repo *ArticleRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM articles WHERE url = $1)`
	var existsFlag bool
	start := time.Now()
	err := repo.db.QueryRowContext(ctx, query, url).Scan(&existsFlag)
	metrics.RecordDBQuery("article_exists_by_url", time.Since(start))
	if err != nil {
		return false, fmt.Errorf("ExistsByURL: %w", err)
	}
	return existsFlag, nil
}

func (repo *ArticleRepo) Stats(ctx context.Context) (repository.ArticleStats, error) {
	const query = `SELECT COUNT(*), COUNT(*) FILTER (WHERE paywalled) FROM articles`
	var stats repository.ArticleStats
	if err := repo.db.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Paywalled); err != nil {
		return repository.ArticleStats{}, fmt.Errorf("Stats: %w", err)
	}
	return stats, nil
}
