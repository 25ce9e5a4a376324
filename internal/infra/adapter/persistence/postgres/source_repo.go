package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"balanced-news/internal/domain/entity"
	"balanced-news/internal/repository"
)

const sourceColumns = `id, name, feed_url, category, region, active, last_checked_at, created_at`

type SourceRepo struct{ db *sql.DB }

func NewSourceRepo(db *sql.DB) repository.SourceRepository {
	return &SourceRepo{db: db}
}

// scanSource reads one row in sourceColumns order. last_checked_at is NULL
// until the first poll pass visits the source.
func scanSource(s rowScanner) (*entity.Source, error) {
	var source entity.Source
	if err := s.Scan(
		&source.ID, &source.Name, &source.FeedURL, &source.Category,
		&source.Region, &source.Active, &source.LastCheckedAt, &source.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &source, nil
}

func (repo *SourceRepo) Get(ctx context.Context, id int64) (*entity.Source, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM sources
WHERE id = $1
LIMIT 1`, sourceColumns)
	source, err := scanSource(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return source, nil
}

func (repo *SourceRepo) List(ctx context.Context) ([]*entity.Source, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM sources
ORDER BY id ASC`, sourceColumns)
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// パフォーマンス最適化: メモリ再割り当てを削減するため事前割り当て
	sources := make([]*entity.Source, 0, 50)
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

func (repo *SourceRepo) ListActive(ctx context.Context) ([]*entity.Source, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM sources
WHERE active = TRUE
ORDER BY id ASC`, sourceColumns)
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListActive: %w", err)
	}
	defer func() { _ = rows.Close() }()

	active := make([]*entity.Source, 0, 50)
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActive: %w", err)
		}
		active = append(active, source)
	}
	return active, rows.Err()
}

func (repo *SourceRepo) Create(ctx context.Context, source *entity.Source) error {
	const query = `
INSERT INTO sources (name, feed_url, category, region, active, last_checked_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		source.Name, source.FeedURL, source.Category, source.Region,
		source.Active, source.LastCheckedAt, source.CreatedAt,
	).Scan(&source.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: %w", entity.ErrDuplicateSource)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *SourceRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM sources WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *SourceRepo) SetActive(ctx context.Context, id int64, active bool) error {
	const query = `UPDATE sources SET active = $1 WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("SetActive: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("SetActive: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *SourceRepo) TouchLastChecked(ctx context.Context, id int64, t time.Time) error {
	const query = `UPDATE sources SET last_checked_at = $1 WHERE id = $2`
	_, err := repo.db.ExecContext(ctx, query, t, id)
	return err
}

func (repo *SourceRepo) Stats(ctx context.Context) (repository.SourceStats, error) {
	stats := repository.SourceStats{
		ByCategory: make(map[string]int64),
		ByRegion:   make(map[string]int64),
	}

	const totalsQuery = `SELECT COUNT(*), COUNT(*) FILTER (WHERE active) FROM sources`
	if err := repo.db.QueryRowContext(ctx, totalsQuery).Scan(&stats.Total, &stats.Active); err != nil {
		return repository.SourceStats{}, fmt.Errorf("Stats: totals: %w", err)
	}

	groupCounts := func(query string, into map[string]int64) error {
		rows, err := repo.db.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var key string
			var count int64
			if err := rows.Scan(&key, &count); err != nil {
				return err
			}
			into[key] = count
		}
		return rows.Err()
	}

	if err := groupCounts(`SELECT category, COUNT(*) FROM sources GROUP BY category`, stats.ByCategory); err != nil {
		return repository.SourceStats{}, fmt.Errorf("Stats: categories: %w", err)
	}
	if err := groupCounts(`SELECT region, COUNT(*) FROM sources GROUP BY region`, stats.ByRegion); err != nil {
		return repository.SourceStats{}, fmt.Errorf("Stats: regions: %w", err)
	}
	return stats, nil
}
