package db

import (
	"database/sql"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seeds/sources.yaml
var seedSourcesYAML []byte

// SeedSource is one entry of the embedded feed manifest.
type SeedSource struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
	Region   string `yaml:"region"`
}

type seedManifest struct {
	Sources []SeedSource `yaml:"sources"`
}

// SeedSources returns the feeds in the embedded manifest. Diagnostics use
// it to probe the registry without a database.
func SeedSources() ([]SeedSource, error) {
	var manifest seedManifest
	if err := yaml.Unmarshal(seedSourcesYAML, &manifest); err != nil {
		return nil, fmt.Errorf("parse seed manifest: %w", err)
	}
	return manifest.Sources, nil
}

func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS sources (
    id              BIGSERIAL PRIMARY KEY,
    name            TEXT NOT NULL,
    feed_url        TEXT NOT NULL UNIQUE,
    category        TEXT NOT NULL DEFAULT 'general',
    region          TEXT NOT NULL DEFAULT 'global',
    active          BOOLEAN NOT NULL DEFAULT TRUE,
    last_checked_at TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	// 分類カラムは記事作成時に一括で書き込まれるか、すべて NULL のまま
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id                  BIGSERIAL PRIMARY KEY,
    source_id           BIGINT REFERENCES sources(id) ON DELETE CASCADE,
    title               TEXT NOT NULL,
    url                 TEXT NOT NULL UNIQUE,
    author              TEXT,
    summary             TEXT,
    content             TEXT,
    image_url           TEXT,
    paywalled           BOOLEAN NOT NULL DEFAULT FALSE,
    reading_level       DOUBLE PRECISION,
    information_density DOUBLE PRECISION,
    bias_score          DOUBLE PRECISION,
    propaganda_score    DOUBLE PRECISION,
    word_count          INTEGER,
    topics              TEXT[],
    region              TEXT,
    published_at        TIMESTAMPTZ,
    created_at          TIMESTAMPTZ DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS preferences (
    user_id              TEXT PRIMARY KEY,
    reading_level        DOUBLE PRECISION NOT NULL,
    information_density  DOUBLE PRECISION NOT NULL,
    bias_threshold       DOUBLE PRECISION NOT NULL,
    propaganda_threshold DOUBLE PRECISION NOT NULL,
    min_length           INTEGER NOT NULL,
    max_length           INTEGER NOT NULL,
    topics               TEXT[] NOT NULL DEFAULT '{}',
    topics_mode          TEXT NOT NULL DEFAULT 'ANY',
    regions              TEXT[] NOT NULL DEFAULT '{}',
    show_paywalled       BOOLEAN NOT NULL DEFAULT TRUE,
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	// パフォーマンス最適化: インデックス追加
	indexes := []string{
		// ORDER BY published_at DESC で使用(全一覧クエリで使用)
		`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at DESC)`,
		// ソース別記事取得用
		`CREATE INDEX IF NOT EXISTS idx_articles_source_id ON articles(source_id)`,
		// トピック配列の && / @> 述語用 GIN インデックス
		`CREATE INDEX IF NOT EXISTS idx_articles_topics_gin ON articles USING gin(topics)`,
		// リージョン・語数の絞り込み用
		`CREATE INDEX IF NOT EXISTS idx_articles_region ON articles(region)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_word_count ON articles(word_count)`,
		// アクティブソース絞り込み用(WHERE active = TRUE)
		`CREATE INDEX IF NOT EXISTS idx_sources_active ON sources(active) WHERE active = TRUE`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// シードデータの投入(登録済みフィードは自動的にスキップ)
	return seedSources(db)
}

// seedSources parses the embedded feed manifest and registers every feed
// that is not present yet. Re-running migrations never duplicates or
// reactivates a feed the operator already removed or disabled.
func seedSources(db *sql.DB) error {
	seeds, err := SeedSources()
	if err != nil {
		return fmt.Errorf("seedSources: %w", err)
	}

	const query = `
INSERT INTO sources (name, feed_url, category, region, active)
VALUES ($1, $2, $3, $4, TRUE)
ON CONFLICT (feed_url) DO NOTHING`
	for _, s := range seeds {
		if _, err := db.Exec(query, s.Name, s.URL, s.Category, s.Region); err != nil {
			return fmt.Errorf("seedSources: insert %q: %w", s.Name, err)
		}
	}
	return nil
}

// MigrateDown rolls back the database schema.
// Use with caution: this will delete all ingested data.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS preferences`,
		`DROP TABLE IF EXISTS articles`,
		`DROP TABLE IF EXISTS sources CASCADE`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
