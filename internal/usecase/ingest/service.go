// Package ingest provides use cases for polling feed sources and running
// fetched entries through the article pipeline: duplicate pre-check, paywall
// probe, content extraction, heuristic scoring, and storage.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"balanced-news/internal/domain/entity"
	"balanced-news/internal/observability/logging"
	"balanced-news/internal/observability/metrics"
	"balanced-news/internal/repository"
	"balanced-news/internal/scoring"

	"golang.org/x/sync/errgroup"
)

// Default parallelism for the two-tier worker pools.
const (
	defaultFeedWorkers  = 4 // feeds in flight per pass
	defaultEntryWorkers = 8 // entries in flight per feed
)

// FeedItem represents a single entry from an RSS/Atom feed.
type FeedItem struct {
	Title       string
	URL         string
	Summary     string
	PublishedAt time.Time
}

// FeedFetcher is an interface for fetching RSS/Atom feeds from a URL.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]FeedItem, error)
}

// PaywallDetector probes an article page for paywall indicator phrases.
// Detection is fail-open: implementations return false when the probe
// cannot complete, so a broken page never blocks ingestion.
type PaywallDetector interface {
	Detect(ctx context.Context, articleURL string) bool
}

// Config bounds the pipeline's parallelism. Zero values fall back to the
// package defaults.
type Config struct {
	FeedWorkers  int // Maximum number of feeds processed concurrently per pass
	EntryWorkers int // Maximum number of entries processed concurrently per feed
}

func (c Config) withDefaults() Config {
	if c.FeedWorkers <= 0 {
		c.FeedWorkers = defaultFeedWorkers
	}
	if c.EntryWorkers <= 0 {
		c.EntryWorkers = defaultEntryWorkers
	}
	return c
}

// Service provides feed polling and article ingestion use cases.
// It orchestrates fetching feeds, probing paywalls, extracting content,
// scoring, and storing articles.
type Service struct {
	SourceRepo  repository.SourceRepository
	ArticleRepo repository.ArticleRepository
	Fetcher     FeedFetcher
	Detector    PaywallDetector
	Extractor   Extractor
	cfg         Config
}

// NewService creates a new ingest Service with the provided dependencies.
//
// Parameters:
//   - sourceRepo: Repository for managing feed sources
//   - articleRepo: Repository for managing articles
//   - fetcher: Service for fetching RSS/Atom feeds
//   - detector: Paywall probe for article pages
//   - extractor: Content extraction strategy
//   - cfg: Parallelism bounds (zero values use defaults)
func NewService(
	sourceRepo repository.SourceRepository,
	articleRepo repository.ArticleRepository,
	fetcher FeedFetcher,
	detector PaywallDetector,
	extractor Extractor,
	cfg Config,
) Service {
	return Service{
		SourceRepo:  sourceRepo,
		ArticleRepo: articleRepo,
		Fetcher:     fetcher,
		Detector:    detector,
		Extractor:   extractor,
		cfg:         cfg.withDefaults(),
	}
}

// PassStats contains statistics about one ingestion pass.
// The int64 counters are updated atomically while entries are in flight.
type PassStats struct {
	Sources            int
	SourcesFailed      int64
	Entries            int64
	Inserted           int64
	Duplicated         int64
	Paywalled          int64
	ExtractionFailures int64
	StoreErrors        int64
	Duration           time.Duration
}

// add merges quiesced per-feed counters into the pass totals.
// The receiver may still be written concurrently by other feeds.
func (s *PassStats) add(o *PassStats) {
	atomic.AddInt64(&s.Entries, o.Entries)
	atomic.AddInt64(&s.Inserted, o.Inserted)
	atomic.AddInt64(&s.Duplicated, o.Duplicated)
	atomic.AddInt64(&s.Paywalled, o.Paywalled)
	atomic.AddInt64(&s.ExtractionFailures, o.ExtractionFailures)
	atomic.AddInt64(&s.StoreErrors, o.StoreErrors)
}

// ProcessAllSources polls every active source and ingests its new entries.
// Sources are processed concurrently, bounded by Config.FeedWorkers. A
// failing source is logged and counted but never aborts the pass; only
// context cancellation does. Returns statistics for the pass.
func (s *Service) ProcessAllSources(ctx context.Context) (*PassStats, error) {
	logger := logging.FromContext(ctx)
	startAll := time.Now()
	stats := &PassStats{}

	srcs, err := s.SourceRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active sources: %w", err)
	}
	stats.Sources = len(srcs)

	feedSem := make(chan struct{}, s.cfg.FeedWorkers)
	eg, egCtx := errgroup.WithContext(ctx)

	for _, source := range srcs {
		src := source

		eg.Go(func() error {
			feedSem <- struct{}{}
			defer func() { <-feedSem }()
			return s.processSource(egCtx, src, stats)
		})
	}

	if err := eg.Wait(); err != nil {
		stats.Duration = time.Since(startAll)
		return stats, err
	}

	stats.Duration = time.Since(startAll)
	metrics.RecordIngestPass(stats.Duration)

	logger.Info("ingestion pass completed",
		slog.Int("sources", stats.Sources),
		slog.Int64("sources_failed", stats.SourcesFailed),
		slog.Int64("entries", stats.Entries),
		slog.Int64("inserted", stats.Inserted),
		slog.Int64("duplicated", stats.Duplicated),
		slog.Int64("paywalled", stats.Paywalled),
		slog.Int64("extraction_failures", stats.ExtractionFailures),
		slog.Int64("store_errors", stats.StoreErrors),
		slog.Duration("duration", stats.Duration),
	)

	return stats, nil
}

// ProcessSource polls a single source by ID, regardless of its active flag.
// Returns entity.ErrNotFound when no such source exists.
func (s *Service) ProcessSource(ctx context.Context, id int64) (*PassStats, error) {
	src, err := s.SourceRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	if src == nil {
		return nil, entity.ErrNotFound
	}

	start := time.Now()
	stats := &PassStats{Sources: 1}

	if err := s.processSource(ctx, src, stats); err != nil {
		stats.Duration = time.Since(start)
		return stats, err
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// processSource polls one feed source and ingests its entries, updating the
// provided stats atomically. Returns an error only for context cancellation;
// fetch failures are logged and counted so other sources keep flowing.
func (s *Service) processSource(ctx context.Context, src *entity.Source, stats *PassStats) error {
	logger := logging.FromContext(ctx)
	sourceStart := time.Now()

	// ポーリング結果に関わらず最終確認時刻は必ず更新する
	defer func() {
		safeCtx := context.WithoutCancel(ctx)
		if err := s.SourceRepo.TouchLastChecked(safeCtx, src.ID, time.Now()); err != nil {
			logger.Warn("failed to update source checked timestamp",
				slog.Int64("source_id", src.ID),
				slog.Any("error", err))
		}
	}()

	items, err := s.Fetcher.Fetch(ctx, src.FeedURL)
	if err != nil {
		logger.Warn("failed to fetch feed",
			slog.Int64("source_id", src.ID),
			slog.String("feed_url", src.FeedURL),
			slog.Any("error", err))
		metrics.RecordFeedCrawlError(src.ID, "fetch_failed")
		atomic.AddInt64(&stats.SourcesFailed, 1)
		// Continue with other sources even if one fails
		return nil
	}

	if len(items) == 0 {
		logger.Info("feed is empty",
			slog.Int64("source_id", src.ID),
			slog.String("feed_url", src.FeedURL))
		return nil
	}

	// フィード単位の集計はローカルに取り、完了後にパス全体へマージする
	feed := &PassStats{}
	entriesErr := s.processEntries(ctx, src, items, feed)
	stats.add(feed)
	if entriesErr != nil {
		metrics.RecordFeedCrawlError(src.ID, "process_entries_failed")
		return fmt.Errorf("process feed entries: %w", entriesErr)
	}

	sourceDuration := time.Since(sourceStart)
	metrics.RecordFeedCrawl(src.ID, sourceDuration, int64(len(items)), feed.Inserted, feed.Duplicated)

	logger.Info("source crawl completed",
		slog.Int64("source_id", src.ID),
		slog.Int64("entries", int64(len(items))),
		slog.Int64("inserted", feed.Inserted),
		slog.Int64("duplicated", feed.Duplicated),
		slog.Int64("paywalled", feed.Paywalled),
		slog.Duration("duration", sourceDuration),
	)

	return nil
}

// processEntries runs all entries of one feed through the pipeline in
// parallel, bounded by Config.EntryWorkers.
//
// Error Handling:
//   - Context cancellation (context.Canceled, context.DeadlineExceeded): propagates immediately (aborts the pass)
//   - Everything else: logged and counted in stats, processing continues with other entries
func (s *Service) processEntries(ctx context.Context, src *entity.Source, items []FeedItem, stats *PassStats) error {
	entrySem := make(chan struct{}, s.cfg.EntryWorkers)
	eg, egCtx := errgroup.WithContext(ctx)

	for _, feedItem := range items {
		item := feedItem

		atomic.AddInt64(&stats.Entries, 1)

		eg.Go(func() error {
			entrySem <- struct{}{}
			defer func() { <-entrySem }()
			return s.processEntry(egCtx, src, item, stats)
		})
	}

	return eg.Wait()
}

// processEntry runs one feed entry through the pipeline: duplicate pre-check,
// paywall probe, content extraction, scoring, store. The URL unique
// constraint in the store, not the pre-check, is the dedup authority.
func (s *Service) processEntry(ctx context.Context, src *entity.Source, item FeedItem, stats *PassStats) error {
	logger := logging.FromContext(ctx)

	exists, err := s.ArticleRepo.ExistsByURL(ctx, item.URL)
	if err != nil {
		if isContextErr(err) {
			return err
		}
		atomic.AddInt64(&stats.StoreErrors, 1)
		logger.Error("failed to check article existence",
			slog.Int64("source_id", src.ID),
			slog.String("url", item.URL),
			slog.Any("error", err))
		return nil
	}
	if exists {
		atomic.AddInt64(&stats.Duplicated, 1)
		return nil
	}

	// ペイウォール判定は fail-open。判定できなかった場合は未ペイウォール扱い。
	paywalled := s.Detector.Detect(ctx, item.URL)

	var (
		author   *string
		content  *string
		imageURL *string
		cls      *entity.Classification
	)

	if paywalled {
		atomic.AddInt64(&stats.Paywalled, 1)
		metrics.RecordExtractionSkipped()
	} else {
		extractStart := time.Now()
		res, extractErr := s.Extractor.Extract(ctx, item.URL)
		extractDuration := time.Since(extractStart)

		if extractErr != nil {
			if isContextErr(extractErr) {
				return extractErr
			}
			atomic.AddInt64(&stats.ExtractionFailures, 1)
			metrics.RecordExtractionFailed(extractDuration)

			// 抽出に失敗しても記事自体はサマリーのみで保存する
			logger.Warn("content extraction failed, storing summary only",
				slog.Int64("source_id", src.ID),
				slog.String("url", item.URL),
				slog.Any("error", extractErr))
		} else {
			metrics.RecordExtractionSuccess(extractDuration, len(res.Text))
			author = res.Author
			imageURL = res.ImageURL
			if res.Text != "" {
				content = &res.Text
				c := scoring.Classify(item.Title, res.Text, src.Region)
				cls = &c
			}
		}
	}

	art := &entity.Article{
		SourceID:       src.ID,
		Title:          item.Title,
		URL:            item.URL,
		Author:         author,
		Summary:        item.Summary,
		Content:        content,
		ImageURL:       imageURL,
		Paywalled:      paywalled,
		Classification: cls,
		PublishedAt:    item.PublishedAt,
		CreatedAt:      time.Now(),
	}

	if err := s.ArticleRepo.Create(ctx, art); err != nil {
		if errors.Is(err, entity.ErrDuplicateArticle) {
			// 事前チェックの後に別のワーカーが同じURLを挿入したケース。
			// 一意制約が最終的な番人なので、失敗ではなく重複スキップとして扱う。
			atomic.AddInt64(&stats.Duplicated, 1)
			return nil
		}
		if isContextErr(err) {
			return err
		}
		atomic.AddInt64(&stats.StoreErrors, 1)
		logger.Error("failed to store article",
			slog.Int64("source_id", src.ID),
			slog.String("url", item.URL),
			slog.Any("error", err))
		return nil
	}

	atomic.AddInt64(&stats.Inserted, 1)
	return nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
