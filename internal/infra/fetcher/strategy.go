package fetcher

import (
	"log/slog"
	"os"

	"balanced-news/internal/usecase/ingest"

	"golang.org/x/time/rate"
)

// StrategyFromEnv selects the content extraction strategy for the process
// from the EXTRACTOR_STRATEGY environment variable.
//
// Recognized values:
//   - "readability" (default): Mozilla Readability extraction
//   - "dom": plain CSS-selector scraping
//
// Unknown values fall back to readability with a warning. The strategy is
// chosen once at startup; both implementations are safe for concurrent use.
func StrategyFromEnv(config ContentFetchConfig, limiter *rate.Limiter) ingest.Extractor {
	strategy := os.Getenv("EXTRACTOR_STRATEGY")
	switch strategy {
	case "dom":
		slog.Info("content extraction strategy selected", slog.String("strategy", "dom"))
		return NewDOMExtractor(config, limiter)
	case "", "readability":
		return NewReadabilityExtractor(config, limiter)
	default:
		slog.Warn("unknown EXTRACTOR_STRATEGY, falling back to readability",
			slog.String("strategy", strategy))
		return NewReadabilityExtractor(config, limiter)
	}
}
