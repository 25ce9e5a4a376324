package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"balanced-news/internal/pkg/config"
)

// WorkerConfig holds the operational parameters of the worker process: the
// periodic schedule, the per-pass deadline, the two ingestion pool sizes,
// and the port of the health and metrics server.
//
// Loading is fail-open: an invalid environment value falls back to its
// default with a warning and a metrics increment, never a startup failure.
// A worker that keeps its schedule beats one that dies over a typo.
type WorkerConfig struct {
	// CronSchedule is the cron expression for periodic ingestion passes.
	// Default: "0 * * * *" (hourly, on the hour).
	CronSchedule string

	// Timezone is the IANA timezone the schedule is evaluated in.
	// Default: "UTC".
	Timezone string

	// PassTimeout caps the duration of a single ingestion pass.
	// Default: 30 minutes. Range: 1 minute to 4 hours.
	PassTimeout time.Duration

	// FeedWorkers is the number of feeds polled concurrently per pass.
	// Default: 4. Range: 1-32.
	FeedWorkers int

	// EntryWorkers is the number of entries processed concurrently per feed.
	// Default: 8. Range: 1-64.
	EntryWorkers int

	// HealthPort is the port of the worker's health and metrics server.
	// Default: 9091. Range: 1024-65535.
	HealthPort int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule: "0 * * * *",
		Timezone:     "UTC",
		PassTimeout:  30 * time.Minute,
		FeedWorkers:  4,
		EntryWorkers: 8,
		HealthPort:   9091,
	}
}

// Validate checks every field and reports all violations joined together.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.PassTimeout, time.Minute, 4*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("pass timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.FeedWorkers, 1, 32); err != nil {
		errs = append(errs, fmt.Errorf("feed workers: %w", err))
	}
	if err := config.ValidateIntRange(c.EntryWorkers, 1, 64); err != nil {
		errs = append(errs, fmt.Errorf("entry workers: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// LoadConfigFromEnv loads the worker configuration from environment
// variables, substituting defaults for invalid values.
//
// Environment variables:
//   - SCHEDULE_CRON: cron expression (default "0 * * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default "UTC")
//   - PASS_TIMEOUT: Go duration between 1m and 4h (default 30m)
//   - FEED_WORKERS: integer 1-32 (default 4)
//   - ENTRY_WORKERS: integer 1-64 (default 8)
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default 9091)
//
// Every fallback is logged and counted on the worker config metrics. The
// returned configuration is always usable; the error is always nil and kept
// only for call-site symmetry with stricter loaders.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallback := false

	result := config.LoadEnvWithFallback("SCHEDULE_CRON", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	fallback = noteFallback(logger, metrics, "schedule_cron", result) || fallback

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	fallback = noteFallback(logger, metrics, "timezone", result) || fallback

	result = config.LoadEnvDuration("PASS_TIMEOUT", cfg.PassTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Minute, 4*time.Hour)
	})
	cfg.PassTimeout = result.Value.(time.Duration)
	fallback = noteFallback(logger, metrics, "pass_timeout", result) || fallback

	result = config.LoadEnvInt("FEED_WORKERS", cfg.FeedWorkers, func(v int) error {
		return config.ValidateIntRange(v, 1, 32)
	})
	cfg.FeedWorkers = result.Value.(int)
	fallback = noteFallback(logger, metrics, "feed_workers", result) || fallback

	result = config.LoadEnvInt("ENTRY_WORKERS", cfg.EntryWorkers, func(v int) error {
		return config.ValidateIntRange(v, 1, 64)
	})
	cfg.EntryWorkers = result.Value.(int)
	fallback = noteFallback(logger, metrics, "entry_workers", result) || fallback

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	fallback = noteFallback(logger, metrics, "health_port", result) || fallback

	metrics.SetFallbackActive("", fallback)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}

// noteFallback logs and counts one field's fallback, if any occurred.
func noteFallback(logger *slog.Logger, metrics *WorkerMetrics, field string, result config.ConfigLoadResult) bool {
	if !result.FallbackApplied {
		return false
	}
	metrics.RecordValidationError(field)
	metrics.RecordFallback(field, "default")
	for _, warning := range result.Warnings {
		logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}
	return true
}
