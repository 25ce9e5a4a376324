// Package scheduler drives periodic and on-demand ingestion passes.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"balanced-news/internal/handler/http/respond"
	"balanced-news/internal/observability/logging"
	"balanced-news/internal/usecase/ingest"
)

// Default scheduling parameters.
const (
	DefaultCronSpec    = "0 * * * *" // hourly, on the hour
	DefaultPassTimeout = 30 * time.Minute
)

// Ingestor runs ingestion passes. Satisfied by *ingest.Service.
type Ingestor interface {
	ProcessAllSources(ctx context.Context) (*ingest.PassStats, error)
	ProcessSource(ctx context.Context, id int64) (*ingest.PassStats, error)
}

// PassRecorder receives pass lifecycle metrics. Implementations must be safe
// for concurrent use. A nil PassRecorder disables recording.
type PassRecorder interface {
	RecordPassRun(status string)
	RecordPassDuration(seconds float64)
	RecordSourcesProcessed(count int)
	RecordLastSuccess()
}

// Config controls the periodic schedule and the per-pass deadline.
type Config struct {
	CronSpec    string         // cron expression for periodic passes
	Location    *time.Location // timezone the cron expression is evaluated in
	PassTimeout time.Duration  // deadline applied to every pass
}

func (c Config) withDefaults() Config {
	if c.CronSpec == "" {
		c.CronSpec = DefaultCronSpec
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.PassTimeout <= 0 {
		c.PassTimeout = DefaultPassTimeout
	}
	return c
}

// Lifecycle states. A stopped scheduler cannot be restarted.
const (
	stateIdle int32 = iota
	stateStarted
	stateStopped
)

// Scheduler owns the cron loop behind periodic ingestion passes and is the
// entry point for administratively triggered ones. At most one full pass
// runs at a time: an overlapping full-pass trigger is suppressed and logged,
// never queued. Single-source passes are exempt from that guard.
//
// The API process constructs a Scheduler without calling Start, using it
// purely as the trigger path. Every pass runs under PassTimeout and carries
// a UUID pass ID in its log lines.
type Scheduler struct {
	ingestor Ingestor
	recorder PassRecorder
	cfg      Config

	cron  *cron.Cron
	state atomic.Int32

	// 全件パスの排他フラグ。CAS に負けたトリガーは捨てる。
	passInFlight atomic.Bool
	passes       sync.WaitGroup
}

// New creates a Scheduler. Zero Config fields fall back to defaults.
func New(ingestor Ingestor, recorder PassRecorder, cfg Config) *Scheduler {
	cfg = cfg.withDefaults()
	return &Scheduler{
		ingestor: ingestor,
		recorder: recorder,
		cfg:      cfg,
		cron:     cron.New(cron.WithLocation(cfg.Location)),
	}
}

// Start registers the periodic pass and starts the cron loop. Starting an
// already started scheduler is a no-op; a stopped one cannot be restarted.
func (s *Scheduler) Start() error {
	if !s.state.CompareAndSwap(stateIdle, stateStarted) {
		if s.state.Load() == stateStopped {
			return fmt.Errorf("scheduler: already stopped")
		}
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.CronSpec, func() {
		s.trigger(context.Background(), "schedule")
	}); err != nil {
		s.state.Store(stateIdle)
		return fmt.Errorf("scheduler: register cron spec %q: %w", s.cfg.CronSpec, err)
	}
	s.cron.Start()

	slog.Info("scheduler started",
		slog.String("cron", s.cfg.CronSpec),
		slog.String("timezone", s.cfg.Location.String()),
		slog.Duration("pass_timeout", s.cfg.PassTimeout))
	return nil
}

// Stop halts the cron loop and waits for passes in flight to finish. It
// returns the context error when ctx expires before they drain; the passes
// themselves keep running until their own deadlines cut them off.
func (s *Scheduler) Stop(ctx context.Context) error {
	prev := s.state.Swap(stateStopped)
	if prev == stateStopped {
		return nil
	}
	if prev == stateStarted {
		<-s.cron.Stop().Done()
	}

	done := make(chan struct{})
	go func() {
		s.passes.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler: stop: %w", ctx.Err())
	}
}

// TriggerAll starts a full ingestion pass in the background and returns
// immediately. The trigger is dropped when another full pass is already in
// flight. Only values travel from ctx into the pass (request ID for the
// logs); cancelling ctx does not cancel the pass.
func (s *Scheduler) TriggerAll(ctx context.Context) {
	s.trigger(ctx, "api")
}

// TriggerSource starts a single-source pass in the background and returns
// immediately. Unlike TriggerAll it is never suppressed; a targeted refresh
// may run alongside a full pass.
func (s *Scheduler) TriggerSource(ctx context.Context, id int64) {
	if s.state.Load() == stateStopped {
		slog.Warn("source pass trigger ignored, scheduler stopped", slog.Int64("source_id", id))
		return
	}

	detached := context.WithoutCancel(ctx)
	s.passes.Add(1)
	go func() {
		defer s.passes.Done()
		s.runOne(detached, id)
	}()
}

func (s *Scheduler) trigger(ctx context.Context, origin string) {
	if s.state.Load() == stateStopped {
		slog.Warn("full pass trigger ignored, scheduler stopped", slog.String("origin", origin))
		return
	}
	if !s.passInFlight.CompareAndSwap(false, true) {
		// 多重起動はここで握り潰す。呼び出し側には成功として見える。
		slog.Warn("full pass already in flight, trigger suppressed", slog.String("origin", origin))
		if s.recorder != nil {
			s.recorder.RecordPassRun("suppressed")
		}
		return
	}

	detached := context.WithoutCancel(ctx)
	s.passes.Add(1)
	go func() {
		defer s.passes.Done()
		defer s.passInFlight.Store(false)
		s.runAll(detached, origin)
	}()
}

func (s *Scheduler) runAll(ctx context.Context, origin string) {
	passID := uuid.NewString()
	logger := logging.WithRequestID(ctx, slog.Default()).With(slog.String("pass_id", passID))
	ctx = logging.WithLogger(ctx, logger)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.PassTimeout)
	defer cancel()

	start := time.Now()
	if s.recorder != nil {
		s.recorder.RecordPassRun("started")
	}
	logger.Info("full pass started", slog.String("origin", origin))

	stats, err := s.ingestor.ProcessAllSources(ctx)
	elapsed := time.Since(start)
	if err != nil {
		logger.Error("full pass failed",
			slog.String("origin", origin),
			slog.String("error", respond.SanitizeError(err)),
			slog.Duration("elapsed", elapsed))
		if s.recorder != nil {
			s.recorder.RecordPassRun("failure")
			s.recorder.RecordPassDuration(elapsed.Seconds())
		}
		return
	}

	// The pass summary line itself comes from the ingest service.
	if s.recorder != nil {
		s.recorder.RecordPassRun("success")
		s.recorder.RecordPassDuration(elapsed.Seconds())
		s.recorder.RecordSourcesProcessed(stats.Sources)
		s.recorder.RecordLastSuccess()
	}
}

func (s *Scheduler) runOne(ctx context.Context, id int64) {
	passID := uuid.NewString()
	logger := logging.WithRequestID(ctx, slog.Default()).With(
		slog.String("pass_id", passID),
		slog.Int64("source_id", id))
	ctx = logging.WithLogger(ctx, logger)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.PassTimeout)
	defer cancel()

	logger.Info("source pass started")
	if _, err := s.ingestor.ProcessSource(ctx, id); err != nil {
		logger.Error("source pass failed", slog.String("error", respond.SanitizeError(err)))
	}
}
