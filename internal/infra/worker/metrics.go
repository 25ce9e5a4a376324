package worker

import (
	"balanced-news/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics exposes the worker's Prometheus metrics: the embedded
// configuration metrics plus counters around ingestion pass execution. The
// scheduler reports pass lifecycle events through the Record helpers.
//
// Pass metrics:
//   - worker_pass_runs_total{status}: started / success / failure / suppressed
//   - worker_pass_duration_seconds: pass duration histogram
//   - worker_pass_sources_processed_total: sources polled across all passes
//   - worker_pass_last_success_timestamp: unix time of the last successful pass
type WorkerMetrics struct {
	*config.ConfigMetrics

	PassRunsTotal            *prometheus.CounterVec
	PassDurationSeconds      prometheus.Histogram
	PassSourcesTotal         prometheus.Counter
	PassLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates and registers the worker metrics. Create once per
// process; promauto panics on duplicate registration.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		PassRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_pass_runs_total",
			Help: "Total number of ingestion pass runs by status (started/success/failure/suppressed)",
		}, []string{"status"}),

		PassDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_pass_duration_seconds",
			Help:    "Duration of ingestion passes in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800}, // 1s .. 30m
		}),

		PassSourcesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_pass_sources_processed_total",
			Help: "Total number of sources polled across all ingestion passes",
		}),

		PassLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_pass_last_success_timestamp",
			Help: "Unix timestamp of the last successful ingestion pass",
		}),
	}
}

// MustRegister is a no-op kept for call-site symmetry; promauto registers
// the metrics at construction time.
func (m *WorkerMetrics) MustRegister() {}

// RecordPassRun counts one pass run with the given status.
func (m *WorkerMetrics) RecordPassRun(status string) {
	m.PassRunsTotal.WithLabelValues(status).Inc()
}

// RecordPassDuration observes one pass duration in seconds.
func (m *WorkerMetrics) RecordPassDuration(seconds float64) {
	m.PassDurationSeconds.Observe(seconds)
}

// RecordSourcesProcessed adds the number of sources polled by one pass.
func (m *WorkerMetrics) RecordSourcesProcessed(count int) {
	m.PassSourcesTotal.Add(float64(count))
}

// RecordLastSuccess marks now as the last successful pass completion.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.PassLastSuccessTimestamp.SetToCurrentTime()
}
