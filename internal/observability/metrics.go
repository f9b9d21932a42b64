package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics records the lifecycle of service operations.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// ScoreMetrics adds submission outcomes to the operation metrics.
type ScoreMetrics interface {
	OperationMetrics
	// RecordSubmission counts a submission by outcome: improved, unchanged, rejected or unavailable.
	RecordSubmission(ctx context.Context, gameID, outcome string)
	// RecordSubmissionLogFailure counts append-log writes that failed.
	RecordSubmissionLogFailure(ctx context.Context)
	// RecordEventPublishFailure counts best-effort events that could not be published.
	RecordEventPublishFailure(ctx context.Context, topic string)
}

// Submission outcomes.
const (
	OutcomeImproved    = "improved"
	OutcomeUnchanged   = "unchanged"
	OutcomeRejected    = "rejected"
	OutcomeUnavailable = "unavailable"
)

// PrometheusMetrics implements ScoreMetrics with Prometheus collectors.
type PrometheusMetrics struct {
	attempts        *prometheus.CounterVec
	successes       *prometheus.CounterVec
	failures        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	submissions     *prometheus.CounterVec
	logFailures     prometheus.Counter
	publishFailures *prometheus.CounterVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"operation", "service"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_success_total",
			Help:      "Service operations that completed without an infrastructure error.",
		}, []string{"operation", "service"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Service operations that failed with an infrastructure error or panic.",
		}, []string{"operation", "service"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_submissions_total",
			Help:      "Score submissions by outcome.",
		}, []string{"game", "outcome"}),
		logFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submission_log_failures_total",
			Help:      "Submission log appends that failed.",
		}),
		publishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Events that could not be published.",
		}, []string{"topic"}),
	}

	collectors := []prometheus.Collector{
		m.attempts, m.successes, m.failures, m.duration,
		m.submissions, m.logFailures, m.publishFailures,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.duration.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordSubmission(_ context.Context, gameID, outcome string) {
	m.submissions.WithLabelValues(gameID, outcome).Inc()
}

func (m *PrometheusMetrics) RecordSubmissionLogFailure(_ context.Context) {
	m.logFailures.Inc()
}

func (m *PrometheusMetrics) RecordEventPublishFailure(_ context.Context, topic string) {
	m.publishFailures.WithLabelValues(topic).Inc()
}

// NoOpMetrics discards everything.
type NoOpMetrics struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() ScoreMetrics { return NoOpMetrics{} }

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoOpMetrics) RecordSubmission(context.Context, string, string)                       {}
func (NoOpMetrics) RecordSubmissionLogFailure(context.Context)                             {}
func (NoOpMetrics) RecordEventPublishFailure(context.Context, string)                      {}
