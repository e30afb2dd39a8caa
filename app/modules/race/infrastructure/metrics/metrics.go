package racemetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "racing_car"

// RaceMetrics records race service activity.
type RaceMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
	RecordRound(ctx context.Context, participants, moved int)
	RecordRaceCompleted(ctx context.Context, rounds, winners int)
}

// PrometheusMetrics implements RaceMetrics on a Prometheus registerer.
type PrometheusMetrics struct {
	operationAttempts *prometheus.CounterVec
	operationSuccess  *prometheus.CounterVec
	operationFailure  *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	roundsAdvanced    prometheus.Counter
	draws             prometheus.Counter
	moves             prometheus.Counter
	racesCompleted    prometheus.Counter
	winnersPerRace    prometheus.Histogram
}

// NewPrometheusMetrics creates the race collectors and registers them.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		operationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_attempts_total",
			Help:      "Number of race service operations started.",
		}, []string{"operation", "service"}),
		operationSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_success_total",
			Help:      "Number of race service operations that succeeded.",
		}, []string{"operation", "service"}),
		operationFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failure_total",
			Help:      "Number of race service operations that failed.",
		}, []string{"operation", "service"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of race service operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"operation", "service"}),
		roundsAdvanced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_advanced_total",
			Help:      "Number of rounds run across all races.",
		}),
		draws: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draws_total",
			Help:      "Number of random draws taken.",
		}),
		moves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Number of draws that moved a car forward.",
		}),
		racesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "races_completed_total",
			Help:      "Number of races run to completion.",
		}),
		winnersPerRace: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "winners_per_race",
			Help:      "Number of joint winners per race.",
			Buckets:   prometheus.LinearBuckets(1, 1, 5),
		}),
	}

	collectors := []prometheus.Collector{
		m.operationAttempts,
		m.operationSuccess,
		m.operationFailure,
		m.operationDuration,
		m.roundsAdvanced,
		m.draws,
		m.moves,
		m.racesCompleted,
		m.winnersPerRace,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operationAttempts.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operationSuccess.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operationFailure.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordRound(_ context.Context, participants, moved int) {
	m.roundsAdvanced.Inc()
	m.draws.Add(float64(participants))
	m.moves.Add(float64(moved))
}

func (m *PrometheusMetrics) RecordRaceCompleted(_ context.Context, _ int, winners int) {
	m.racesCompleted.Inc()
	m.winnersPerRace.Observe(float64(winners))
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() RaceMetrics {
	return NoopMetrics{}
}

func (NoopMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoopMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoopMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoopMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoopMetrics) RecordRound(context.Context, int, int)                                  {}
func (NoopMetrics) RecordRaceCompleted(context.Context, int, int)                          {}

var (
	_ RaceMetrics = (*PrometheusMetrics)(nil)
	_ RaceMetrics = NoopMetrics{}
)
