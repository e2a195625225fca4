package contests

import (
	"github.com/prometheus/client_golang/prometheus"
)

// FetchKind labels which fetch operation an outcome belongs to
type FetchKind string

const (
	FetchAll FetchKind = "all"
	FetchOne FetchKind = "one"
)

// JoinOutcome labels how a join attempt ended
type JoinOutcome string

const (
	JoinSucceeded JoinOutcome = "joined"
	JoinRejected  JoinOutcome = "rejected"
	JoinFailed    JoinOutcome = "failed"
)

// MetricsCollector defines the interface for collecting reconciler metrics
type MetricsCollector interface {
	RecordFetch(kind FetchKind, success bool)
	RecordJoin(outcome JoinOutcome)
	RecordOverrideApplied()
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) RecordFetch(kind FetchKind, success bool) {}
func (n *NoOpMetricsCollector) RecordJoin(outcome JoinOutcome)          {}
func (n *NoOpMetricsCollector) RecordOverrideApplied()                  {}

// PrometheusMetrics implements MetricsCollector using Prometheus
type PrometheusMetrics struct {
	fetches          *prometheus.CounterVec
	joins            *prometheus.CounterVec
	overridesApplied prometheus.Counter
}

// NewPrometheusMetrics creates the collectors and registers them with reg
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contestsync",
			Name:      "fetches_total",
			Help:      "Contest fetches by kind and result.",
		}, []string{"kind", "result"}),
		joins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contestsync",
			Name:      "joins_total",
			Help:      "Join attempts by outcome.",
		}, []string{"outcome"}),
		overridesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "contestsync",
			Name:      "overrides_applied_total",
			Help:      "Fetched records that had a local join override merged in.",
		}),
	}

	for _, c := range []prometheus.Collector{m.fetches, m.joins, m.overridesApplied} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) RecordFetch(kind FetchKind, success bool) {
	result := "success"
	if !success {
		result = "error"
	}
	m.fetches.WithLabelValues(string(kind), result).Inc()
}

func (m *PrometheusMetrics) RecordJoin(outcome JoinOutcome) {
	m.joins.WithLabelValues(string(outcome)).Inc()
}

func (m *PrometheusMetrics) RecordOverrideApplied() {
	m.overridesApplied.Inc()
}
