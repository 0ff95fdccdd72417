package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// initGateMetrics initializes voice gate pipeline metrics.
func (m *Manager) initGateMetrics(cfg Config) {
	m.gateDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nova_gate_decisions_total",
			Help: "Total gate decisions by resolving stage",
		},
		[]string{"stage", "short_circuited"},
	)

	m.modelCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nova_model_calls_total",
			Help: "Total external model calls by outcome",
		},
		[]string{"outcome"},
	)

	m.modelDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nova_model_call_duration_seconds",
			Help:    "External model call duration in seconds",
			Buckets: cfg.ModelDurationBuckets,
		},
		[]string{"outcome"},
	)

	m.rewrites = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nova_response_rewrites_total",
			Help: "Total model responses changed by sanitization",
		},
	)

	m.decisionDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "nova_decision_buffer_records",
			Help: "Decision records currently buffered in memory across all users",
		},
	)

	m.registry.MustRegister(m.gateDecisions)
	m.registry.MustRegister(m.modelCalls)
	m.registry.MustRegister(m.modelDuration)
	m.registry.MustRegister(m.rewrites)
	m.registry.MustRegister(m.decisionDepth)
}

// RecordGateDecision records one resolved turn.
func (m *Manager) RecordGateDecision(stage string, shortCircuited bool) {
	if !m.enabled {
		return
	}
	m.gateDecisions.WithLabelValues(stage, strconv.FormatBool(shortCircuited)).Inc()
}

// RecordModelCall records one external model call.
func (m *Manager) RecordModelCall(outcome string, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.modelCalls.WithLabelValues(outcome).Inc()
	m.modelDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// SetDecisionDepth sets the buffered decision record count.
func (m *Manager) SetDecisionDepth(n int) {
	if !m.enabled {
		return
	}
	m.decisionDepth.Set(float64(n))
}

// RecordRewrite records one sanitizer rewrite.
func (m *Manager) RecordRewrite() {
	if !m.enabled {
		return
	}
	m.rewrites.Inc()
}
