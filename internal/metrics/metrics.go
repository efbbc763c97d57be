// Package metrics exposes Prometheus counters for assistant turns.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hal9000y/gmail-assistant/internal/assistant"
)

// Metrics records turn outcomes on its own registry.
type Metrics struct {
	reg          *prometheus.Registry
	turns        *prometheus.CounterVec
	turnDuration *prometheus.HistogramVec
	sessions     prometheus.GaugeFunc
}

var _ assistant.Recorder = (*Metrics)(nil)

// New creates the collectors. activeSessions, when set, backs the
// active_sessions gauge.
func New(activeSessions func() int) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gmail_assistant",
				Name:      "turns_total",
				Help:      "Total number of handled conversation turns",
			},
			[]string{"intent", "outcome"},
		),
		turnDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gmail_assistant",
				Name:      "turn_duration_seconds",
				Help:      "Conversation turn duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
			},
			[]string{"intent"},
		),
	}

	m.reg.MustRegister(
		m.turns,
		m.turnDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if activeSessions != nil {
		m.sessions = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "gmail_assistant",
				Name:      "active_sessions",
				Help:      "Number of live chat sessions",
			},
			func() float64 { return float64(activeSessions()) },
		)
		m.reg.MustRegister(m.sessions)
	}

	return m
}

// ObserveTurn counts a finished turn. An empty intent means the turn ended
// before classification.
func (m *Metrics) ObserveTurn(intent assistant.Intent, outcome string, took time.Duration) {
	label := string(intent)
	if label == "" {
		label = "none"
	}
	m.turns.WithLabelValues(label, outcome).Inc()
	m.turnDuration.WithLabelValues(label).Observe(took.Seconds())
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
