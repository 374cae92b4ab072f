package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records gateway activity. A nil *Metrics records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	oracleLatency *prometheus.HistogramVec
}

// NewMetrics creates and registers gateway metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "omnicode",
				Subsystem: "gateway",
				Name:      "conversions_total",
				Help:      "Total number of conversion requests by target and outcome",
			},
			[]string{"target", "outcome"},
		),
		oracleLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "omnicode",
				Subsystem: "gateway",
				Name:      "oracle_latency_seconds",
				Help:      "Model call latency in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"oracle"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.requests, m.oracleLatency)
	}
	return m
}

func (m *Metrics) observeRequest(target, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(target, outcome).Inc()
}

func (m *Metrics) observeLatency(oracleName string, d time.Duration) {
	if m == nil {
		return
	}
	m.oracleLatency.WithLabelValues(oracleName).Observe(d.Seconds())
}
