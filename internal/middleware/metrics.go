package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for middleware.
type Metrics struct {
	panicsRecovered  prometheus.Counter
	rateLimitRejects prometheus.Counter
}

// NewMetrics creates middleware metrics registered with reg. A nil reg
// creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		panicsRecovered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "avaroute",
			Subsystem: "middleware",
			Name:      "panics_recovered_total",
			Help:      "Total number of recovered panics",
		}),
		rateLimitRejects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "avaroute",
			Subsystem: "middleware",
			Name:      "rate_limit_rejected_total",
			Help:      "Total number of requests rejected by the rate limiter",
		}),
	}
}

func (m *Metrics) incPanics() {
	if m != nil {
		m.panicsRecovered.Inc()
	}
}

func (m *Metrics) incRateLimited() {
	if m != nil {
		m.rateLimitRejects.Inc()
	}
}
