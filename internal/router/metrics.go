package router

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Dispatch outcomes used as the "outcome" label.
const (
	OutcomeMatched  = "matched"
	OutcomeFallback = "fallback"
	OutcomeNotFound = "not_found"
)

const (
	fallbackRouteLabel  = "fallback"
	unmatchedRouteLabel = "unmatched"
)

// Metrics contains Prometheus metrics for the route table and dispatch.
type Metrics struct {
	dispatchTotal *prometheus.CounterVec
	routes        prometheus.Gauge
	patterns      prometheus.Gauge
	compileErrors prometheus.Counter
}

// NewMetrics creates router metrics and registers them with reg. A nil
// registerer leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "avaroute",
				Subsystem: "router",
				Name:      "dispatch_total",
				Help:      "Total number of dispatched paths by route and outcome",
			},
			[]string{"route", "outcome"},
		),
		routes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "avaroute",
				Subsystem: "router",
				Name:      "routes",
				Help:      "Number of routes in the active route table",
			},
		),
		patterns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "avaroute",
				Subsystem: "router",
				Name:      "patterns",
				Help:      "Number of compiled patterns in the active route table",
			},
		),
		compileErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "avaroute",
				Subsystem: "router",
				Name:      "compile_errors_total",
				Help:      "Total number of route specifications that failed to compile",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.dispatchTotal, m.routes, m.patterns, m.compileErrors)
	}
	return m
}

func (m *Metrics) recordDispatch(route, outcome string) {
	m.dispatchTotal.WithLabelValues(route, outcome).Inc()
}

func (m *Metrics) setTable(routes, patterns int) {
	m.routes.Set(float64(routes))
	m.patterns.Set(float64(patterns))
}
