package proxy

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// Error type label values.
const (
	errorTypeTimeout     = "timeout"
	errorTypeBadGateway  = "bad_gateway"
	errorTypeCircuitOpen = "circuit_open"
	errorTypeCanceled    = "canceled"
)

// Metrics contains Prometheus metrics for proxied requests.
type Metrics struct {
	errorsTotal     *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	circuitState    *prometheus.GaugeVec
}

// NewMetrics creates proxy metrics registered with reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "avaroute",
				Subsystem: "proxy",
				Name:      "errors_total",
				Help:      "Total number of proxy errors",
			},
			[]string{"backend", "error_type"},
		),
		backendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "avaroute",
				Subsystem: "proxy",
				Name:      "backend_duration_seconds",
				Help:      "Duration of backend proxy requests",
				Buckets: []float64{
					.001, .005, .01, .025,
					.05, .1, .25, .5,
					1, 2.5, 5, 10,
				},
			},
			[]string{"backend"},
		),
		circuitState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "avaroute",
				Subsystem: "proxy",
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state per backend (0=closed, 1=half-open, 2=open)",
			},
			[]string{"backend"},
		),
	}
}

// initBackend pre-populates label combinations so a backend shows up in
// /metrics before its first request.
func (m *Metrics) initBackend(backend string) {
	if m == nil {
		return
	}
	for _, et := range []string{errorTypeTimeout, errorTypeBadGateway, errorTypeCircuitOpen, errorTypeCanceled} {
		m.errorsTotal.WithLabelValues(backend, et)
	}
	m.backendDuration.WithLabelValues(backend)
}

func (m *Metrics) recordError(backend, errorType string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(backend, errorType).Inc()
}

func (m *Metrics) observeDuration(backend string, d time.Duration) {
	if m == nil {
		return
	}
	m.backendDuration.WithLabelValues(backend).Observe(d.Seconds())
}

func (m *Metrics) setCircuitState(backend string, state gobreaker.State) {
	if m == nil {
		return
	}
	m.circuitState.WithLabelValues(backend).Set(float64(state))
}
