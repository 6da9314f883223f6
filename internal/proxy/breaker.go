package proxy

import (
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/util"
)

// breakerTransport guards a RoundTripper with a circuit breaker. Transport
// errors and 5xx responses count as failures; 5xx responses are still
// returned to the caller.
type breakerTransport struct {
	backend string
	next    http.RoundTripper
	cb      *gobreaker.CircuitBreaker
}

func newBreakerTransport(
	backend string,
	cfg *config.CircuitBreakerConfig,
	next http.RoundTripper,
	logger observability.Logger,
	metrics *Metrics,
) *breakerTransport {
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = config.DefaultCBThreshold
	}
	timeout := cfg.Timeout.Duration()
	if timeout == 0 {
		timeout = config.DefaultCBTimeout
	}
	halfOpen := cfg.HalfOpenRequests
	if halfOpen == 0 {
		halfOpen = 1
	}

	thresholdU32 := safeIntToUint32(threshold)
	settings := gobreaker.Settings{
		Name:        backend,
		MaxRequests: safeIntToUint32(halfOpen),
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= thresholdU32
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state change",
				observability.String("backend", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()),
			)
			metrics.setCircuitState(name, to)
		},
	}

	return &breakerTransport{
		backend: backend,
		next:    next,
		cb:      gobreaker.NewCircuitBreaker(settings),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	result, err := t.cb.Execute(func() (interface{}, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, util.NewServerError(resp.StatusCode)
		}
		return resp, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, util.NewCircuitOpenError(t.backend, t.cb.State().String())
	}

	resp, _ := result.(*http.Response)
	var serverErr *util.ServerError
	if errors.As(err, &serverErr) && resp != nil {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// State returns the breaker state.
func (t *breakerTransport) State() gobreaker.State {
	return t.cb.State()
}

// safeIntToUint32 safely converts int to uint32.
func safeIntToUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	if n > int(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(n) //nolint:gosec // bounds checked above
}

// timedTransport records backend latency.
type timedTransport struct {
	backend string
	next    http.RoundTripper
	metrics *Metrics
}

// RoundTrip implements http.RoundTripper.
func (t *timedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	t.metrics.observeDuration(t.backend, time.Since(start))
	return resp, err
}
