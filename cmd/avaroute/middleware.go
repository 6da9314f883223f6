package main

import (
	"net/http"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/middleware"
	"github.com/vyrodovalexey/avaroute/internal/observability"
)

// buildMiddlewareChain returns the middleware wrapping the route handler,
// outermost first, and the rate limiter to stop on shutdown (nil when rate
// limiting is disabled).
//
// The chain is applied in the following order (outermost to innermost):
//  1. Recovery
//  2. RequestID
//  3. Tracing
//  4. Metrics
//  5. Logging (when access logging is enabled)
//  6. RateLimit (when enabled)
func buildMiddlewareChain(
	cfg *config.GatewayConfig,
	logger observability.Logger,
	metrics *observability.Metrics,
	mwMetrics *middleware.Metrics,
	tracer *observability.Tracer,
) ([]func(http.Handler) http.Handler, *middleware.RateLimiter) {
	chain := []func(http.Handler) http.Handler{
		middleware.Recovery(logger, mwMetrics),
		middleware.RequestID(),
		observability.TracingMiddleware(tracer),
		observability.MetricsMiddleware(metrics),
	}

	if loggingConfig(cfg).AccessLogEnabled() {
		chain = append(chain, middleware.Logging(logger))
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.Spec.RateLimit != nil && cfg.Spec.RateLimit.Enabled {
		var mw func(http.Handler) http.Handler
		mw, rateLimiter = middleware.RateLimitFromConfig(cfg.Spec.RateLimit, logger, mwMetrics)
		chain = append(chain, mw)
	}

	return chain, rateLimiter
}
