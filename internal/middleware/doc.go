// Package middleware provides the HTTP middleware that wraps the route
// handler.
//
//   - Recovery: panic recovery with stack trace logging
//   - RequestID: X-Request-ID propagation and generation
//   - Logging: structured access log, including the matched route
//   - RateLimit: global or per-client token bucket
//
// Middleware functions follow the standard Go pattern and compose with
// Chain:
//
//	handler := middleware.Chain(routeHandler,
//	    middleware.Recovery(logger, metrics),
//	    middleware.RequestID(),
//	    middleware.Logging(logger),
//	)
package middleware
