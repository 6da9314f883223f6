// Package proxy builds the HTTP targets that routes dispatch to.
//
// A Factory owns one ReverseProxy configuration per backend and hands out
// per-route handlers:
//
//   - backend targets forward through httputil.ReverseProxy with hop-by-hop
//     header removal and X-Forwarded-* headers
//   - direct-response targets write a static status, body and headers
//
// Backend handlers read the router.PathResult attached to the request.
// With stripPrefix set, only the wildcard tail is forwarded as the upstream
// path. With forwardParams set, captured variables are sent as
// X-Route-Param-<Name> headers.
//
// Backends with a circuit breaker wrap their transport in a
// gobreaker.CircuitBreaker. A 5xx answer counts as a failure but is still
// relayed to the client; an open circuit answers 503 without contacting
// the backend.
//
// # Usage
//
//	factory, err := proxy.NewFactory(cfg.Spec.Backends,
//	    proxy.WithLogger(logger),
//	    proxy.WithMetrics(proxy.NewMetrics(registry)),
//	)
//	if err != nil {
//	    return err
//	}
//	handler, err := factory.RouteHandler(&cfg.Spec.Routes[0])
package proxy
