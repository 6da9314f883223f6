// Package observability provides logging, metrics, and tracing for
// avaroute.
//
// # Logging
//
// The Logger interface wraps zap:
//
//	logger, err := observability.NewLogger(observability.LogConfig{Level: "info", Format: "json"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("route table published",
//	    observability.Int("routes", 12),
//	)
//
// # Metrics
//
// Metrics owns a private Prometheus registry. Other packages register
// their collectors on it so a single /metrics endpoint exposes everything:
//
//	metrics := observability.NewMetrics("avaroute")
//	routerMetrics := router.NewMetrics(metrics.Registry())
//
// # Tracing
//
// Tracer configures OpenTelemetry with an optional OTLP gRPC exporter.
// TracingMiddleware opens a server span per request; the router adds the
// matched route to it.
package observability
