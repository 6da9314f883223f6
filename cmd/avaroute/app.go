package main

import (
	"net/http"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/gateway"
	"github.com/vyrodovalexey/avaroute/internal/health"
	"github.com/vyrodovalexey/avaroute/internal/middleware"
	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/proxy"
	"github.com/vyrodovalexey/avaroute/internal/router"
)

// application holds all application components.
type application struct {
	gateway       *gateway.Gateway
	routeHandler  *router.Handler
	loader        *gateway.RouteLoader
	healthChecker *health.Checker
	metrics       *observability.Metrics
	tracer        *observability.Tracer
	rateLimiter   *middleware.RateLimiter
	metricsServer *http.Server
	config        *config.GatewayConfig
}

// initApplication initializes all application components and publishes
// the first route table.
func initApplication(cfg *config.GatewayConfig, logger observability.Logger) *application {
	metrics := observability.NewMetrics("avaroute")
	metrics.SetBuildInfo(version, gitCommit, buildTime)

	// Component metrics share the gateway registry so they appear on the
	// same /metrics endpoint.
	routerMetrics := router.NewMetrics(metrics.Registry())
	proxyMetrics := proxy.NewMetrics(metrics.Registry())
	mwMetrics := middleware.NewMetrics(metrics.Registry())

	tracer := initTracer(cfg, logger)

	routeHandler := router.NewHandler(
		router.WithLogger(logger),
		router.WithMetrics(routerMetrics),
	)
	loader := gateway.NewRouteLoader(routeHandler,
		gateway.WithLoaderLogger(logger),
		gateway.WithLoaderMetrics(metrics, routerMetrics, proxyMetrics),
	)
	if err := loader.Load(cfg); err != nil {
		logger.Fatal("failed to load routes", observability.Error(err))
	}

	healthChecker := health.NewChecker(version)
	healthChecker.RegisterCheck("routes", health.RouteTableCheck(routeHandler))
	healthChecker.RegisterCheck("reload", health.ReloadCheck(loader.LastError))
	healthChecker.RegisterCheck("backends", health.CircuitCheck(loader.OpenCircuits))

	chain, rateLimiter := buildMiddlewareChain(cfg, logger, metrics, mwMetrics, tracer)

	gw, err := gateway.New(cfg,
		gateway.WithLogger(logger),
		gateway.WithRouteHandler(routeHandler),
		gateway.WithMiddleware(chain...),
		gateway.WithShutdownTimeout(gateway.DefaultShutdownTimeout),
	)
	if err != nil {
		logger.Fatal("failed to create gateway", observability.Error(err))
	}

	return &application{
		gateway:       gw,
		routeHandler:  routeHandler,
		loader:        loader,
		healthChecker: healthChecker,
		metrics:       metrics,
		tracer:        tracer,
		rateLimiter:   rateLimiter,
		config:        cfg,
	}
}
