package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/health"
	"github.com/vyrodovalexey/avaroute/internal/observability"
)

// Metrics server timeouts.
const (
	metricsReadTimeout       = 10 * time.Second
	metricsReadHeaderTimeout = 5 * time.Second
	metricsWriteTimeout      = 10 * time.Second
)

// startMetricsServerIfEnabled starts the metrics and health server if
// metrics are enabled.
func startMetricsServerIfEnabled(app *application, logger observability.Logger) {
	obs := app.config.Spec.Observability
	if obs == nil || obs.Metrics == nil || !obs.Metrics.Enabled {
		return
	}

	path := obs.Metrics.Path
	if path == "" {
		path = config.DefaultMetricsPath
	}
	port := obs.Metrics.Port
	if port == 0 {
		port = config.DefaultMetricsPort
	}

	app.metricsServer = newMetricsServer(port, path, app.metrics, app.healthChecker)

	logger.Info("starting metrics server",
		observability.String("address", app.metricsServer.Addr),
		observability.String("metrics_path", path),
	)

	go func() {
		if err := app.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", observability.Error(err))
		}
	}()
}

// newMetricsServer builds the server for metrics and health endpoints.
func newMetricsServer(
	port int,
	path string,
	metrics *observability.Metrics,
	healthChecker *health.Checker,
) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           newMetricsEngine(path, metrics, healthChecker),
		ReadTimeout:       metricsReadTimeout,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
		WriteTimeout:      metricsWriteTimeout,
	}
}

func newMetricsEngine(path string, metrics *observability.Metrics, healthChecker *health.Checker) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET(path, gin.WrapH(metrics.Handler()))
	healthChecker.RegisterRoutes(engine)
	return engine
}
