package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/gateway"
	"github.com/vyrodovalexey/avaroute/internal/observability"
)

// runGateway runs the gateway and handles shutdown.
func runGateway(app *application, configPath string, logger observability.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.gateway.Start(ctx); err != nil {
		logger.Fatal("failed to start gateway", observability.Error(err))
	}

	startMetricsServerIfEnabled(app, logger)
	watcher := startConfigWatcher(ctx, app, configPath, logger)

	waitForShutdown(app, watcher, logger)
}

// startConfigWatcher watches the configuration file and republishes the
// route table on change. Listener and observability settings are read
// once at startup; only routes, backends and the fallback are reloaded.
func startConfigWatcher(
	ctx context.Context,
	app *application,
	configPath string,
	logger observability.Logger,
) *config.Watcher {
	watcher, err := config.NewWatcher(configPath, func(newCfg *config.GatewayConfig) error {
		logger.Info("configuration changed, rebuilding route table")
		if err := app.loader.Load(newCfg); err != nil {
			return err
		}
		logger.Info("route table reloaded",
			observability.Int("routes", app.routeHandler.Router().Len()),
			observability.Int("patterns", app.routeHandler.Router().PatternCount()),
		)
		return nil
	},
		config.WithLogger(logger),
		config.WithErrorCallback(func(err error) {
			// Build failures are already counted by the loader.
			if !errors.Is(err, gateway.ErrRouteTableBuild) {
				app.metrics.RecordConfigReload(observability.ReloadFailure)
			}
		}),
	)
	if err != nil {
		logger.Warn("failed to create config watcher", observability.Error(err))
		return nil
	}

	if err := watcher.Start(ctx); err != nil {
		logger.Warn("failed to start config watcher", observability.Error(err))
		_ = watcher.Stop()
		return nil
	}

	return watcher
}

// waitForShutdown waits for a shutdown signal and stops every component.
func waitForShutdown(app *application, watcher *config.Watcher, logger observability.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", observability.String("signal", sig.String()))

	shutdown(app, watcher, logger)
}

// shutdown stops the application. Readiness fails first so load
// balancers stop sending traffic while in-flight requests drain.
func shutdown(app *application, watcher *config.Watcher, logger observability.Logger) {
	app.healthChecker.SetDraining(true)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gateway.DefaultShutdownTimeout)
	defer cancel()

	if watcher != nil {
		_ = watcher.Stop()
	}

	if err := app.gateway.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop gateway gracefully", observability.Error(err))
	}

	if app.metricsServer != nil {
		logger.Info("stopping metrics server")
		if err := app.metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to stop metrics server gracefully", observability.Error(err))
		}
	}

	if err := app.tracer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown tracer", observability.Error(err))
	}

	if app.rateLimiter != nil {
		app.rateLimiter.Stop()
	}

	logger.Info("avaroute stopped")
}
