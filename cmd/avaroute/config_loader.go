package main

import (
	"context"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/observability"
)

// resolveConfigPath finds the configuration file, also looking in
// configs/ and /etc/avaroute for relative paths.
func resolveConfigPath(path string, logger observability.Logger) string {
	resolved, err := config.ResolveConfigPath(path)
	if err != nil {
		logger.Fatal("failed to resolve configuration path", observability.Error(err))
	}
	return resolved
}

// loadAndValidateConfig loads and validates the configuration.
func loadAndValidateConfig(configPath string, logger observability.Logger) *config.GatewayConfig {
	logger.Info("starting avaroute",
		observability.String("version", version),
		observability.String("config", configPath),
	)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", observability.Error(err))
	}

	if err := config.ValidateConfig(cfg); err != nil {
		logger.Fatal("invalid configuration", observability.Error(err))
	}

	logger.Info("configuration loaded",
		observability.String("name", cfg.Metadata.Name),
		observability.Int("listeners", len(cfg.Spec.Listeners)),
		observability.Int("routes", len(cfg.Spec.Routes)),
		observability.Int("backends", len(cfg.Spec.Backends)),
		observability.Bool("fallback", cfg.Spec.Fallback != nil),
	)

	return cfg
}

// initTracer initializes the tracer.
func initTracer(cfg *config.GatewayConfig, logger observability.Logger) *observability.Tracer {
	tracerCfg := tracerConfig(cfg)

	tracer, err := observability.NewTracer(context.Background(), tracerCfg)
	if err != nil {
		logger.Fatal("failed to initialize tracer", observability.Error(err))
	}

	if tracerCfg.Enabled {
		logger.Info("tracing enabled",
			observability.String("endpoint", tracerCfg.OTLPEndpoint),
			observability.Any("sampling_rate", tracerCfg.SamplingRate),
		)
	}
	return tracer
}

func tracerConfig(cfg *config.GatewayConfig) observability.TracerConfig {
	tracerCfg := observability.TracerConfig{
		ServiceName:    config.DefaultServiceName,
		ServiceVersion: version,
		SamplingRate:   1.0,
	}

	if cfg.Spec.Observability != nil && cfg.Spec.Observability.Tracing != nil {
		t := cfg.Spec.Observability.Tracing
		tracerCfg.Enabled = t.Enabled
		tracerCfg.SamplingRate = t.SamplingRate
		tracerCfg.OTLPEndpoint = t.OTLPEndpoint
		tracerCfg.Insecure = t.Insecure
		if t.ServiceName != "" {
			tracerCfg.ServiceName = t.ServiceName
		}
	}
	return tracerCfg
}
