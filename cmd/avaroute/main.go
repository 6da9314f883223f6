// Package main is the entry point for the avaroute gateway.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/observability"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
	check       bool
}

func main() {
	flags := parseFlags(flag.CommandLine, os.Args[1:])

	if flags.showVersion {
		printVersion()
		return
	}

	if flags.check {
		os.Exit(runCheckCommand(flags.configPath))
	}

	gin.SetMode(gin.ReleaseMode)

	logger := initLogger(flags)
	defer func() { _ = logger.Sync() }()

	configPath := resolveConfigPath(flags.configPath, logger)
	cfg := loadAndValidateConfig(configPath, logger)
	logger = reconfigureLogger(cfg, flags, logger)
	app := initApplication(cfg, logger)

	runGateway(app, configPath, logger)
}

// parseFlags parses command line flags.
func parseFlags(fs *flag.FlagSet, args []string) cliFlags {
	var f cliFlags
	fs.StringVar(&f.configPath, "config", getEnvOrDefault("AVAROUTE_CONFIG_PATH", "configs/avaroute.yaml"),
		"Path to configuration file")
	fs.StringVar(&f.logLevel, "log-level", getEnvOrDefault("AVAROUTE_LOG_LEVEL", ""),
		"Log level (debug, info, warn, error); overrides the configuration file")
	fs.StringVar(&f.logFormat, "log-format", getEnvOrDefault("AVAROUTE_LOG_FORMAT", ""),
		"Log format (json, console); overrides the configuration file")
	fs.BoolVar(&f.showVersion, "version", false, "Show version information")
	fs.BoolVar(&f.check, "check", getEnvBool("AVAROUTE_CHECK", false),
		"Compile the configured routes, print the pattern table and exit")
	_ = fs.Parse(args)
	return f
}

// printVersion prints version information.
func printVersion() {
	fmt.Printf("avaroute version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// initLogger initializes the logger. Flags take precedence over the
// logging section of the configuration file, which is applied once the
// file is loaded.
func initLogger(flags cliFlags) observability.Logger {
	cfg := observability.DefaultLogConfig()
	if flags.logLevel != "" {
		cfg.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Format = flags.logFormat
	}

	logger, err := observability.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// reconfigureLogger rebuilds the logger from the configuration file's
// logging section. Values given on the command line win.
func reconfigureLogger(
	cfg *config.GatewayConfig,
	flags cliFlags,
	current observability.Logger,
) observability.Logger {
	lc := loggingConfig(cfg)
	if lc == nil {
		return current
	}

	logCfg := observability.DefaultLogConfig()
	if lc.Level != "" {
		logCfg.Level = lc.Level
	}
	if lc.Format != "" {
		logCfg.Format = lc.Format
	}
	if lc.Output != "" {
		logCfg.Output = lc.Output
	}
	if flags.logLevel != "" {
		logCfg.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		logCfg.Format = flags.logFormat
	}

	logger, err := observability.NewLogger(logCfg)
	if err != nil {
		current.Warn("invalid logging configuration, keeping defaults", observability.Error(err))
		return current
	}
	_ = current.Sync()
	return logger
}

func loggingConfig(cfg *config.GatewayConfig) *config.LoggingConfig {
	if cfg.Spec.Observability == nil {
		return nil
	}
	return cfg.Spec.Observability.Logging
}
