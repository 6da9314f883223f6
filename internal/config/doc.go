// Package config provides the avaroute configuration model, YAML loading,
// validation and file watching for hot reload.
//
// # Features
//
//   - YAML configuration file loading
//   - Environment variable substitution with ${VAR:-default} syntax
//   - Validation with detailed error reporting, including compilation
//     of every route specification
//   - File watching for configuration hot reload
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("avaroute.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := config.ValidateConfig(cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// # File Watching
//
//	watcher, err := config.NewWatcher(path, func(cfg *config.GatewayConfig) {
//	    // rebuild and publish the route table
//	}, config.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = watcher.Start(ctx)
package config
