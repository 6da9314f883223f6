package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vyrodovalexey/avaroute/internal/util"
)

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

const escapedDollar = "\x00ESCAPED_DOLLAR\x00"

// LoadConfig loads configuration from a file path.
func LoadConfig(path string) (*GatewayConfig, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	data, err := os.ReadFile(absPath) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return parseConfig(data)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*GatewayConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*GatewayConfig, error) {
	content := substituteEnvVars(string(data))

	dec := yaml.NewDecoder(bytes.NewReader([]byte(content)))
	dec.KnownFields(true)

	var cfg GatewayConfig
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, util.NewConfigError("", "configuration is empty")
		}
		return nil, util.NewConfigErrorWithCause("", "failed to parse YAML", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// applyDefaults fills optional sections that were omitted.
func applyDefaults(cfg *GatewayConfig) {
	defaults := DefaultConfig()

	if cfg.Spec.Observability == nil {
		cfg.Spec.Observability = defaults.Spec.Observability
	} else {
		obs := cfg.Spec.Observability
		if obs.Metrics == nil {
			obs.Metrics = defaults.Spec.Observability.Metrics
		}
		if obs.Tracing == nil {
			obs.Tracing = defaults.Spec.Observability.Tracing
		}
		if obs.Logging == nil {
			obs.Logging = defaults.Spec.Observability.Logging
		}
		if obs.Metrics.Path == "" {
			obs.Metrics.Path = DefaultMetricsPath
		}
		if obs.Metrics.Port == 0 {
			obs.Metrics.Port = DefaultMetricsPort
		}
		if obs.Tracing.ServiceName == "" {
			obs.Tracing.ServiceName = DefaultServiceName
		}
	}

	for i := range cfg.Spec.Listeners {
		if cfg.Spec.Listeners[i].Bind == "" {
			cfg.Spec.Listeners[i].Bind = "0.0.0.0"
		}
	}
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default} with environment
// values. "$$" escapes a literal dollar sign.
func substituteEnvVars(content string) string {
	content = strings.ReplaceAll(content, "$$", escapedDollar)

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		if value, ok := os.LookupEnv(sub[1]); ok {
			return value
		}
		return sub[2]
	})

	return strings.ReplaceAll(result, escapedDollar, "$")
}

// ResolveConfigPath resolves a configuration file path, checking common
// locations for relative paths.
func ResolveConfigPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file not found: %s", path)
		}
		return path, nil
	}

	candidates := []string{
		path,
		filepath.Join("configs", path),
		filepath.Join(string(filepath.Separator), "etc", "avaroute", path),
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return filepath.Abs(p)
		}
	}
	return "", fmt.Errorf("config file not found: %s", path)
}
