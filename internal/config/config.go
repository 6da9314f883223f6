package config

import (
	"time"
)

// Default values.
const (
	DefaultAPIVersion     = "avaroute.io/v1"
	DefaultKind           = "Gateway"
	DefaultListenerPort   = 8080
	DefaultMetricsPort    = 9090
	DefaultMetricsPath    = "/metrics"
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultIdleTimeout    = 120 * time.Second
	DefaultRouteTimeout   = 30 * time.Second
	DefaultCBThreshold    = 5
	DefaultCBTimeout      = 30 * time.Second
	DefaultServiceName    = "avaroute"
	DefaultDirectResponse = 200
)

// GatewayConfig is the root configuration document.
type GatewayConfig struct {
	APIVersion string      `yaml:"apiVersion" json:"apiVersion"`
	Kind       string      `yaml:"kind" json:"kind"`
	Metadata   Metadata    `yaml:"metadata" json:"metadata"`
	Spec       GatewaySpec `yaml:"spec" json:"spec"`
}

// Metadata identifies a configuration document.
type Metadata struct {
	Name   string            `yaml:"name" json:"name"`
	Labels map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
}

// GatewaySpec holds listeners, the route table and its targets.
type GatewaySpec struct {
	Listeners     []Listener           `yaml:"listeners" json:"listeners"`
	Routes        []Route              `yaml:"routes" json:"routes"`
	Backends      []Backend            `yaml:"backends,omitempty" json:"backends,omitempty"`
	Fallback      *Fallback            `yaml:"fallback,omitempty" json:"fallback,omitempty"`
	RateLimit     *RateLimitConfig     `yaml:"rateLimit,omitempty" json:"rateLimit,omitempty"`
	Observability *ObservabilityConfig `yaml:"observability,omitempty" json:"observability,omitempty"`
}

// Listener is an HTTP listener.
type Listener struct {
	Name     string            `yaml:"name" json:"name"`
	Port     int               `yaml:"port" json:"port"`
	Bind     string            `yaml:"bind,omitempty" json:"bind,omitempty"`
	Timeouts *ListenerTimeouts `yaml:"timeouts,omitempty" json:"timeouts,omitempty"`
}

// ListenerTimeouts configures http.Server timeouts.
type ListenerTimeouts struct {
	ReadTimeout       Duration `yaml:"readTimeout,omitempty" json:"readTimeout,omitempty"`
	ReadHeaderTimeout Duration `yaml:"readHeaderTimeout,omitempty" json:"readHeaderTimeout,omitempty"`
	WriteTimeout      Duration `yaml:"writeTimeout,omitempty" json:"writeTimeout,omitempty"`
	IdleTimeout       Duration `yaml:"idleTimeout,omitempty" json:"idleTimeout,omitempty"`
}

// Route binds a route specification to a backend or a direct response.
// Routes are matched in the order they appear.
type Route struct {
	Name string `yaml:"name" json:"name"`
	// Path is the route specification, e.g. /users/:id([0-9]+).
	Path           string                `yaml:"path" json:"path"`
	Backend        string                `yaml:"backend,omitempty" json:"backend,omitempty"`
	DirectResponse *DirectResponseConfig `yaml:"directResponse,omitempty" json:"directResponse,omitempty"`
	Timeout        Duration              `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	// StripPrefix forwards only the wildcard tail as the upstream path.
	StripPrefix bool `yaml:"stripPrefix,omitempty" json:"stripPrefix,omitempty"`
	// ForwardParams sends captured variables as X-Route-Param-<Name> headers.
	ForwardParams bool `yaml:"forwardParams,omitempty" json:"forwardParams,omitempty"`
}

// Backend is an upstream HTTP service.
type Backend struct {
	Name           string                `yaml:"name" json:"name"`
	URL            string                `yaml:"url" json:"url"`
	CircuitBreaker *CircuitBreakerConfig `yaml:"circuitBreaker,omitempty" json:"circuitBreaker,omitempty"`
}

// CircuitBreakerConfig configures a backend circuit breaker.
type CircuitBreakerConfig struct {
	Enabled          bool     `yaml:"enabled" json:"enabled"`
	Threshold        int      `yaml:"threshold" json:"threshold"`
	Timeout          Duration `yaml:"timeout" json:"timeout"`
	HalfOpenRequests int      `yaml:"halfOpenRequests,omitempty" json:"halfOpenRequests,omitempty"`
}

// DirectResponseConfig is a static response served without an upstream.
type DirectResponseConfig struct {
	Status  int               `yaml:"status" json:"status"`
	Body    string            `yaml:"body,omitempty" json:"body,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// Fallback handles paths no route matches. Exactly one of Backend and
// DirectResponse must be set.
type Fallback struct {
	Backend        string                `yaml:"backend,omitempty" json:"backend,omitempty"`
	DirectResponse *DirectResponseConfig `yaml:"directResponse,omitempty" json:"directResponse,omitempty"`
}

// RateLimitConfig configures request rate limiting.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" json:"enabled"`
	RequestsPerSecond int  `yaml:"requestsPerSecond" json:"requestsPerSecond"`
	Burst             int  `yaml:"burst" json:"burst"`
	PerClient         bool `yaml:"perClient,omitempty" json:"perClient,omitempty"`
}

// ObservabilityConfig groups metrics, tracing and logging settings.
type ObservabilityConfig struct {
	Metrics *MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty"`
	Tracing *TracingConfig `yaml:"tracing,omitempty" json:"tracing,omitempty"`
	Logging *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`
}

// MetricsConfig configures the metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path,omitempty" json:"path,omitempty"`
	Port    int    `yaml:"port,omitempty" json:"port,omitempty"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	SamplingRate float64 `yaml:"samplingRate,omitempty" json:"samplingRate,omitempty"`
	OTLPEndpoint string  `yaml:"otlpEndpoint,omitempty" json:"otlpEndpoint,omitempty"`
	Insecure     bool    `yaml:"insecure,omitempty" json:"insecure,omitempty"`
	ServiceName  string  `yaml:"serviceName,omitempty" json:"serviceName,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level     string `yaml:"level,omitempty" json:"level,omitempty"`
	Format    string `yaml:"format,omitempty" json:"format,omitempty"`
	Output    string `yaml:"output,omitempty" json:"output,omitempty"`
	AccessLog *bool  `yaml:"accessLog,omitempty" json:"accessLog,omitempty"`
}

// AccessLogEnabled reports whether access logging is on. It defaults to true.
func (c *LoggingConfig) AccessLogEnabled() bool {
	return c == nil || c.AccessLog == nil || *c.AccessLog
}

// DefaultConfig returns a configuration with one listener and no routes.
func DefaultConfig() *GatewayConfig {
	return &GatewayConfig{
		APIVersion: DefaultAPIVersion,
		Kind:       DefaultKind,
		Metadata:   Metadata{Name: DefaultServiceName},
		Spec: GatewaySpec{
			Listeners: []Listener{{Name: "http", Port: DefaultListenerPort, Bind: "0.0.0.0"}},
			Observability: &ObservabilityConfig{
				Metrics: &MetricsConfig{Enabled: true, Path: DefaultMetricsPath, Port: DefaultMetricsPort},
				Tracing: &TracingConfig{Enabled: false, SamplingRate: 1.0, ServiceName: DefaultServiceName},
				Logging: &LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
			},
		},
	}
}

// Backend returns the backend with the given name.
func (s *GatewaySpec) Backend(name string) (*Backend, bool) {
	for i := range s.Backends {
		if s.Backends[i].Name == name {
			return &s.Backends[i], true
		}
	}
	return nil, false
}

// EffectiveTimeout returns the route timeout or the default.
func (r *Route) EffectiveTimeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout.Duration()
	}
	return DefaultRouteTimeout
}

// EffectiveStatus returns the configured status or 200.
func (d *DirectResponseConfig) EffectiveStatus() int {
	if d.Status == 0 {
		return DefaultDirectResponse
	}
	return d.Status
}
