package config

import (
	"fmt"
	"strings"

	"github.com/vyrodovalexey/avaroute/internal/routespec"
	"github.com/vyrodovalexey/avaroute/internal/util"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, e[i].Error())
	}
	return sb.String()
}

// Is reports a match for util.ErrConfigInvalid.
func (e ValidationErrors) Is(target error) bool {
	return target == util.ErrConfigInvalid
}

// Validator validates gateway configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateConfig validates a gateway configuration.
func ValidateConfig(cfg *GatewayConfig) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration. Every route specification is
// compiled, so a configuration that passes can always be turned into a
// route table.
func (v *Validator) Validate(cfg *GatewayConfig) error {
	v.errors = nil

	if cfg == nil {
		v.addError("", "configuration is nil")
		return v.errors
	}

	if cfg.APIVersion == "" {
		v.addError("apiVersion", "apiVersion is required")
	} else if !strings.HasPrefix(cfg.APIVersion, "avaroute.io/") {
		v.addError("apiVersion", "apiVersion must start with 'avaroute.io/'")
	}
	if cfg.Kind != DefaultKind {
		v.addError("kind", "kind must be 'Gateway'")
	}
	if cfg.Metadata.Name == "" {
		v.addError("metadata.name", "name is required")
	}

	v.validateListeners(cfg.Spec.Listeners)
	v.validateBackends(cfg.Spec.Backends)
	v.validateRoutes(&cfg.Spec)
	if cfg.Spec.Fallback != nil {
		v.validateFallback(cfg.Spec.Fallback, &cfg.Spec)
	}
	if cfg.Spec.RateLimit != nil {
		v.validateRateLimit(cfg.Spec.RateLimit)
	}
	if cfg.Spec.Observability != nil {
		v.validateObservability(cfg.Spec.Observability)
	}

	if len(v.errors) > 0 {
		return v.errors
	}
	return nil
}

func (v *Validator) validateListeners(listeners []Listener) {
	if len(listeners) == 0 {
		v.addError("spec.listeners", "at least one listener is required")
		return
	}

	names := make(map[string]bool)
	ports := make(map[string]bool)
	for i, l := range listeners {
		path := fmt.Sprintf("spec.listeners[%d]", i)
		if l.Name == "" {
			v.addError(path+".name", "name is required")
		} else if names[l.Name] {
			v.addError(path+".name", fmt.Sprintf("duplicate listener name: %s", l.Name))
		}
		names[l.Name] = true

		if err := util.ValidatePort(l.Port); err != nil {
			v.addError(path+".port", err.Error())
			continue
		}
		addr := fmt.Sprintf("%s:%d", l.Bind, l.Port)
		if ports[addr] {
			v.addError(path+".port", fmt.Sprintf("duplicate listener address: %s", addr))
		}
		ports[addr] = true
	}
}

func (v *Validator) validateBackends(backends []Backend) {
	names := make(map[string]bool)
	for i, b := range backends {
		path := fmt.Sprintf("spec.backends[%d]", i)
		if b.Name == "" {
			v.addError(path+".name", "name is required")
		} else if names[b.Name] {
			v.addError(path+".name", fmt.Sprintf("duplicate backend name: %s", b.Name))
		}
		names[b.Name] = true

		if err := util.ValidateURL(b.URL); err != nil {
			v.addError(path+".url", err.Error())
		}

		if cb := b.CircuitBreaker; cb != nil && cb.Enabled {
			if cb.Threshold < 0 {
				v.addError(path+".circuitBreaker.threshold", "threshold must not be negative")
			}
			if cb.HalfOpenRequests < 0 {
				v.addError(path+".circuitBreaker.halfOpenRequests", "halfOpenRequests must not be negative")
			}
		}
	}
}

func (v *Validator) validateRoutes(spec *GatewaySpec) {
	if len(spec.Routes) == 0 {
		v.addError("spec.routes", "at least one route is required")
		return
	}

	names := make(map[string]bool)
	for i := range spec.Routes {
		r := &spec.Routes[i]
		path := fmt.Sprintf("spec.routes[%d]", i)

		if r.Name == "" {
			v.addError(path+".name", "name is required")
		} else if names[r.Name] {
			v.addError(path+".name", fmt.Sprintf("duplicate route name: %s", r.Name))
		}
		names[r.Name] = true

		if r.Path == "" {
			v.addError(path+".path", "path is required")
		} else if patterns, err := routespec.Compile(r.Path); err != nil {
			v.addError(path+".path", err.Error())
		} else if r.StripPrefix && !hasWildcard(patterns) {
			v.addError(path+".stripPrefix", "stripPrefix requires a wildcard in path")
		}

		v.validateTarget(path, r.Backend, r.DirectResponse, spec)
	}
}

func hasWildcard(patterns []*routespec.Pattern) bool {
	for _, p := range patterns {
		if p.HasWildcard() {
			return true
		}
	}
	return false
}

func (v *Validator) validateFallback(fb *Fallback, spec *GatewaySpec) {
	v.validateTarget("spec.fallback", fb.Backend, fb.DirectResponse, spec)
}

// validateTarget checks that exactly one of backend and directResponse is
// set and that the backend exists.
func (v *Validator) validateTarget(path, backend string, direct *DirectResponseConfig, spec *GatewaySpec) {
	switch {
	case backend == "" && direct == nil:
		v.addError(path, "one of backend or directResponse is required")
	case backend != "" && direct != nil:
		v.addError(path, "backend and directResponse are mutually exclusive")
	case backend != "":
		if _, ok := spec.Backend(backend); !ok {
			v.addError(path+".backend", fmt.Sprintf("unknown backend: %s", backend))
		}
	default:
		v.validateDirectResponse(path+".directResponse", direct)
	}
}

func (v *Validator) validateDirectResponse(path string, d *DirectResponseConfig) {
	if d.Status != 0 {
		if err := util.ValidateHTTPStatusCode(d.Status); err != nil {
			v.addError(path+".status", err.Error())
		}
	}
	for name := range d.Headers {
		if err := util.ValidateHeaderName(name); err != nil {
			v.addError(path+".headers", err.Error())
		}
	}
}

func (v *Validator) validateRateLimit(rl *RateLimitConfig) {
	if !rl.Enabled {
		return
	}
	if rl.RequestsPerSecond <= 0 {
		v.addError("spec.rateLimit.requestsPerSecond", "requestsPerSecond must be positive")
	}
	if rl.Burst < 0 {
		v.addError("spec.rateLimit.burst", "burst must not be negative")
	}
}

func (v *Validator) validateObservability(obs *ObservabilityConfig) {
	if m := obs.Metrics; m != nil && m.Enabled {
		if err := util.ValidatePort(m.Port); err != nil {
			v.addError("spec.observability.metrics.port", err.Error())
		}
		if !strings.HasPrefix(m.Path, "/") {
			v.addError("spec.observability.metrics.path", "path must start with '/'")
		}
	}
	if t := obs.Tracing; t != nil && (t.SamplingRate < 0 || t.SamplingRate > 1) {
		v.addError("spec.observability.tracing.samplingRate", "samplingRate must be between 0 and 1")
	}
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}
