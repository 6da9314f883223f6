package router

import (
	"errors"
	"fmt"

	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/routespec"
	"github.com/vyrodovalexey/avaroute/internal/util"
)

// ErrSealed is returned when a builder is used after Build.
var ErrSealed = errors.New("router builder already built")

// Route is a registered route specification and its target.
type Route[T any] struct {
	name     string
	spec     string
	index    int
	patterns []*routespec.Pattern
	target   T
}

// Name returns the route name. It defaults to the specification.
func (r *Route[T]) Name() string { return r.name }

// Spec returns the route specification.
func (r *Route[T]) Spec() string { return r.spec }

// Index returns the registration position, which is also the precedence.
func (r *Route[T]) Index() int { return r.index }

// Target returns the downstream target.
func (r *Route[T]) Target() T { return r.target }

// Patterns returns the compiled patterns, shortest first.
func (r *Route[T]) Patterns() []*routespec.Pattern {
	out := make([]*routespec.Pattern, len(r.patterns))
	copy(out, r.patterns)
	return out
}

// Match is the outcome of a successful dispatch.
type Match[T any] struct {
	// Route is nil for fallback matches.
	Route   *Route[T]
	Pattern *routespec.Pattern
	Target  T
	Result  *PathResult
	// Fallback is set when no route matched and the fallback produced
	// the target.
	Fallback bool
}

// RouteOption configures a single registration.
type RouteOption func(*routeOptions)

type routeOptions struct {
	name string
}

// WithName sets the route name used in logs and metrics. Names given this
// way must be unique within a builder.
func WithName(name string) RouteOption {
	return func(o *routeOptions) {
		o.name = name
	}
}

// BuilderOption configures a Builder.
type BuilderOption func(*builderConfig)

type builderConfig struct {
	logger  observability.Logger
	metrics *Metrics
}

// WithBuilderLogger sets the logger used for registration events.
func WithBuilderLogger(logger observability.Logger) BuilderOption {
	return func(c *builderConfig) {
		c.logger = logger
	}
}

// WithBuilderMetrics records compile failures.
func WithBuilderMetrics(m *Metrics) BuilderOption {
	return func(c *builderConfig) {
		c.metrics = m
	}
}

// Builder collects routes before dispatch starts. It is not safe for
// concurrent use.
type Builder[T any] struct {
	cfg      builderConfig
	routes   []*Route[T]
	names    map[string]struct{}
	fallback func(rawPath string) T
	sealed   bool
}

// NewBuilder creates an empty builder.
func NewBuilder[T any](opts ...BuilderOption) *Builder[T] {
	b := &Builder[T]{
		cfg:   builderConfig{logger: observability.NopLogger()},
		names: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(&b.cfg)
	}
	return b
}

// Register compiles spec and appends it to the table. Compile errors fail
// the registration and leave the table unchanged.
func (b *Builder[T]) Register(spec string, target T, opts ...RouteOption) (*Route[T], error) {
	if b.sealed {
		return nil, ErrSealed
	}

	o := routeOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	name := spec
	if o.name != "" {
		if _, exists := b.names[o.name]; exists {
			return nil, fmt.Errorf("duplicate route name: %s", o.name)
		}
		name = o.name
	}

	patterns, err := routespec.Compile(spec)
	if err != nil {
		if b.cfg.metrics != nil {
			b.cfg.metrics.compileErrors.Inc()
		}
		b.cfg.logger.Warn("route compilation failed",
			observability.String("route", name),
			observability.String("spec", spec),
			observability.Error(err),
		)
		return nil, fmt.Errorf("failed to compile route %s: %w", name, err)
	}

	route := &Route[T]{
		name:     name,
		spec:     spec,
		index:    len(b.routes),
		patterns: patterns,
		target:   target,
	}
	b.routes = append(b.routes, route)
	if o.name != "" {
		b.names[o.name] = struct{}{}
	}

	b.cfg.logger.Debug("route registered",
		observability.String("route", name),
		observability.String("spec", spec),
		observability.Int("patterns", len(patterns)),
	)
	return route, nil
}

// SetFallback installs fn as the last resort for unmatched paths. It
// replaces the not-found outcome entirely and receives the raw path. The
// HTTP Handler serves a nil result, typed or not, as not found.
func (b *Builder[T]) SetFallback(fn func(rawPath string) T) error {
	if b.sealed {
		return ErrSealed
	}
	b.fallback = fn
	return nil
}

// Build seals the builder and returns the immutable router.
func (b *Builder[T]) Build() *Router[T] {
	b.sealed = true

	routes := make([]*Route[T], len(b.routes))
	copy(routes, b.routes)

	patterns := 0
	for _, r := range routes {
		patterns += len(r.patterns)
	}
	return &Router[T]{
		routes:   routes,
		fallback: b.fallback,
		patterns: patterns,
	}
}

// Router is an immutable route table.
type Router[T any] struct {
	routes   []*Route[T]
	fallback func(rawPath string) T
	patterns int
}

// Dispatch finds the first route matching rawPath. When nothing matches it
// returns the fallback target if one is set and a *util.RouteNotFoundError
// otherwise.
func (r *Router[T]) Dispatch(rawPath string) (*Match[T], error) {
	return r.DispatchSegments(rawPath, SplitPath(rawPath))
}

// DispatchSegments is Dispatch for a path that is already split into
// segments. rawPath is only passed to the fallback.
func (r *Router[T]) DispatchSegments(rawPath string, segments []string) (*Match[T], error) {
	for _, route := range r.routes {
		for _, p := range route.patterns {
			if result, ok := MatchPattern(p, segments); ok {
				return &Match[T]{
					Route:   route,
					Pattern: p,
					Target:  route.target,
					Result:  result,
				}, nil
			}
		}
	}

	if r.fallback != nil {
		return &Match[T]{
			Target:   r.fallback(rawPath),
			Result:   emptyResult(),
			Fallback: true,
		}, nil
	}
	return nil, util.NewRouteNotFoundError(rawPath)
}

// Routes returns the routes in precedence order.
func (r *Router[T]) Routes() []*Route[T] {
	out := make([]*Route[T], len(r.routes))
	copy(out, r.routes)
	return out
}

// Len returns the number of routes.
func (r *Router[T]) Len() int { return len(r.routes) }

// PatternCount returns the number of compiled patterns across all routes.
func (r *Router[T]) PatternCount() int { return r.patterns }

// HasFallback reports whether a fallback is installed.
func (r *Router[T]) HasFallback() bool { return r.fallback != nil }
