package gateway

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/proxy"
	"github.com/vyrodovalexey/avaroute/internal/router"
)

// BuildRouter compiles the routes of cfg, in order, into a sealed router.
// Targets are created by factory. A configured fallback receives every
// path no route matches.
func BuildRouter(
	cfg *config.GatewayConfig,
	factory *proxy.Factory,
	opts ...router.BuilderOption,
) (*router.Router[http.Handler], error) {
	b := router.NewBuilder[http.Handler](opts...)

	for i := range cfg.Spec.Routes {
		r := &cfg.Spec.Routes[i]
		target, err := factory.RouteHandler(r)
		if err != nil {
			return nil, err
		}
		var ropts []router.RouteOption
		if r.Name != "" {
			ropts = append(ropts, router.WithName(r.Name))
		}
		if _, err := b.Register(r.Path, target, ropts...); err != nil {
			return nil, err
		}
	}

	if fb := cfg.Spec.Fallback; fb != nil {
		target, err := factory.FallbackHandler(fb)
		if err != nil {
			return nil, err
		}
		if err := b.SetFallback(func(string) http.Handler { return target }); err != nil {
			return nil, err
		}
	}

	return b.Build(), nil
}

// RouteLoader builds route tables from configuration and publishes them on
// a router.Handler.
type RouteLoader struct {
	handler       *router.Handler
	logger        observability.Logger
	metrics       *observability.Metrics
	routerMetrics *router.Metrics
	proxyMetrics  *proxy.Metrics
	transport     http.RoundTripper

	mu      sync.RWMutex
	lastErr error
	factory *proxy.Factory
}

// RouteLoaderOption configures a RouteLoader.
type RouteLoaderOption func(*RouteLoader)

// WithLoaderLogger sets the logger.
func WithLoaderLogger(logger observability.Logger) RouteLoaderOption {
	return func(l *RouteLoader) {
		l.logger = logger
	}
}

// WithLoaderMetrics sets the gateway, router and proxy metrics.
func WithLoaderMetrics(m *observability.Metrics, rm *router.Metrics, pm *proxy.Metrics) RouteLoaderOption {
	return func(l *RouteLoader) {
		l.metrics = m
		l.routerMetrics = rm
		l.proxyMetrics = pm
	}
}

// WithLoaderTransport sets the base transport for backends.
func WithLoaderTransport(rt http.RoundTripper) RouteLoaderOption {
	return func(l *RouteLoader) {
		l.transport = rt
	}
}

// NewRouteLoader creates a loader publishing on handler.
func NewRouteLoader(handler *router.Handler, opts ...RouteLoaderOption) *RouteLoader {
	l := &RouteLoader{
		handler: handler,
		logger:  observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load builds a route table from cfg and swaps it in. On error the active
// table is left unchanged.
func (l *RouteLoader) Load(cfg *config.GatewayConfig) error {
	rt, factory, err := l.build(cfg)

	l.mu.Lock()
	l.lastErr = err
	if err == nil {
		l.factory = factory
	}
	l.mu.Unlock()

	if err != nil {
		l.recordReload(observability.ReloadFailure)
		return fmt.Errorf("%w: %w", ErrRouteTableBuild, err)
	}

	l.handler.Swap(rt)
	l.recordReload(observability.ReloadSuccess)
	return nil
}

// LastError returns the error of the most recent Load, or nil.
func (l *RouteLoader) LastError() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastErr
}

// OpenCircuits returns the backends of the active table whose circuit
// breaker is open or half-open.
func (l *RouteLoader) OpenCircuits() []string {
	l.mu.RLock()
	factory := l.factory
	l.mu.RUnlock()
	if factory == nil {
		return nil
	}
	return factory.OpenCircuits()
}

func (l *RouteLoader) build(cfg *config.GatewayConfig) (*router.Router[http.Handler], *proxy.Factory, error) {
	popts := []proxy.Option{proxy.WithLogger(l.logger), proxy.WithMetrics(l.proxyMetrics)}
	if l.transport != nil {
		popts = append(popts, proxy.WithTransport(l.transport))
	}
	factory, err := proxy.NewFactory(cfg.Spec.Backends, popts...)
	if err != nil {
		return nil, nil, err
	}

	rt, err := BuildRouter(cfg, factory,
		router.WithBuilderLogger(l.logger),
		router.WithBuilderMetrics(l.routerMetrics),
	)
	if err != nil {
		return nil, nil, err
	}
	return rt, factory, nil
}

func (l *RouteLoader) recordReload(result string) {
	if l.metrics != nil {
		l.metrics.RecordConfigReload(result)
	}
}
