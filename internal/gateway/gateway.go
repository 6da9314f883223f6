package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/observability"
)

// DefaultShutdownTimeout bounds Stop when the context has no deadline.
const DefaultShutdownTimeout = 30 * time.Second

// State represents the gateway state.
type State int32

const (
	// StateStopped indicates the gateway is stopped.
	StateStopped State = iota
	// StateStarting indicates the gateway is starting.
	StateStarting
	// StateRunning indicates the gateway is running.
	StateRunning
	// StateStopping indicates the gateway is stopping.
	StateStopping
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Gateway serves the route handler on the configured listeners.
type Gateway struct {
	config       *config.GatewayConfig
	logger       observability.Logger
	engine       *gin.Engine
	listeners    []*Listener
	state        atomic.Int32
	startTime    time.Time
	mu           sync.RWMutex
	routeHandler http.Handler
	middleware   []func(http.Handler) http.Handler

	shutdownTimeout time.Duration
}

// Option is a functional option for configuring the gateway.
type Option func(*Gateway)

// WithLogger sets the logger for the gateway.
func WithLogger(logger observability.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithShutdownTimeout sets the shutdown timeout.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(g *Gateway) {
		g.shutdownTimeout = timeout
	}
}

// WithRouteHandler sets the handler every request is sent to.
func WithRouteHandler(handler http.Handler) Option {
	return func(g *Gateway) {
		g.routeHandler = handler
	}
}

// WithMiddleware wraps the route handler. The first middleware is the
// outermost.
func WithMiddleware(mws ...func(http.Handler) http.Handler) Option {
	return func(g *Gateway) {
		g.middleware = append(g.middleware, mws...)
	}
}

// New creates a new Gateway instance.
func New(cfg *config.GatewayConfig, opts ...Option) (*Gateway, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	g := &Gateway{
		config:          cfg,
		logger:          observability.NopLogger(),
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.routeHandler == nil {
		g.routeHandler = http.NotFoundHandler()
	}

	g.state.Store(int32(StateStopped))
	g.engine = g.newEngine()
	return g, nil
}

// newEngine builds a gin engine with no registered routes, so every
// request reaches NoRoute and the route handler.
func (g *Gateway) newEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	h := g.routeHandler
	for i := len(g.middleware) - 1; i >= 0; i-- {
		h = g.middleware[i](h)
	}
	engine.NoRoute(gin.WrapH(h))
	return engine
}

// Start starts every listener. A listener that fails to start stops the
// ones already started.
func (g *Gateway) Start(ctx context.Context) error {
	if !g.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		return ErrGatewayNotStopped
	}

	g.logger.Info("starting gateway",
		observability.String("name", g.config.Metadata.Name),
	)

	g.listeners = make([]*Listener, 0, len(g.config.Spec.Listeners))
	for _, lc := range g.config.Spec.Listeners {
		l := NewListener(lc, g.engine, WithListenerLogger(g.logger))
		if err := l.Start(ctx); err != nil {
			g.stopListeners(ctx)
			g.state.Store(int32(StateStopped))
			return fmt.Errorf("failed to start listener %s: %w", lc.Name, err)
		}
		g.listeners = append(g.listeners, l)
	}

	g.mu.Lock()
	g.startTime = time.Now()
	g.mu.Unlock()
	g.state.Store(int32(StateRunning))

	g.logger.Info("gateway started",
		observability.String("name", g.config.Metadata.Name),
		observability.Int("listeners", len(g.listeners)),
	)
	return nil
}

// Stop stops the gateway gracefully.
func (g *Gateway) Stop(ctx context.Context) error {
	if !g.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return ErrGatewayNotRunning
	}

	g.logger.Info("stopping gateway",
		observability.String("name", g.config.Metadata.Name),
	)

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.shutdownTimeout)
		defer cancel()
	}

	g.stopListeners(ctx)
	g.state.Store(int32(StateStopped))

	g.logger.Info("gateway stopped",
		observability.String("name", g.config.Metadata.Name),
	)
	return nil
}

// State returns the current gateway state.
func (g *Gateway) State() State {
	return State(g.state.Load())
}

// IsRunning returns true if the gateway is running.
func (g *Gateway) IsRunning() bool {
	return g.State() == StateRunning
}

// Uptime returns the gateway uptime.
func (g *Gateway) Uptime() time.Duration {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.startTime.IsZero() {
		return 0
	}
	return time.Since(g.startTime)
}

// Engine returns the gin engine.
func (g *Gateway) Engine() *gin.Engine {
	return g.engine
}

// Listeners returns the started listeners.
func (g *Gateway) Listeners() []*Listener {
	return g.listeners
}

func (g *Gateway) stopListeners(ctx context.Context) {
	var wg sync.WaitGroup
	for _, listener := range g.listeners {
		wg.Add(1)
		go func(l *Listener) {
			defer wg.Done()
			if err := l.Stop(ctx); err != nil {
				g.logger.Error("failed to stop listener",
					observability.String("name", l.Name()),
					observability.Error(err),
				)
			}
		}(listener)
	}
	wg.Wait()
}
