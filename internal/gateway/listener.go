package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/observability"
)

// Default listener timeouts.
const (
	defaultReadHeaderTimeout = 10 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
)

// Listener represents an HTTP listener.
type Listener struct {
	config  config.Listener
	server  *http.Server
	handler http.Handler
	logger  observability.Logger
	running atomic.Bool
	addr    net.Addr
	mu      sync.RWMutex
	done    chan struct{}
}

// ListenerOption is a functional option for configuring a listener.
type ListenerOption func(*Listener)

// WithListenerLogger sets the logger for the listener.
func WithListenerLogger(logger observability.Logger) ListenerOption {
	return func(l *Listener) {
		l.logger = logger
	}
}

// NewListener creates a new listener.
func NewListener(cfg config.Listener, handler http.Handler, opts ...ListenerOption) *Listener {
	l := &Listener{
		config:  cfg,
		handler: handler,
		logger:  observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name returns the listener name.
func (l *Listener) Name() string {
	return l.config.Name
}

// Address returns the configured listen address.
func (l *Listener) Address() string {
	bind := l.config.Bind
	if bind == "" {
		bind = "0.0.0.0"
	}
	return net.JoinHostPort(bind, fmt.Sprintf("%d", l.config.Port))
}

// Addr returns the bound address, or nil before Start. It differs from
// Address when the configured port is 0.
func (l *Listener) Addr() net.Addr {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.addr
}

// Start binds the address and serves in the background.
func (l *Listener) Start(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: %s", ErrListenerRunning, l.config.Name)
	}

	addr := l.Address()
	l.server = newServer(addr, l.handler, l.config.Timeouts)

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		l.running.Store(false)
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	l.mu.Lock()
	l.addr = ln.Addr()
	l.done = make(chan struct{})
	l.mu.Unlock()

	l.logger.Info("listener started",
		observability.String("name", l.config.Name),
		observability.String("address", ln.Addr().String()),
	)

	go l.serve(ln)
	return nil
}

func (l *Listener) serve(ln net.Listener) {
	defer close(l.done)

	if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.logger.Error("listener error",
			observability.String("name", l.config.Name),
			observability.Error(err),
		)
	}
	l.running.Store(false)
}

// Stop shuts the server down, waiting for in-flight requests until ctx
// expires.
func (l *Listener) Stop(ctx context.Context) error {
	if !l.running.Load() {
		return nil
	}

	l.logger.Info("stopping listener", observability.String("name", l.config.Name))

	if err := l.server.Shutdown(ctx); err != nil {
		if closeErr := l.server.Close(); closeErr != nil {
			return fmt.Errorf("failed to close listener: %w", closeErr)
		}
		return fmt.Errorf("failed to shutdown listener gracefully: %w", err)
	}

	l.mu.RLock()
	done := l.done
	l.mu.RUnlock()
	<-done

	l.logger.Info("listener stopped", observability.String("name", l.config.Name))
	return nil
}

// IsRunning returns true if the listener is running.
func (l *Listener) IsRunning() bool {
	return l.running.Load()
}

// newServer builds an http.Server, falling back to the default timeouts
// for values that are not configured.
func newServer(addr string, handler http.Handler, t *config.ListenerTimeouts) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       config.DefaultReadTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		WriteTimeout:      config.DefaultWriteTimeout,
		IdleTimeout:       config.DefaultIdleTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}
	if t == nil {
		return srv
	}
	if t.ReadTimeout > 0 {
		srv.ReadTimeout = t.ReadTimeout.Duration()
	}
	if t.ReadHeaderTimeout > 0 {
		srv.ReadHeaderTimeout = t.ReadHeaderTimeout.Duration()
	}
	if t.WriteTimeout > 0 {
		srv.WriteTimeout = t.WriteTimeout.Duration()
	}
	if t.IdleTimeout > 0 {
		srv.IdleTimeout = t.IdleTimeout.Duration()
	}
	return srv
}
