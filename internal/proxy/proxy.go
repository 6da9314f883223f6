package proxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/router"
	"github.com/vyrodovalexey/avaroute/internal/util"
)

// ParamHeaderPrefix prefixes headers carrying captured path variables.
const ParamHeaderPrefix = "X-Route-Param-"

const (
	headerContentType     = "Content-Type"
	headerXForwardedHost  = "X-Forwarded-Host"
	headerXForwardedProto = "X-Forwarded-Proto"
	contentTypeJSON       = "application/json"

	bodyBadGateway     = `{"error":"bad gateway","message":"failed to proxy request"}`
	bodyGatewayTimeout = `{"error":"gateway timeout","message":"upstream request timed out"}`
	bodyCircuitOpen    = `{"error":"service unavailable","message":"circuit breaker is open"}`
)

// hopHeaders are headers that should not be forwarded.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// backendTarget is a resolved backend with its transport chain.
type backendTarget struct {
	name      string
	url       *url.URL
	transport http.RoundTripper
	breaker   *breakerTransport
}

// Factory creates route targets for a set of backends. Backends, and with
// them circuit breaker state, are shared by every route that uses them.
type Factory struct {
	backends  map[string]*backendTarget
	logger    observability.Logger
	metrics   *Metrics
	transport http.RoundTripper
}

// Option is a functional option for configuring the factory.
type Option func(*Factory)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithMetrics sets the proxy metrics.
func WithMetrics(m *Metrics) Option {
	return func(f *Factory) {
		f.metrics = m
	}
}

// WithTransport sets the base transport used for every backend.
func WithTransport(transport http.RoundTripper) Option {
	return func(f *Factory) {
		f.transport = transport
	}
}

// NewFactory resolves backends and builds their transports.
func NewFactory(backends []config.Backend, opts ...Option) (*Factory, error) {
	f := &Factory{
		backends: make(map[string]*backendTarget, len(backends)),
		logger:   observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.transport == nil {
		f.transport = http.DefaultTransport.(*http.Transport).Clone()
	}

	for i := range backends {
		b := &backends[i]
		if err := util.ValidateURL(b.URL); err != nil {
			return nil, NewInvalidTargetError(b.Name, b.URL, err)
		}
		target, err := url.Parse(b.URL)
		if err != nil {
			return nil, NewInvalidTargetError(b.Name, b.URL, err)
		}

		bt := &backendTarget{name: b.Name, url: target}
		var rt http.RoundTripper = &timedTransport{backend: b.Name, next: f.transport, metrics: f.metrics}
		if b.CircuitBreaker != nil && b.CircuitBreaker.Enabled {
			bt.breaker = newBreakerTransport(b.Name, b.CircuitBreaker, rt, f.logger, f.metrics)
			rt = bt.breaker
		}
		bt.transport = rt

		f.metrics.initBackend(b.Name)
		f.backends[b.Name] = bt
	}
	return f, nil
}

// RouteHandler returns the handler serving route.
func (f *Factory) RouteHandler(route *config.Route) (http.Handler, error) {
	switch {
	case route.DirectResponse != nil:
		return NewDirectResponse(route.DirectResponse), nil
	case route.Backend != "":
		bt, ok := f.backends[route.Backend]
		if !ok {
			return nil, NewUnknownBackendError(route.Name, route.Backend)
		}
		return f.newReverseProxy(route.Name, bt, route.EffectiveTimeout(), route.StripPrefix, route.ForwardParams), nil
	default:
		return nil, NewProxyError("build_route", route.Name, "", "route has no target", ErrNoTarget)
	}
}

// FallbackHandler returns the handler serving unmatched paths.
func (f *Factory) FallbackHandler(fb *config.Fallback) (http.Handler, error) {
	switch {
	case fb.DirectResponse != nil:
		return NewDirectResponse(fb.DirectResponse), nil
	case fb.Backend != "":
		bt, ok := f.backends[fb.Backend]
		if !ok {
			return nil, NewUnknownBackendError("fallback", fb.Backend)
		}
		return f.newReverseProxy("fallback", bt, config.DefaultRouteTimeout, false, false), nil
	default:
		return nil, NewProxyError("build_route", "fallback", "", "fallback has no target", ErrNoTarget)
	}
}

// BreakerState returns the circuit breaker state of a backend. ok is false
// when the backend is unknown or has no breaker.
func (f *Factory) BreakerState(backend string) (state gobreaker.State, ok bool) {
	bt, found := f.backends[backend]
	if !found || bt.breaker == nil {
		return gobreaker.StateClosed, false
	}
	return bt.breaker.State(), true
}

// OpenCircuits returns the sorted names of backends whose circuit breaker
// is not closed.
func (f *Factory) OpenCircuits() []string {
	var open []string
	for name := range f.backends {
		if state, ok := f.BreakerState(name); ok && state != gobreaker.StateClosed {
			open = append(open, name)
		}
	}
	sort.Strings(open)
	return open
}

// ReverseProxy forwards requests for one route to its backend.
type ReverseProxy struct {
	route         string
	backend       *backendTarget
	timeout       time.Duration
	stripPrefix   bool
	forwardParams bool
	logger        observability.Logger
	metrics       *Metrics
	proxy         *httputil.ReverseProxy
}

func (f *Factory) newReverseProxy(
	route string,
	bt *backendTarget,
	timeout time.Duration,
	stripPrefix, forwardParams bool,
) *ReverseProxy {
	p := &ReverseProxy{
		route:         route,
		backend:       bt,
		timeout:       timeout,
		stripPrefix:   stripPrefix,
		forwardParams: forwardParams,
		logger:        f.logger,
		metrics:       f.metrics,
	}
	p.proxy = &httputil.ReverseProxy{
		Director:      p.director,
		Transport:     bt.transport,
		FlushInterval: -1,
		ErrorHandler:  p.handleError,
	}
	return p
}

// ServeHTTP implements http.Handler.
func (p *ReverseProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := util.ContextWithBackend(r.Context(), p.backend.name)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	p.proxy.ServeHTTP(w, r.WithContext(ctx))
}

// director rewrites the outgoing request. X-Forwarded-For is appended by
// httputil.ReverseProxy itself.
func (p *ReverseProxy) director(req *http.Request) {
	target := p.backend.url
	result, _ := router.PathResultFromContext(req.Context())

	upstreamPath, upstreamRawPath := req.URL.Path, req.URL.EscapedPath()
	if p.stripPrefix {
		tail := result.WildcardTail()
		escaped := make([]string, len(tail))
		for i, seg := range tail {
			escaped[i] = url.PathEscape(seg)
		}
		upstreamPath = "/" + strings.Join(tail, "/")
		upstreamRawPath = "/" + strings.Join(escaped, "/")
	}

	// RawPath keeps encoded slashes inside a segment from becoming path
	// separators upstream.
	req.URL.Scheme = target.Scheme
	req.URL.Host = target.Host
	req.URL.Path = singleJoiningSlash(target.Path, upstreamPath)
	req.URL.RawPath = singleJoiningSlash(target.EscapedPath(), upstreamRawPath)
	switch {
	case target.RawQuery == "":
	case req.URL.RawQuery == "":
		req.URL.RawQuery = target.RawQuery
	default:
		req.URL.RawQuery = target.RawQuery + "&" + req.URL.RawQuery
	}

	for _, h := range hopHeaders {
		req.Header.Del(h)
	}

	// Clients must not be able to inject parameter headers.
	for name := range req.Header {
		if strings.HasPrefix(name, ParamHeaderPrefix) {
			req.Header.Del(name)
		}
	}
	if p.forwardParams && result.Len() > 0 {
		for _, param := range result.Params() {
			req.Header.Set(ParamHeaderPrefix+param.Name, param.Value)
		}
	}

	if req.TLS != nil {
		req.Header.Set(headerXForwardedProto, "https")
	} else {
		req.Header.Set(headerXForwardedProto, "http")
	}
	req.Header.Set(headerXForwardedHost, req.Host)
	observability.InjectTraceContext(req.Context(), req.Header)

	if _, ok := req.Header["User-Agent"]; !ok {
		req.Header.Set("User-Agent", "")
	}
	req.Host = target.Host
}

func (p *ReverseProxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, body, errorType := http.StatusBadGateway, bodyBadGateway, errorTypeBadGateway
	switch {
	case errors.Is(err, util.ErrCircuitOpen):
		status, body, errorType = http.StatusServiceUnavailable, bodyCircuitOpen, errorTypeCircuitOpen
	case errors.Is(err, context.DeadlineExceeded):
		status, body, errorType = http.StatusGatewayTimeout, bodyGatewayTimeout, errorTypeTimeout
		err = errors.Join(ErrUpstreamTimeout, err)
	case errors.Is(err, context.Canceled):
		errorType = errorTypeCanceled
	}
	p.metrics.recordError(p.backend.name, errorType)

	perr := NewProxyError("forward", p.route, p.backend.url.String(), "request failed", err)
	if errorType == errorTypeCanceled {
		p.logger.Debug("client canceled proxied request",
			observability.String("path", r.URL.Path),
			observability.Error(perr),
		)
	} else {
		p.logger.Error("proxy error",
			observability.String("path", r.URL.Path),
			observability.String("method", r.Method),
			observability.String("backend", p.backend.name),
			observability.Error(perr),
		)
	}

	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func singleJoiningSlash(a, b string) string {
	aslash := strings.HasSuffix(a, "/")
	bslash := strings.HasPrefix(b, "/")
	switch {
	case aslash && bslash:
		return a + b[1:]
	case !aslash && !bslash:
		return a + "/" + b
	}
	return a + b
}

// DirectResponse serves a static response without contacting a backend.
type DirectResponse struct {
	status  int
	body    string
	headers map[string]string
}

// NewDirectResponse creates a static response handler.
func NewDirectResponse(cfg *config.DirectResponseConfig) *DirectResponse {
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	return &DirectResponse{
		status:  cfg.EffectiveStatus(),
		body:    cfg.Body,
		headers: headers,
	}
}

// ServeHTTP implements http.Handler.
func (d *DirectResponse) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for key, value := range d.headers {
		w.Header().Set(key, value)
	}
	if d.body != "" && w.Header().Get(headerContentType) == "" {
		w.Header().Set(headerContentType, "text/plain; charset=utf-8")
	}
	w.WriteHeader(d.status)
	if r.Method != http.MethodHead && d.body != "" {
		_, _ = io.WriteString(w, d.body)
	}
}
