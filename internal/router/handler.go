package router

import (
	"io"
	"net/http"
	"reflect"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/util"
)

const (
	notFoundBody    = `{"error":"not found"}`
	notLoadedBody   = `{"error":"service unavailable","message":"route table not loaded"}`
	contentTypeJSON = "application/json"
)

// Handler serves HTTP requests from the currently published Router.
// Swap replaces the router atomically; in-flight requests keep the table
// they started with. Requests are dispatched on the escaped path, with each
// segment unescaped after splitting. A nil target, typed or not, is served
// as not found.
type Handler struct {
	current  atomic.Pointer[Router[http.Handler]]
	logger   observability.Logger
	metrics  *Metrics
	notFound http.Handler
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithMetrics sets the dispatch metrics.
func WithMetrics(m *Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithNotFoundHandler replaces the default JSON 404 response.
func WithNotFoundHandler(nf http.Handler) HandlerOption {
	return func(h *Handler) {
		h.notFound = nf
	}
}

// NewHandler creates a handler with no router loaded. Requests are
// answered with 503 until the first Swap.
func NewHandler(opts ...HandlerOption) *Handler {
	h := &Handler{
		logger:   observability.NopLogger(),
		notFound: http.HandlerFunc(NotFound),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Swap publishes r and returns the previously active router.
func (h *Handler) Swap(r *Router[http.Handler]) *Router[http.Handler] {
	prev := h.current.Swap(r)
	if h.metrics != nil && r != nil {
		h.metrics.setTable(r.Len(), r.PatternCount())
	}
	if r != nil {
		h.logger.Info("route table published",
			observability.Int("routes", r.Len()),
			observability.Int("patterns", r.PatternCount()),
			observability.Bool("fallback", r.HasFallback()),
		)
	}
	return prev
}

// Router returns the active router, or nil.
func (h *Handler) Router() *Router[http.Handler] {
	return h.current.Load()
}

// Ready reports whether a router has been published.
func (h *Handler) Ready() bool {
	return h.current.Load() != nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt := h.current.Load()
	if rt == nil {
		writeJSON(w, http.StatusServiceUnavailable, notLoadedBody)
		return
	}

	span := trace.SpanFromContext(r.Context())
	rawPath := r.URL.EscapedPath()
	var m *Match[http.Handler]
	segments, err := SplitEscapedPath(rawPath)
	if err == nil {
		m, err = rt.DispatchSegments(rawPath, segments)
	}
	if err != nil || isNilHandler(m.Target) {
		h.record(unmatchedRouteLabel, OutcomeNotFound)
		span.SetAttributes(attribute.String("route.outcome", OutcomeNotFound))
		h.logger.Debug("no route matched",
			observability.String("path", rawPath),
			observability.String("method", r.Method),
		)
		observability.RecordRoute(r.Context(), unmatchedRouteLabel)
		h.notFound.ServeHTTP(w, r)
		return
	}

	ctx := WithPathResult(r.Context(), m.Result)
	if m.Fallback {
		h.record(fallbackRouteLabel, OutcomeFallback)
		span.SetAttributes(attribute.String("route.outcome", OutcomeFallback))
		ctx = util.ContextWithRoute(ctx, fallbackRouteLabel)
		observability.RecordRoute(ctx, fallbackRouteLabel)
		m.Target.ServeHTTP(w, r.WithContext(ctx))
		return
	}

	name := m.Route.Name()
	h.record(name, OutcomeMatched)
	span.SetName(r.Method + " " + m.Pattern.String())
	span.SetAttributes(
		attribute.String("route.name", name),
		attribute.String("route.pattern", m.Pattern.String()),
		attribute.String("route.outcome", OutcomeMatched),
	)
	ctx = util.ContextWithRoute(ctx, name)
	ctx = util.ContextWithPathParams(ctx, m.Result.Map())
	observability.RecordRoute(ctx, name)
	m.Target.ServeHTTP(w, r.WithContext(ctx))
}

// isNilHandler also catches typed nils, such as a nil *T or a nil
// http.HandlerFunc returned by a fallback.
func isNilHandler(h http.Handler) bool {
	if h == nil {
		return true
	}
	switch v := reflect.ValueOf(h); v.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Chan, reflect.Slice, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

func (h *Handler) record(route, outcome string) {
	if h.metrics != nil {
		h.metrics.recordDispatch(route, outcome)
	}
}

// NotFound writes the default 404 response.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, notFoundBody)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
