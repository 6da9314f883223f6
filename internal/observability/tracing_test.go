package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecordingTracer() (*Tracer, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return &Tracer{provider: provider, tracer: provider.Tracer("test")}, recorder
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestNewTracer_Disabled(t *testing.T) {
	t.Parallel()

	tracer, err := NewTracer(context.Background(), TracerConfig{ServiceName: "avaroute"})
	require.NoError(t, err)
	assert.Nil(t, tracer.provider)
	assert.NoError(t, tracer.Shutdown(context.Background()))

	_, span := tracer.StartSpan(context.Background(), "noop")
	span.End()
}

func TestCreateSampler(t *testing.T) {
	t.Parallel()

	assert.Equal(t, sdktrace.AlwaysSample().Description(), createSampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), createSampler(0).Description())
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.5).Description(), createSampler(0.5).Description())
}

func TestExporterOptions(t *testing.T) {
	t.Parallel()

	assert.Len(t, exporterOptions(TracerConfig{OTLPEndpoint: "localhost:4317"}), 4)
	assert.Len(t, exporterOptions(TracerConfig{OTLPEndpoint: "localhost:4317", Insecure: true}), 5)
}

func TestTracingMiddleware(t *testing.T) {
	t.Parallel()

	tracer, recorder := newRecordingTracer()
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	var traceID string
	handler := TracingMiddleware(tracer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = TraceIDFromContext(r.Context())
		span := trace.SpanFromContext(r.Context())
		span.SetName("GET /users/:id")
		w.WriteHeader(http.StatusBadGateway)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/1", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /users/:id", span.Name())
	assert.Equal(t, trace.SpanKindServer, span.SpanKind())
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	status, ok := attrValue(span.Attributes(), "http.response.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusBadGateway), status.AsInt64())
	path, ok := attrValue(span.Attributes(), "url.path")
	require.True(t, ok)
	assert.Equal(t, "/users/1", path.AsString())
}

func TestInjectTraceContext(t *testing.T) {
	t.Parallel()

	header := http.Header{}
	InjectTraceContext(context.Background(), header)
	assert.Empty(t, header.Get("traceparent"))
}
