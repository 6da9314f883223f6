package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/health"
	"github.com/vyrodovalexey/avaroute/internal/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const appConfigYAML = `
apiVersion: avaroute.io/v1
kind: Gateway
metadata:
  name: test
spec:
  listeners:
    - name: http
      port: 18080
  routes:
    - name: user
      path: /users/:id([0-9]+)
      directResponse:
        status: 200
        body: user
    - name: files
      path: /files/[*]
      directResponse:
        status: 200
        body: files
  observability:
    logging:
      accessLog: false
`

func loadTestConfig(t *testing.T, yaml string) *config.GatewayConfig {
	t.Helper()
	cfg, err := config.LoadConfigFromReader(strings.NewReader(yaml))
	require.NoError(t, err)
	require.NoError(t, config.ValidateConfig(cfg))
	return cfg
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestParseFlags(t *testing.T) {
	t.Setenv("AVAROUTE_CONFIG_PATH", "/etc/avaroute/env.yaml")
	t.Setenv("AVAROUTE_LOG_LEVEL", "debug")
	t.Setenv("AVAROUTE_CHECK", "yes")

	f := parseFlags(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	assert.Equal(t, "/etc/avaroute/env.yaml", f.configPath)
	assert.Equal(t, "debug", f.logLevel)
	assert.Empty(t, f.logFormat)
	assert.True(t, f.check)
	assert.False(t, f.showVersion)

	f = parseFlags(flag.NewFlagSet("test", flag.ContinueOnError),
		[]string{"-config", "other.yaml", "-log-format", "console", "-check=false", "-version"})
	assert.Equal(t, "other.yaml", f.configPath)
	assert.Equal(t, "console", f.logFormat)
	assert.False(t, f.check)
	assert.True(t, f.showVersion)
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"true", false, true},
		{"ON", false, true},
		{"0", true, false},
		{"no", true, false},
		{"maybe", true, true},
	}
	for _, tt := range tests {
		t.Setenv("AVAROUTE_TEST_BOOL", tt.value)
		assert.Equal(t, tt.want, getEnvBool("AVAROUTE_TEST_BOOL", tt.def), tt.value)
	}
}

func TestRunCheck(t *testing.T) {
	t.Parallel()

	cfg := loadTestConfig(t, appConfigYAML)

	var out, errOut bytes.Buffer
	require.NoError(t, runCheck(cfg, &out, &errOut))
	assert.Empty(t, errOut.String())

	table := out.String()
	assert.Contains(t, table, "ROUTE")
	assert.Contains(t, table, "/users/:id([0-9]+)")
	assert.Contains(t, table, "/files/*")
	assert.Contains(t, table, "2 routes, 3 patterns")
}

func TestRunCheck_CompileErrors(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Spec.Routes = []config.Route{
		{Name: "ok", Path: "/ok"},
		{Name: "unclosed", Path: "/a/[b"},
		{Name: "siblings", Path: "/a/[b][c]"},
	}

	var out, errOut bytes.Buffer
	err := runCheck(cfg, &out, &errOut)
	require.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, err.Error(), "2 of 3 routes")
	assert.Contains(t, errOut.String(), "route 1:")
	assert.Contains(t, errOut.String(), "route 2:")
	assert.Contains(t, out.String(), "1 routes, 1 patterns")
}

func TestTracerConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	tc := tracerConfig(cfg)
	assert.False(t, tc.Enabled)
	assert.Equal(t, config.DefaultServiceName, tc.ServiceName)
	assert.Equal(t, version, tc.ServiceVersion)

	cfg.Spec.Observability.Tracing = &config.TracingConfig{
		Enabled:      true,
		SamplingRate: 0.5,
		OTLPEndpoint: "collector:4317",
		Insecure:     true,
		ServiceName:  "edge",
	}
	tc = tracerConfig(cfg)
	assert.True(t, tc.Enabled)
	assert.Equal(t, 0.5, tc.SamplingRate)
	assert.Equal(t, "collector:4317", tc.OTLPEndpoint)
	assert.True(t, tc.Insecure)
	assert.Equal(t, "edge", tc.ServiceName)
}

func TestBuildMiddlewareChain(t *testing.T) {
	t.Parallel()

	cfg := loadTestConfig(t, appConfigYAML)
	tracer, err := observability.NewTracer(context.Background(), observability.TracerConfig{})
	require.NoError(t, err)
	metrics := observability.NewMetrics("avaroute")

	chain, rl := buildMiddlewareChain(cfg, observability.NopLogger(), metrics, nil, tracer)
	assert.Len(t, chain, 4)
	assert.Nil(t, rl)

	cfg.Spec.Observability.Logging = nil
	cfg.Spec.RateLimit = &config.RateLimitConfig{Enabled: true, RequestsPerSecond: 10, Burst: 1}
	chain, rl = buildMiddlewareChain(cfg, observability.NopLogger(), metrics, nil, tracer)
	assert.Len(t, chain, 6)
	require.NotNil(t, rl)
	rl.Stop()
}

func TestInitApplication(t *testing.T) {
	t.Parallel()

	cfg := loadTestConfig(t, appConfigYAML)
	app := initApplication(cfg, observability.NopLogger())

	engine := app.gateway.Engine()

	status, body := get(t, engine, "/users/42")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "user", body)

	status, body = get(t, engine, "/files/a/b")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "files", body)

	status, _ = get(t, engine, "/users/abc")
	assert.Equal(t, http.StatusNotFound, status)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/1", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	assert.Equal(t, health.StatusHealthy, app.healthChecker.Readiness().Status)

	shutdown(app, nil, observability.NopLogger())
	assert.Equal(t, health.StatusDraining, app.healthChecker.Readiness().Status)
}

func TestMetricsEngine(t *testing.T) {
	t.Parallel()

	cfg := loadTestConfig(t, appConfigYAML)
	app := initApplication(cfg, observability.NopLogger())
	engine := newMetricsEngine("/metrics", app.metrics, app.healthChecker)

	_, _ = get(t, app.gateway.Engine(), "/users/7")

	status, body := get(t, engine, "/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `avaroute_requests_total{method="GET",route="user",status="200"} 1`)
	assert.Contains(t, body, `avaroute_router_dispatch_total{outcome="matched",route="user"} 1`)
	assert.Contains(t, body, `avaroute_config_reloads_total{result="success"} 1`)
	assert.Contains(t, body, "avaroute_router_routes 2")
	assert.Contains(t, body, "avaroute_router_patterns 3")

	status, _ = get(t, engine, "/ready")
	assert.Equal(t, http.StatusOK, status)
	status, _ = get(t, engine, "/live")
	assert.Equal(t, http.StatusOK, status)
}

func TestStartConfigWatcher_Reload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "avaroute.yaml")
	require.NoError(t, os.WriteFile(path, []byte(appConfigYAML), 0o600))

	cfg := loadTestConfig(t, appConfigYAML)
	app := initApplication(cfg, observability.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher := startConfigWatcher(ctx, app, path, observability.NopLogger())
	require.NotNil(t, watcher)
	defer func() { _ = watcher.Stop() }()

	updated := strings.Replace(appConfigYAML, "body: user", "body: member", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	assert.Eventually(t, func() bool {
		_, body := get(t, app.gateway.Engine(), "/users/42")
		return body == "member"
	}, 5*time.Second, 50*time.Millisecond)

	// An invalid file keeps the current table.
	broken := strings.Replace(updated, "/users/:id([0-9]+)", "/users/[:id", 1)
	require.NoError(t, os.WriteFile(path, []byte(broken), 0o600))
	time.Sleep(500 * time.Millisecond)

	_, body := get(t, app.gateway.Engine(), "/users/42")
	assert.Equal(t, "member", body)
}
