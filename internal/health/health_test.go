package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTable struct {
	ready atomic.Bool
}

func (f *fakeTable) Ready() bool { return f.ready.Load() }

func TestChecker_Health(t *testing.T) {
	t.Parallel()

	c := NewChecker("1.2.3")
	resp := c.Health()
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.NotEmpty(t, resp.Uptime)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestChecker_Readiness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		checks map[string]CheckFunc
		want   Status
	}{
		{name: "no checks", checks: nil, want: StatusHealthy},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"a": func() Check { return Check{Status: StatusHealthy} },
			},
			want: StatusHealthy,
		},
		{
			name: "degraded",
			checks: map[string]CheckFunc{
				"a": func() Check { return Check{Status: StatusHealthy} },
				"b": func() Check { return Check{Status: StatusDegraded} },
			},
			want: StatusDegraded,
		},
		{
			name: "unhealthy wins over degraded",
			checks: map[string]CheckFunc{
				"a": func() Check { return Check{Status: StatusUnhealthy} },
				"b": func() Check { return Check{Status: StatusDegraded} },
			},
			want: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewChecker("test")
			for name, fn := range tt.checks {
				c.RegisterCheck(name, fn)
			}
			resp := c.Readiness()
			assert.Equal(t, tt.want, resp.Status)
			assert.Len(t, resp.Checks, len(tt.checks))
		})
	}
}

func TestChecker_UnregisterCheck(t *testing.T) {
	t.Parallel()

	c := NewChecker("test")
	c.RegisterCheck("bad", func() Check { return Check{Status: StatusUnhealthy} })
	assert.Equal(t, StatusUnhealthy, c.Readiness().Status)

	c.UnregisterCheck("bad")
	assert.Equal(t, StatusHealthy, c.Readiness().Status)
}

func TestReadinessHandler_RouteTable(t *testing.T) {
	t.Parallel()

	table := &fakeTable{}
	c := NewChecker("test")
	c.RegisterCheck("routes", RouteTableCheck(table))

	rec := httptest.NewRecorder()
	c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Equal(t, "route table not loaded", resp.Checks["routes"].Message)

	table.ready.Store(true)
	rec = httptest.NewRecorder()
	c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ContentTypeJSON, rec.Header().Get(HeaderContentType))
}

func TestReadinessHandler_Draining(t *testing.T) {
	t.Parallel()

	c := NewChecker("test")
	c.SetDraining(true)

	rec := httptest.NewRecorder()
	c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"draining"`)

	c.SetDraining(false)
	assert.Equal(t, StatusHealthy, c.Readiness().Status)
}

func TestReloadCheck(t *testing.T) {
	t.Parallel()

	var lastErr error
	check := ReloadCheck(func() error { return lastErr })
	assert.Equal(t, StatusHealthy, check().Status)

	lastErr = errors.New("spec.routes[0].path: invalid")
	got := check()
	assert.Equal(t, StatusDegraded, got.Status)
	assert.Contains(t, got.Message, "spec.routes[0].path")
}

func TestCircuitCheck(t *testing.T) {
	t.Parallel()

	var open []string
	check := CircuitCheck(func() []string { return open })
	assert.Equal(t, StatusHealthy, check().Status)

	open = []string{"orders", "users"}
	got := check()
	assert.Equal(t, StatusDegraded, got.Status)
	assert.Equal(t, "circuit open: orders, users", got.Message)
}

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewChecker("v1").RegisterRoutes(engine)

	tests := []struct {
		path string
		want string
	}{
		{path: "/health", want: `"version":"v1"`},
		{path: "/ready", want: `"status":"healthy"`},
		{path: "/live", want: `{"status":"ok"}`},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, tt.path)
		assert.Contains(t, rec.Body.String(), tt.want, tt.path)
	}
}
