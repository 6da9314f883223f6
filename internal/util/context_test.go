package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRouteContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, RouteFromContext(ctx))
	assert.Equal(t, "users", RouteFromContext(ContextWithRoute(ctx, "users")))
}

func TestBackendContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, BackendFromContext(ctx))
	assert.Equal(t, "api", BackendFromContext(ContextWithBackend(ctx, "api")))
}

func TestPathParamsContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Nil(t, PathParamsFromContext(ctx))

	params := map[string]string{"id": "7"}
	assert.Equal(t, params, PathParamsFromContext(ContextWithPathParams(ctx, params)))
}

func TestStartTimeContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.True(t, StartTimeFromContext(ctx).IsZero())
	assert.Zero(t, ElapsedTime(ctx))

	start := time.Now().Add(-time.Second)
	ctx = ContextWithStartTime(ctx, start)
	assert.Equal(t, start, StartTimeFromContext(ctx))
	assert.GreaterOrEqual(t, ElapsedTime(ctx), time.Second)
}
