package observability

import (
	"context"
)

// routeTracker carries the matched route name back up to middleware that
// wrap the router. Context values set below a handler are invisible to
// its callers, so the router writes into this holder instead.
type routeTracker struct {
	route string
}

type routeTrackerKey struct{}

func withRouteTracker(ctx context.Context, t *routeTracker) context.Context {
	return context.WithValue(ctx, routeTrackerKey{}, t)
}

// TrackRoute returns a context that collects the route name reported with
// RecordRoute, and a function returning that name.
func TrackRoute(ctx context.Context) (context.Context, func() string) {
	if t, ok := ctx.Value(routeTrackerKey{}).(*routeTracker); ok {
		return ctx, func() string { return t.route }
	}
	t := &routeTracker{}
	return withRouteTracker(ctx, t), func() string { return t.route }
}

// RecordRoute reports the matched route name to enclosing middleware.
func RecordRoute(ctx context.Context, route string) {
	if t, ok := ctx.Value(routeTrackerKey{}).(*routeTracker); ok {
		t.route = route
	}
}
