package health

import (
	"fmt"
	"strings"
)

// RouteTable is implemented by the route handler.
type RouteTable interface {
	// Ready reports whether a route table has been published.
	Ready() bool
}

// RouteTableCheck reports unhealthy until rt has a published route table.
func RouteTableCheck(rt RouteTable) CheckFunc {
	return func() Check {
		if !rt.Ready() {
			return Check{Status: StatusUnhealthy, Message: "route table not loaded"}
		}
		return Check{Status: StatusHealthy}
	}
}

// ReloadCheck reports degraded while the most recent configuration reload
// has failed. The gateway keeps serving the previous table in that state.
func ReloadCheck(lastErr func() error) CheckFunc {
	return func() Check {
		if err := lastErr(); err != nil {
			return Check{Status: StatusDegraded, Message: fmt.Sprintf("last reload failed: %v", err)}
		}
		return Check{Status: StatusHealthy}
	}
}

// CircuitCheck reports degraded while any backend circuit breaker returned
// by open is not closed. Requests to those backends fail fast with 503.
func CircuitCheck(open func() []string) CheckFunc {
	return func() Check {
		if names := open(); len(names) > 0 {
			return Check{Status: StatusDegraded, Message: "circuit open: " + strings.Join(names, ", ")}
		}
		return Check{Status: StatusHealthy}
	}
}
