// Package health provides health, readiness and liveness endpoints.
//
// Readiness aggregates named checks. The gateway registers a "routes"
// check that stays unhealthy until the first route table is published,
// so load balancers do not send traffic to an instance that would answer
// every request with 503.
//
//	checker := health.NewChecker(version)
//	checker.RegisterCheck("routes", health.RouteTableCheck(handler))
//	checker.RegisterRoutes(engine)
package health
