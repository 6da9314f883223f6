// Package router dispatches request paths to targets registered with route
// specifications.
//
// Routes are compiled with package routespec when they are registered and
// stored in registration order. Dispatch splits the path on "/" and tries
// every compiled pattern of every route in that order; the first match wins.
//
// # Precedence
//
// Registration order is precedence order. When two specifications both
// match a path, the one registered first is chosen, even if the later one
// is more specific:
//
//	b := router.NewBuilder[string]()
//	b.Register("/users/*", "any")
//	b.Register("/users/:id", "one") // never reached: /users/* matches first
//
// Register specific routes before general ones.
//
// # Lifecycle
//
// A Builder collects routes on a single goroutine and Build returns an
// immutable Router. After Build the builder is sealed. A Router is safe for
// concurrent use and takes no locks while dispatching. Handler publishes
// rebuilt routers with an atomic swap for hot reload.
//
// # Usage
//
//	b := router.NewBuilder[http.Handler]()
//	if _, err := b.Register("/users/:id([0-9]+)", usersHandler); err != nil {
//	    log.Fatal(err)
//	}
//	r := b.Build()
//
//	m, err := r.Dispatch("/users/42")
//	if errors.Is(err, util.ErrNotFound) {
//	    // no route and no fallback
//	}
//	id, _ := m.Result.Get("id")
package router
