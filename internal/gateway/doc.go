// Package gateway runs the HTTP front end of avaroute.
//
// A Gateway owns a gin engine and one Listener per configured listener.
// Every request falls through to the engine's NoRoute handler, which is
// the middleware chain wrapped around the router.Handler. Route matching
// therefore happens entirely in the router package; gin contributes the
// engine, its recovery handler and the handler plumbing.
//
// RouteLoader turns a validated GatewayConfig into a route table and
// publishes it on the router.Handler. It is used for the initial load and
// as the config.Watcher callback, so a reload either swaps in a complete
// new table or leaves the previous one in place.
//
// Lifecycle:
//
//	gw, _ := gateway.New(cfg, gateway.WithRouteHandler(handler))
//	_ = gw.Start(ctx)
//	defer gw.Stop(context.Background())
package gateway
