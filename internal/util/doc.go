// Package util provides shared error types, context helpers and input
// validation for avaroute.
//
// # Error Conventions
//
// This project follows a standardized error pattern across all packages:
//
//   - Sentinel errors (errors.New) for well-known, stable conditions
//     that callers check with errors.Is(). Example: ErrNotFound.
//   - Structured error types for context-rich errors that carry
//     additional fields (e.g., ConfigError, RouteNotFoundError). Each type
//     implements Error(), Unwrap() (if wrapping), and Is().
//   - fmt.Errorf with %w for ad-hoc wrapping that adds context to an
//     existing error without introducing a new type.
//
// # Context Helpers
//
// Request-scoped values set by the router and middleware:
//
//	ctx = util.ContextWithRoute(ctx, "users")
//	route := util.RouteFromContext(ctx)
package util
