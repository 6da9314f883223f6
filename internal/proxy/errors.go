package proxy

import (
	"errors"
	"fmt"
)

// Sentinel errors for proxy operations.
var (
	// ErrUnknownBackend indicates that a route names a backend that is not configured.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrInvalidTargetURL indicates that the backend URL is invalid.
	ErrInvalidTargetURL = errors.New("invalid target URL")

	// ErrNoTarget indicates that neither a backend nor a direct response is configured.
	ErrNoTarget = errors.New("no target configured")

	// ErrUpstreamTimeout indicates that the upstream request timed out.
	ErrUpstreamTimeout = errors.New("upstream request timed out")
)

// ProxyError represents a proxy-related error with details.
type ProxyError struct {
	Op      string // Operation that failed
	Route   string // Route name if applicable
	Target  string // Target URL or backend name if applicable
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ProxyError) Error() string {
	msg := "proxy error [" + e.Op + "]"
	if e.Route != "" {
		msg += " route=" + e.Route
	}
	if e.Target != "" {
		msg += " target=" + e.Target
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ProxyError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *ProxyError) Is(target error) bool {
	_, ok := target.(*ProxyError)
	return ok || errors.Is(e.Cause, target)
}

// NewProxyError creates a new ProxyError.
func NewProxyError(op, route, target, message string, cause error) *ProxyError {
	return &ProxyError{
		Op:      op,
		Route:   route,
		Target:  target,
		Message: message,
		Cause:   cause,
	}
}

// NewUnknownBackendError creates an error for a route referencing a missing backend.
func NewUnknownBackendError(route, backend string) *ProxyError {
	return &ProxyError{
		Op:      "resolve_backend",
		Route:   route,
		Target:  backend,
		Message: "backend is not configured",
		Cause:   ErrUnknownBackend,
	}
}

// NewInvalidTargetError creates an error for an invalid backend URL.
func NewInvalidTargetError(backend, target string, cause error) *ProxyError {
	return &ProxyError{
		Op:      "parse_target",
		Target:  target,
		Message: "invalid target URL for backend " + backend,
		Cause:   errors.Join(ErrInvalidTargetURL, cause),
	}
}

// IsProxyError checks if an error is a ProxyError.
func IsProxyError(err error) bool {
	var proxyErr *ProxyError
	return errors.As(err, &proxyErr)
}
