package router

import (
	"context"
)

// Param is one captured path variable.
type Param struct {
	Name  string
	Value string
}

// PathResult holds the variables and wildcard tail captured by a match.
// It is created per request and must not be modified after it is attached
// to a request context.
type PathResult struct {
	params []Param
	tail   []string
}

// emptyResult is returned for fallback dispatches.
func emptyResult() *PathResult {
	return &PathResult{}
}

// Get returns the value captured for name.
func (r *PathResult) Get(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, p := range r.params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Value returns the value captured for name, or "".
func (r *PathResult) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

// Params returns the captured variables in declaration order.
func (r *PathResult) Params() []Param {
	if r == nil {
		return nil
	}
	out := make([]Param, len(r.params))
	copy(out, r.params)
	return out
}

// Map returns the captured variables keyed by name.
func (r *PathResult) Map() map[string]string {
	if r == nil {
		return map[string]string{}
	}
	m := make(map[string]string, len(r.params))
	for _, p := range r.params {
		m[p.Name] = p.Value
	}
	return m
}

// WildcardTail returns the path segments consumed by a wildcard. It is
// empty, never nil, when nothing was consumed.
func (r *PathResult) WildcardTail() []string {
	if r == nil {
		return []string{}
	}
	out := make([]string, len(r.tail))
	copy(out, r.tail)
	return out
}

// Len returns the number of captured variables.
func (r *PathResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.params)
}

type pathResultKey struct{}

// WithPathResult attaches a path result to the context.
func WithPathResult(ctx context.Context, r *PathResult) context.Context {
	return context.WithValue(ctx, pathResultKey{}, r)
}

// PathResultFromContext extracts the path result from the context.
func PathResultFromContext(ctx context.Context) (*PathResult, bool) {
	r, ok := ctx.Value(pathResultKey{}).(*PathResult)
	return r, ok
}
