package router

import (
	"net/url"
	"strings"

	"github.com/vyrodovalexey/avaroute/internal/routespec"
)

// MatchPattern matches path segments against a compiled pattern.
//
// Without a wildcard the lengths must be equal. With a wildcard the path
// needs at least the fixed prefix, and every segment after it becomes the
// wildcard tail regardless of content.
func MatchPattern(p *routespec.Pattern, path []string) (*PathResult, bool) {
	fixed := p.FixedLen()
	if p.HasWildcard() {
		if len(path) < fixed {
			return nil, false
		}
	} else if len(path) != fixed {
		return nil, false
	}

	var params []Param
	for i := 0; i < fixed; i++ {
		seg := p.At(i)
		if !seg.Accepts(path[i]) {
			return nil, false
		}
		if seg.Kind() == routespec.KindVariable {
			params = append(params, Param{Name: seg.Name(), Value: path[i]})
		}
	}

	result := &PathResult{params: params}
	if p.HasWildcard() {
		result.tail = append([]string{}, path[fixed:]...)
	}
	return result, true
}

// SplitPath normalises a raw path into segments. One leading and one
// trailing slash are dropped; an empty path has no segments.
func SplitPath(rawPath string) []string {
	p := strings.TrimPrefix(rawPath, "/")
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// SplitEscapedPath splits an escaped request path and unescapes each
// segment, so an encoded slash stays inside its segment.
func SplitEscapedPath(escapedPath string) ([]string, error) {
	segments := SplitPath(escapedPath)
	for i, seg := range segments {
		v, err := url.PathUnescape(seg)
		if err != nil {
			return nil, err
		}
		segments[i] = v
	}
	return segments, nil
}
