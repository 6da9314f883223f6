package routespec

import (
	"strings"
)

// Pattern is one concrete, fixed-length form of a route specification.
// Patterns are immutable.
type Pattern struct {
	spec      string
	segments  []Segment
	wildcard  bool
	variables []string
}

func newPattern(spec string, segments []Segment) *Pattern {
	p := &Pattern{spec: spec, segments: segments}
	if n := len(segments); n > 0 && segments[n-1].IsWildcard() {
		p.wildcard = true
	}
	for _, s := range segments {
		if s.Kind() == KindVariable {
			p.variables = append(p.variables, s.Name())
		}
	}
	return p
}

// Spec returns the specification the pattern was compiled from.
func (p *Pattern) Spec() string { return p.spec }

// Len returns the number of segments, including a trailing wildcard.
func (p *Pattern) Len() int { return len(p.segments) }

// At returns the i-th segment.
func (p *Pattern) At(i int) Segment { return p.segments[i] }

// Segments returns a copy of the segments.
func (p *Pattern) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	return out
}

// HasWildcard reports whether the pattern ends in a wildcard.
func (p *Pattern) HasWildcard() bool { return p.wildcard }

// FixedLen returns the number of segments before the wildcard, or Len when
// there is none.
func (p *Pattern) FixedLen() int {
	if p.wildcard {
		return len(p.segments) - 1
	}
	return len(p.segments)
}

// Variables returns the variable names in declaration order.
func (p *Pattern) Variables() []string {
	out := make([]string, len(p.variables))
	copy(out, p.variables)
	return out
}

// String renders the pattern in specification syntax.
func (p *Pattern) String() string {
	var b strings.Builder
	for _, s := range p.segments {
		b.WriteByte('/')
		b.WriteString(s.String())
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// Expand flattens t into one pattern per optional depth, shortest first.
// A tree of depth k yields k+1 patterns.
func Expand(t *Tree) []*Pattern {
	patterns := make([]*Pattern, 0, t.Depth()+1)
	var prefix []Segment
	for level := t; level != nil; level = level.Optional {
		segments := make([]Segment, 0, len(prefix)+len(level.Segments))
		segments = append(segments, prefix...)
		segments = append(segments, level.Segments...)
		patterns = append(patterns, newPattern(t.Source, segments))
		prefix = segments
	}
	return patterns
}

// Compile parses and expands spec, and checks that a wildcard only ever
// ends a pattern.
func Compile(spec string) ([]*Pattern, error) {
	tree, err := Parse(spec)
	if err != nil {
		return nil, err
	}

	patterns := Expand(tree)
	for _, p := range patterns {
		for i, s := range p.segments {
			if s.IsWildcard() && i != len(p.segments)-1 {
				return nil, newCompileError(spec, s.offset, ErrWildcardNotLast)
			}
		}
	}
	return patterns, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(spec string) []*Pattern {
	patterns, err := Compile(spec)
	if err != nil {
		panic(err)
	}
	return patterns
}
