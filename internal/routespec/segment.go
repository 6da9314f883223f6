package routespec

import (
	"fmt"
	"regexp"
)

// Kind identifies the variant of a Segment.
type Kind int

// Segment kinds.
const (
	KindLiteral Kind = iota
	KindVariable
	KindWildcard
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindVariable:
		return "variable"
	case KindWildcard:
		return "wildcard"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Segment is one position of a route specification. The zero value is an
// empty literal.
type Segment struct {
	kind       Kind
	text       string
	constraint string
	re         *regexp.Regexp
	offset     int
}

// Literal returns a segment matching text exactly.
func Literal(text string) Segment {
	return Segment{kind: KindLiteral, text: text}
}

// Variable returns an unconstrained variable segment.
func Variable(name string) Segment {
	return Segment{kind: KindVariable, text: name}
}

// ConstrainedVariable returns a variable segment whose value must match
// constraint in full. The constraint is compiled once here.
func ConstrainedVariable(name, constraint string) (Segment, error) {
	re, err := compileConstraint(constraint)
	if err != nil {
		return Segment{}, err
	}
	return Segment{kind: KindVariable, text: name, constraint: constraint, re: re}, nil
}

// Wildcard returns the terminal wildcard segment.
func Wildcard() Segment {
	return Segment{kind: KindWildcard, text: "*"}
}

func compileConstraint(constraint string) (*regexp.Regexp, error) {
	if constraint == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidConstraint)
	}
	re, err := regexp.Compile("^(?:" + constraint + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConstraint, err)
	}
	return re, nil
}

// Kind returns the segment variant.
func (s Segment) Kind() Kind { return s.kind }

// Text returns the literal text. It is empty for other kinds.
func (s Segment) Text() string {
	if s.kind != KindLiteral {
		return ""
	}
	return s.text
}

// Name returns the variable name. It is empty for other kinds.
func (s Segment) Name() string {
	if s.kind != KindVariable {
		return ""
	}
	return s.text
}

// Constraint returns the verbatim constraint pattern of a variable.
func (s Segment) Constraint() string { return s.constraint }

// IsWildcard reports whether s is the wildcard segment.
func (s Segment) IsWildcard() bool { return s.kind == KindWildcard }

// Accepts reports whether a single path segment satisfies s.
// A wildcard accepts anything.
func (s Segment) Accepts(value string) bool {
	switch s.kind {
	case KindLiteral:
		return value == s.text
	case KindVariable:
		if value == "" {
			return false
		}
		return s.re == nil || s.re.MatchString(value)
	default:
		return true
	}
}

// String renders the segment in specification syntax.
func (s Segment) String() string {
	switch s.kind {
	case KindVariable:
		if s.constraint != "" {
			return ":" + s.text + "(" + s.constraint + ")"
		}
		return ":" + s.text
	case KindWildcard:
		return "*"
	default:
		return s.text
	}
}
