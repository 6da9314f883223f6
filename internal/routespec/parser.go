package routespec

import (
	"fmt"
	"regexp"
	"strings"
)

var variableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Tree is a parsed route specification: a run of segments followed by at
// most one optional group, which is itself a Tree.
type Tree struct {
	// Source is the text this level was parsed from. For the root it is
	// the full specification.
	Source   string
	Segments []Segment
	Optional *Tree
}

// Depth returns the number of nested optional groups below t.
func (t *Tree) Depth() int {
	n := 0
	for o := t.Optional; o != nil; o = o.Optional {
		n++
	}
	return n
}

type parser struct {
	spec  string
	names map[string]struct{}
}

// Parse parses a route specification into a Tree.
func Parse(spec string) (*Tree, error) {
	body, skip := trimSlashes(spec)

	p := &parser{spec: spec, names: make(map[string]struct{})}
	tree, err := p.parseLevel(body, skip)
	if err != nil {
		return nil, err
	}
	tree.Source = spec
	return tree, nil
}

// trimSlashes strips one leading and one trailing slash and returns the
// number of bytes removed from the front.
func trimSlashes(s string) (string, int) {
	skip := 0
	if strings.HasPrefix(s, "/") {
		s = s[1:]
		skip = 1
	}
	return strings.TrimSuffix(s, "/"), skip
}

func (p *parser) parseLevel(s string, base int) (*Tree, error) {
	tree := &Tree{Source: s}
	if s == "" {
		return tree, nil
	}

	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			end := matchParen(s, i)
			if end < 0 {
				return nil, p.fail(base+i, ErrUnbalancedParens)
			}
			i = end
		case ')':
			return nil, p.fail(base+i, ErrUnbalancedParens)
		case ']':
			return nil, p.fail(base+i, ErrUnbalancedBrackets)
		case '/':
			if err := p.appendToken(tree, s[start:i], base+start); err != nil {
				return nil, err
			}
			start = i + 1
		case '[':
			if err := p.parseOptional(tree, s, start, i, base); err != nil {
				return nil, err
			}
			return tree, nil
		}
	}

	if err := p.appendToken(tree, s[start:], base+start); err != nil {
		return nil, err
	}
	return tree, nil
}

// parseOptional handles the group opening at s[open]. The group must be the
// last thing on its level; text before it on the same segment is only
// allowed when the group starts with a slash, as in "a[/b]".
func (p *parser) parseOptional(tree *Tree, s string, start, open, base int) error {
	end, err := matchBracket(s, open)
	if err != nil {
		return p.fail(base+open, err)
	}

	inner := s[open+1 : end]
	if prefix := s[start:open]; prefix != "" {
		if !strings.HasPrefix(inner, "/") {
			return p.fail(base+open, ErrMisplacedOptional)
		}
		if err := p.appendToken(tree, prefix, base+start); err != nil {
			return err
		}
	}

	if rest := s[end+1:]; rest != "" {
		if strings.HasPrefix(strings.TrimPrefix(rest, "/"), "[") {
			return p.fail(base+end+1, ErrSiblingOptional)
		}
		return p.fail(base+end+1, ErrMisplacedOptional)
	}

	body, skip := trimSlashes(inner)
	if body == "" {
		return p.fail(base+open, ErrEmptyOptional)
	}

	opt, err := p.parseLevel(body, base+open+1+skip)
	if err != nil {
		return err
	}
	tree.Optional = opt
	return nil
}

func (p *parser) appendToken(tree *Tree, token string, offset int) error {
	seg, err := p.segment(token, offset)
	if err != nil {
		return err
	}
	seg.offset = offset
	tree.Segments = append(tree.Segments, seg)
	return nil
}

func (p *parser) segment(token string, offset int) (Segment, error) {
	switch {
	case token == "*":
		return Wildcard(), nil
	case strings.HasPrefix(token, ":"):
		return p.variable(token, offset)
	default:
		return Literal(token), nil
	}
}

func (p *parser) variable(token string, offset int) (Segment, error) {
	name := token[1:]
	open := strings.IndexByte(token, '(')
	constraint := ""
	if open >= 0 {
		end := matchParen(token, open)
		if end < 0 {
			return Segment{}, p.fail(offset+open, ErrUnbalancedParens)
		}
		if end != len(token)-1 {
			return Segment{}, p.fail(offset+end+1,
				fmt.Errorf("%w: unexpected text after constraint", ErrInvalidConstraint))
		}
		name = token[1:open]
		constraint = token[open+1 : end]
	}

	if name == "" {
		return Segment{}, p.fail(offset, ErrEmptyVariableName)
	}
	if !variableNamePattern.MatchString(name) {
		return Segment{}, p.fail(offset, fmt.Errorf("%w: %q", ErrInvalidVariableName, name))
	}
	if _, dup := p.names[name]; dup {
		return Segment{}, p.fail(offset, fmt.Errorf("%w: %q", ErrDuplicateVariable, name))
	}
	p.names[name] = struct{}{}

	if open < 0 {
		return Variable(name), nil
	}
	seg, err := ConstrainedVariable(name, constraint)
	if err != nil {
		return Segment{}, p.fail(offset+open, err)
	}
	return seg, nil
}

func (p *parser) fail(offset int, err error) error {
	return newCompileError(p.spec, offset, err)
}

// matchParen returns the index of the ')' closing the '(' at s[open], or -1.
// Escaped characters and character classes are skipped so that regular
// expressions such as `[(]` or `\)` do not disturb the count.
func matchParen(s string, open int) int {
	depth := 0
	inClass := false
	for i := open; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\':
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
			if i+1 < len(s) && s[i+1] == '^' {
				i++
			}
			if i+1 < len(s) && s[i+1] == ']' {
				i++
			}
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matchBracket returns the index of the ']' closing the '[' at s[open].
// Parenthesised constraints inside the group are opaque.
func matchBracket(s string, open int) (int, error) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			end := matchParen(s, i)
			if end < 0 {
				return -1, ErrUnbalancedParens
			}
			i = end
		case ')':
			return -1, ErrUnbalancedParens
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return -1, ErrUnbalancedBrackets
}
