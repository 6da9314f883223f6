package routespec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patternStrings(patterns []*Pattern) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, p.String())
	}
	return out
}

func TestCompile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		spec     string
		patterns []string
	}{
		{name: "root", spec: "/", patterns: []string{"/"}},
		{name: "literal", spec: "/users", patterns: []string{"/users"}},
		{name: "variable", spec: "/users/:userID", patterns: []string{"/users/:userID"}},
		{name: "optional variable", spec: "/users/[:userID]", patterns: []string{"/users", "/users/:userID"}},
		{name: "nested optional", spec: "/a/[b/[c]]", patterns: []string{"/a", "/a/b", "/a/b/c"}},
		{name: "optional before slash", spec: "/a[/b[/c]]", patterns: []string{"/a", "/a/b", "/a/b/c"}},
		{name: "optional at root", spec: "/[a]", patterns: []string{"/", "/a"}},
		{name: "wildcard", spec: "/files/*", patterns: []string{"/files/*"}},
		{name: "optional wildcard", spec: "/files/[*]", patterns: []string{"/files", "/files/*"}},
		{name: "optional before wildcard", spec: "/files/[:dir/*]", patterns: []string{"/files", "/files/:dir/*"}},
		{name: "multi segment optional", spec: "/v1/[a/b/[c/d]]", patterns: []string{"/v1", "/v1/a/b", "/v1/a/b/c/d"}},
		{name: "constraint", spec: "/users/:id([0-9]+)", patterns: []string{"/users/:id([0-9]+)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			patterns, err := Compile(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.patterns, patternStrings(patterns))
			for _, p := range patterns {
				assert.Equal(t, tt.spec, p.Spec())
			}
		})
	}
}

func TestCompile_PrefixExtension(t *testing.T) {
	t.Parallel()

	patterns := MustCompile("/a/:x/[b/[:y/[c]]]")
	require.Len(t, patterns, 4)

	for i := 1; i < len(patterns); i++ {
		prev, cur := patterns[i-1], patterns[i]
		require.Greater(t, cur.Len(), prev.Len())
		for j := 0; j < prev.Len(); j++ {
			assert.Equal(t, prev.At(j).String(), cur.At(j).String())
		}
	}
	assert.Equal(t, []string{"x", "y"}, patterns[3].Variables())
	assert.Equal(t, []string{"x"}, patterns[1].Variables())
}

func TestCompile_WildcardPlacement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		spec   string
		offset int
	}{
		{name: "wildcard first", spec: "/*/a", offset: 1},
		{name: "wildcard before optional", spec: "/a/*/[b]", offset: 3},
		{name: "wildcard before optional on same segment", spec: "/a/*[/b]", offset: 3},
		{name: "wildcard inside optional then more", spec: "/a/[*/b]", offset: 4},
		{name: "wildcard before nested optional", spec: "/a/[*/[b]]", offset: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			patterns, err := Compile(tt.spec)
			require.Error(t, err)
			assert.Nil(t, patterns)
			assert.True(t, errors.Is(err, ErrWildcardNotLast))

			var compileErr *CompileError
			require.True(t, errors.As(err, &compileErr))
			assert.Equal(t, tt.offset, compileErr.Offset)
		})
	}
}

func TestCompile_PropagatesParseErrors(t *testing.T) {
	t.Parallel()

	_, err := Compile("/a/[b")
	assert.True(t, errors.Is(err, ErrUnbalancedBrackets))
}

func TestMustCompile_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { MustCompile("/a/[b][c]") })
	assert.NotPanics(t, func() { MustCompile("/a/[b]") })
}

func TestPattern_Accessors(t *testing.T) {
	t.Parallel()

	patterns := MustCompile("/files/:dir/*")
	require.Len(t, patterns, 1)
	p := patterns[0]

	assert.Equal(t, 3, p.Len())
	assert.Equal(t, 2, p.FixedLen())
	assert.True(t, p.HasWildcard())
	assert.Equal(t, "/files/:dir/*", p.String())

	segs := p.Segments()
	segs[0] = Literal("mutated")
	assert.Equal(t, "files", p.At(0).Text())

	vars := p.Variables()
	vars[0] = "mutated"
	assert.Equal(t, []string{"dir"}, p.Variables())

	plain := MustCompile("/a")[0]
	assert.False(t, plain.HasWildcard())
	assert.Equal(t, 1, plain.FixedLen())
}

func TestExpand_Depth(t *testing.T) {
	t.Parallel()

	for depth, spec := range []string{"/a", "/a/[b]", "/a/[b/[c]]", "/a/[b/[c/[d]]]"} {
		tree, err := Parse(spec)
		require.NoError(t, err)
		assert.Equal(t, depth, tree.Depth())
		assert.Len(t, Expand(tree), depth+1)
	}
}
