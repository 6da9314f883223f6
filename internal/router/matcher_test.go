package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avaroute/internal/routespec"
)

func compileOne(t *testing.T, spec string) *routespec.Pattern {
	t.Helper()
	patterns, err := routespec.Compile(spec)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	return patterns[0]
}

func TestSplitPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want []string
	}{
		{path: "", want: nil},
		{path: "/", want: nil},
		{path: "//", want: nil},
		{path: "/users", want: []string{"users"}},
		{path: "users/", want: []string{"users"}},
		{path: "/users/1/", want: []string{"users", "1"}},
		{path: "/a//b", want: []string{"a", "", "b"}},
		{path: "/a/b//", want: []string{"a", "b", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SplitPath(tt.path))
		})
	}
}

func TestMatchPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		spec    string
		path    []string
		matched bool
		params  map[string]string
		tail    []string
	}{
		{name: "literal exact", spec: "/a/b", path: []string{"a", "b"}, matched: true, params: map[string]string{}, tail: []string{}},
		{name: "literal shorter", spec: "/a/b", path: []string{"a"}},
		{name: "literal longer", spec: "/a/b", path: []string{"a", "b", "c"}},
		{name: "literal differs", spec: "/a/b", path: []string{"a", "c"}},
		{name: "root", spec: "/", path: nil, matched: true, params: map[string]string{}, tail: []string{}},
		{name: "variable", spec: "/users/:id", path: []string{"users", "7"}, matched: true, params: map[string]string{"id": "7"}, tail: []string{}},
		{name: "variable empty", spec: "/users/:id", path: []string{"users", ""}},
		{name: "constraint ok", spec: "/users/:id([0-9]+)", path: []string{"users", "42"}, matched: true, params: map[string]string{"id": "42"}, tail: []string{}},
		{name: "constraint fails", spec: "/users/:id([0-9]+)", path: []string{"users", "4x"}},
		{name: "wildcard zero", spec: "/files/*", path: []string{"files"}, matched: true, params: map[string]string{}, tail: []string{}},
		{name: "wildcard many", spec: "/files/*", path: []string{"files", "a", "", "b c"}, matched: true, params: map[string]string{}, tail: []string{"a", "", "b c"}},
		{name: "wildcard prefix too short", spec: "/files/:dir/*", path: []string{"files"}},
		{name: "wildcard prefix mismatch", spec: "/files/*", path: []string{"docs", "a"}},
		{name: "wildcard with variable", spec: "/files/:dir/*", path: []string{"files", "img", "x.png"}, matched: true, params: map[string]string{"dir": "img"}, tail: []string{"x.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, ok := MatchPattern(compileOne(t, tt.spec), tt.path)
			assert.Equal(t, tt.matched, ok)
			if !tt.matched {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, tt.params, result.Map())
			assert.Equal(t, tt.tail, result.WildcardTail())
		})
	}
}

func TestMatchPattern_DeclarationOrder(t *testing.T) {
	t.Parallel()

	result, ok := MatchPattern(compileOne(t, "/:org/repos/:repo/:branch"), []string{"acme", "repos", "api", "main"})
	require.True(t, ok)
	assert.Equal(t, []Param{
		{Name: "org", Value: "acme"},
		{Name: "repo", Value: "api"},
		{Name: "branch", Value: "main"},
	}, result.Params())
}

func TestMatchPattern_TailIsCopied(t *testing.T) {
	t.Parallel()

	path := []string{"files", "a", "b"}
	result, ok := MatchPattern(compileOne(t, "/files/*"), path)
	require.True(t, ok)

	path[1] = "changed"
	assert.Equal(t, []string{"a", "b"}, result.WildcardTail())
}

func TestSplitEscapedPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		want    []string
		wantErr bool
	}{
		{name: "root", path: "/", want: nil},
		{name: "plain", path: "/users/42", want: []string{"users", "42"}},
		{name: "encoded slash", path: "/users/a%2Fb", want: []string{"users", "a/b"}},
		{name: "encoded space", path: "/files/c%20d/", want: []string{"files", "c d"}},
		{name: "invalid escape", path: "/users/%zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := SplitEscapedPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
