// Package routespec compiles route specifications into fixed-shape
// path patterns.
//
// A route specification is a slash separated list of segments:
//
//   - literal text, matched byte for byte
//   - :name or :name(regex), a path variable, optionally constrained by
//     a regular expression that must match the whole segment value
//   - *, a wildcard that consumes the rest of the path (final segment only)
//   - [...], an optional group which may contain one nested optional
//     group and may attach to either side of a slash
//
// One leading and one trailing slash are ignored.
//
// # Compilation
//
// Parse turns a specification into a Tree: a run of segments followed by
// at most one optional Tree. Expand flattens a tree of depth k into k+1
// patterns, shortest first, each a strict prefix extension of the one
// before it:
//
//	patterns, err := routespec.Compile("/a/[b/[c]]")
//	// patterns: /a, /a/b, /a/b/c
//
// All syntax errors are reported at compile time as *CompileError values
// wrapping one of the Err* sentinels.
package routespec
