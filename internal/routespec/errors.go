package routespec

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by CompileError.
var (
	ErrUnbalancedBrackets  = errors.New("unbalanced brackets")
	ErrUnbalancedParens    = errors.New("unbalanced parentheses")
	ErrEmptyVariableName   = errors.New("empty variable name")
	ErrInvalidVariableName = errors.New("invalid variable name")
	ErrWildcardNotLast     = errors.New("wildcard must be the final segment")
	ErrSiblingOptional     = errors.New("optional groups must nest, not follow each other")
	ErrInvalidConstraint   = errors.New("invalid variable constraint")
	ErrDuplicateVariable   = errors.New("duplicate variable name")
	ErrEmptyOptional       = errors.New("empty optional group")
	ErrMisplacedOptional   = errors.New("misplaced optional group")
)

// CompileError reports a malformed route specification.
type CompileError struct {
	Spec   string
	Offset int
	Err    error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("invalid route specification %q: %v", e.Spec, e.Err)
	}
	return fmt.Sprintf("invalid route specification %q at offset %d: %v", e.Spec, e.Offset, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CompileError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *CompileError) Is(target error) bool {
	_, ok := target.(*CompileError)
	return ok || errors.Is(e.Err, target)
}

func newCompileError(spec string, offset int, err error) *CompileError {
	return &CompileError{Spec: spec, Offset: offset, Err: err}
}
