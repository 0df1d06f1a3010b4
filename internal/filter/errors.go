package filter

import (
	"errors"
	"fmt"

	"github.com/roach88/filterkit/internal/ir"
)

// Sentinel errors for errors.Is matching.
var (
	// ErrInconsistentGroup indicates a where-group callback produced a
	// non-where modifier.
	ErrInconsistentGroup = errors.New("inconsistent filter group")

	// ErrUnmatchedShape indicates a strict builder received arguments that
	// match no call shape.
	ErrUnmatchedShape = errors.New("unmatched call shape")

	// ErrInvalidValue indicates a comparison value that is not an ir.Value.
	ErrInvalidValue = errors.New("invalid filter value")
)

// InconsistentGroupError is raised when a grouped where callback yields any
// non-where modifier.
type InconsistentGroupError struct {
	// Index is the position of the first offending modifier in the group.
	Index int

	// Method is the offending modifier's method (always "join" today).
	Method ir.Method
}

func (e *InconsistentGroupError) Error() string {
	return fmt.Sprintf("%s: child %d is a %q modifier", ErrInconsistentGroup, e.Index, e.Method)
}

// Is reports whether target is ErrInconsistentGroup.
func (e *InconsistentGroupError) Is(target error) bool {
	return target == ErrInconsistentGroup
}

// UnmatchedShapeError reports arguments that match no call shape.
type UnmatchedShapeError struct {
	Operator ir.LogicalOperator
	Args     []any
}

func (e *UnmatchedShapeError) Error() string {
	return fmt.Sprintf("%s: %s with %d argument(s) %s", ErrUnmatchedShape, e.Operator, len(e.Args), describeArgs(e.Args))
}

// Is reports whether target is ErrUnmatchedShape.
func (e *UnmatchedShapeError) Is(target error) bool {
	return target == ErrUnmatchedShape
}

// ValueError reports a comparison value that cannot be represented in the IR.
type ValueError struct {
	Key string
	Err error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s for %q: %v", ErrInvalidValue, e.Key, e.Err)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvalidValue.
func (e *ValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

func describeArgs(args []any) string {
	types := make([]string, len(args))
	for i, a := range args {
		types[i] = fmt.Sprintf("%T", a)
	}
	return fmt.Sprintf("%v", types)
}
