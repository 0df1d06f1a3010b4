package querysql

import (
	"errors"
	"fmt"
)

// ErrCompile is the sentinel for queries the compiler cannot render.
var ErrCompile = errors.New("compile")

// CompileError reports a predicate that cannot be rendered as SQL.
type CompileError struct {
	Field   string // Offending field or table; empty for whole-query errors
	Message string
}

func (e *CompileError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrCompile, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrCompile, e.Field, e.Message)
}

// Is reports whether target is ErrCompile.
func (e *CompileError) Is(target error) bool {
	return target == ErrCompile
}

func compileErrorf(field, format string, args ...any) *CompileError {
	return &CompileError{Field: field, Message: fmt.Sprintf(format, args...)}
}
