package harness

import (
	"github.com/roach88/filterkit/internal/ir"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every expectation matched.
	Pass bool `json:"pass"`

	// Query is the IR the document built. Empty when the build failed.
	Query ir.JsonQuery `json:"query"`

	// Hash is the content-addressed fingerprint of Query.
	Hash string `json:"hash,omitempty"`

	// SQL and Params are the compiled statement, when the document names a table.
	SQL    string `json:"sql,omitempty"`
	Params []any  `json:"params,omitempty"`

	// Portable and Warnings are the portability verdict for the lowered query.
	Portable bool     `json:"portable"`
	Warnings []string `json:"warnings,omitempty"`

	// Err is the build or compile error, if any.
	Err error `json:"-"`

	// Errors contains expectation mismatch messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Query:  ir.JsonQuery{Modifiers: []ir.Modifier{}},
		Errors: []string{},
	}
}

// AddError adds a mismatch message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
