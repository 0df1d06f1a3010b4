package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/filterkit/internal/ir"
	"github.com/roach88/filterkit/internal/queryir"
	"github.com/roach88/filterkit/internal/querysql"
)

// Harness executes scenarios.
type Harness struct {
	logger *slog.Logger
}

// New creates a Harness. A nil logger discards log output.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	}
	return &Harness{logger: logger}
}

// Run executes a scenario with a silent harness.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(scenario)
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Replay the document into a builder
//  2. Lower and validate the query (when the document names a table)
//  3. Compile it for the scenario's dialect
//  4. Evaluate expectations
//
// The returned error is reserved for scenarios that cannot run at all;
// expectation mismatches are reported in Result.Errors.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	if scenario == nil || scenario.Doc == nil {
		return nil, fmt.Errorf("scenario has no parsed document")
	}

	dialect, err := querysql.ParseDialect(scenario.Dialect)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	doc := scenario.Doc

	q, err := doc.Build()
	if err != nil {
		h.logger.Debug("build failed", "scenario", scenario.Name, "error", err)
		result.Err = err
		evaluateExpectations(result, scenario.Expect)
		return result, nil
	}
	result.Query = q

	hash, err := ir.QueryHash(q)
	if err != nil {
		return nil, fmt.Errorf("hash query: %w", err)
	}
	result.Hash = hash

	h.logger.Debug("document built",
		"scenario", scenario.Name,
		"modifiers", len(q.Modifiers),
		"hash", hash,
	)

	if doc.Table != "" {
		sel, err := queryir.Lower(doc.Table, q)
		if err != nil {
			result.Err = err
			evaluateExpectations(result, scenario.Expect)
			return result, nil
		}

		validation := queryir.Validate(sel)
		result.Portable = validation.IsPortable
		result.Warnings = validation.Warnings

		sql, params, err := querysql.NewCompiler(dialect).Compile(sel)
		if err != nil {
			h.logger.Debug("compile failed", "scenario", scenario.Name, "error", err)
			result.Err = err
		} else {
			result.SQL = sql
			result.Params = params
			h.logger.Debug("query compiled", "scenario", scenario.Name, "sql", sql)
		}
	} else if scenario.Expect.SQL != "" || scenario.Expect.Params != nil || scenario.Expect.Portable != nil {
		result.AddError("document has no table; sql, params and portable expectations need one")
	}

	evaluateExpectations(result, scenario.Expect)
	return result, nil
}
