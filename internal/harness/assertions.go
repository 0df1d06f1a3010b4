package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/filterkit/internal/ir"
)

// AssertionError describes one failed expectation.
type AssertionError struct {
	Type     string // Expectation that failed
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// evaluateExpectations checks every stated expectation against the result
// and records a mismatch message for each one that fails.
func evaluateExpectations(result *Result, expect Expect) {
	checks := []func(*Result, Expect) error{
		assertError,
		assertModifiers,
		assertSQL,
		assertParams,
		assertPortable,
	}
	for _, check := range checks {
		if err := check(result, expect); err != nil {
			result.AddError(err.Error())
		}
	}
}

// assertError checks the error expectation. Without one, any error fails
// the scenario.
func assertError(result *Result, expect Expect) error {
	if expect.Error == "" {
		if result.Err != nil {
			return &AssertionError{Type: "error", Expected: "no error", Actual: result.Err.Error()}
		}
		return nil
	}
	if result.Err == nil {
		return &AssertionError{Type: "error", Expected: fmt.Sprintf("error containing %q", expect.Error), Actual: "no error"}
	}
	if !strings.Contains(result.Err.Error(), expect.Error) {
		return &AssertionError{
			Type:     "error",
			Expected: fmt.Sprintf("error containing %q", expect.Error),
			Actual:   result.Err.Error(),
		}
	}
	return nil
}

// assertModifiers compares expected and actual IR by canonical form, so key
// order in the scenario file does not matter but modifier order does.
func assertModifiers(result *Result, expect Expect) error {
	if expect.Modifiers == nil {
		return nil
	}

	raw, err := json.Marshal(map[string]any{"modifiers": expect.Modifiers})
	if err != nil {
		return fmt.Errorf("expect.modifiers: %w", err)
	}
	want, err := ir.ParseQuery(raw)
	if err != nil {
		return fmt.Errorf("expect.modifiers: %w", err)
	}

	wantJSON, err := ir.MarshalCanonical(want)
	if err != nil {
		return fmt.Errorf("expect.modifiers: %w", err)
	}
	gotJSON, err := ir.MarshalCanonical(result.Query)
	if err != nil {
		return fmt.Errorf("canonicalize result: %w", err)
	}

	if string(wantJSON) != string(gotJSON) {
		return &AssertionError{Type: "modifiers", Expected: string(wantJSON), Actual: string(gotJSON)}
	}
	return nil
}

func assertSQL(result *Result, expect Expect) error {
	if expect.SQL == "" || expect.SQL == result.SQL {
		return nil
	}
	return &AssertionError{Type: "sql", Expected: expect.SQL, Actual: result.SQL}
}

// assertParams compares parameters after normalizing both sides to IR
// values, so YAML ints match compiled int64 parameters.
func assertParams(result *Result, expect Expect) error {
	if expect.Params == nil {
		return nil
	}

	want, err := ir.ValueOf(expect.Params)
	if err != nil {
		return fmt.Errorf("expect.params: %w", err)
	}
	got, err := ir.ValueOf(result.Params)
	if err != nil {
		return fmt.Errorf("compiled params: %w", err)
	}

	if !reflect.DeepEqual(want, got) {
		return &AssertionError{
			Type:     "params",
			Expected: fmt.Sprintf("%v", expect.Params),
			Actual:   fmt.Sprintf("%v", result.Params),
		}
	}
	return nil
}

func assertPortable(result *Result, expect Expect) error {
	if expect.Portable == nil || *expect.Portable == result.Portable {
		return nil
	}
	return &AssertionError{
		Type:     "portable",
		Expected: fmt.Sprintf("%t", *expect.Portable),
		Actual:   fmt.Sprintf("%t (warnings: %s)", result.Portable, strings.Join(result.Warnings, "; ")),
	}
}
