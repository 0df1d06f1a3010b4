package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/filterkit/internal/ir"
)

// RunWithGolden executes a scenario and compares the built IR against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario cannot run. Mismatches fail t via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares a result's IR, in canonical form, against a golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := ir.MarshalCanonical(result.Query)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)

	return nil
}
