package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/filterkit/internal/harness"
	"github.com/roach88/filterkit/internal/ir"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Hash   string   `json:"hash,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run filter scenarios",
		Long: `Run scenario files through the builder, lowering and SQL compiler.

Each scenario states the IR, SQL, parameters, error or portability it
expects. When golden/<scenario>.golden exists next to a scenario file, the
canonical IR must also match it byte for byte.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  filterkit test ./scenarios
  filterkit test ./scenarios --filter "join-*"
  filterkit test ./scenarios --update
  filterkit test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if info, err := os.Stat(scenariosDir); err != nil || !info.IsDir() {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("scenarios directory not found: %s", scenariosDir), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	// Find scenario files
	scenarioFiles, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(formatter, TestResult{
				Scenarios: []ScenarioResult{},
				Total:     0,
			})
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	h := harness.New(newLogger(formatter.GetErrWriter(), opts.Verbose))

	// Run scenarios
	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(h, scenarioFile, opts)
		if opts.Format != "json" {
			printScenarioResult(formatter, scenResult)
		}
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	// Output results
	if opts.Format == "json" {
		return outputTestJSON(formatter, result)
	}

	return outputTestText(formatter, result)
}

// findScenarioFiles finds all YAML scenario files in a directory.
// Files under a golden/ directory are skipped.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if d.Name() == "golden" && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		// Apply filter if specified
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// runScenario executes a single scenario and returns the result.
func runScenario(h *harness.Harness, scenarioFile string, opts *TestOptions) ScenarioResult {
	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(scenarioFile),
			Pass:   false,
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	result, err := h.Run(scenario)
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Pass:   false,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	out := ScenarioResult{
		Name:   scenario.Name,
		Pass:   result.Pass,
		Hash:   result.Hash,
		Errors: result.Errors,
	}

	goldenPath := goldenFilePath(scenarioFile)

	if opts.Update {
		if result.Err != nil {
			// Nothing to snapshot for scenarios that expect a build error.
			return out
		}
		if err := updateGoldenFile(result, goldenPath); err != nil {
			out.Pass = false
			out.Errors = append(out.Errors, fmt.Sprintf("failed to update golden file: %v", err))
		}
		return out
	}

	// No golden file - use expectation-based validation only
	if _, err := os.Stat(goldenPath); os.IsNotExist(err) {
		return out
	}

	match, err := compareWithGolden(result, goldenPath)
	if err != nil {
		out.Pass = false
		out.Errors = append(out.Errors, fmt.Sprintf("golden comparison failed: %v", err))
		return out
	}
	if !match {
		out.Pass = false
		out.Errors = append(out.Errors, "IR does not match golden file (run with --update to regenerate)")
	}
	return out
}

func printScenarioResult(formatter *OutputFormatter, r ScenarioResult) {
	w := formatter.Writer
	if r.Pass {
		fmt.Fprintf(w, "%s %s\n", formatter.Green("✓"), r.Name)
		return
	}
	fmt.Fprintf(w, "%s %s\n", formatter.Red("✗"), r.Name)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(e, "\n", "\n  "))
	}
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// updateGoldenFile writes the current canonical IR as the golden file.
func updateGoldenFile(result *harness.Result, goldenPath string) error {
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}

	data, err := ir.MarshalCanonical(result.Query)
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	if err := os.WriteFile(goldenPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// compareWithGolden compares the result IR against the golden file.
func compareWithGolden(result *harness.Result, goldenPath string) (bool, error) {
	goldenData, err := os.ReadFile(goldenPath)
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}

	currentData, err := ir.MarshalCanonical(result.Query)
	if err != nil {
		return false, fmt.Errorf("failed to marshal current query: %w", err)
	}

	return string(goldenData) == string(currentData), nil
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(formatter *OutputFormatter, result TestResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	if err := formatter.Response(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(formatter *OutputFormatter, result TestResult) error {
	w := formatter.Writer

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, formatter.Green("✓ All scenarios passed"))
	return nil
}
