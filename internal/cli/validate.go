package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/filterkit/internal/queryir"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	RequirePortable bool // fail when the query leaves the portable fragment
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Portable bool     `json:"portable"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <document>",
		Short: "Validate a filter document without compiling it",
		Long: `Build a filter document, lower it to a predicate tree and report
features outside the portable fragment (right joins, unknown operators,
NULL comparisons, empty groups).

A document without a table is only checked for build errors.

Exit codes:
  0 - Document is valid
  1 - Not portable (with --require-portable)
  2 - Document could not be loaded or built`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.RequirePortable, "require-portable", false, "exit 1 when portability warnings are found")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	doc, q, err := BuildDocument(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Built %s: %d modifier(s)", doc.Name, len(q.Modifiers))

	result := ValidationResult{Valid: true, Portable: true}
	if doc.Table != "" {
		sel, err := queryir.Lower(doc.Table, q)
		if err != nil {
			return outputLoadError(formatter, err)
		}
		validation := queryir.Validate(sel)
		result.Portable = validation.IsPortable
		result.Warnings = validation.Warnings
	} else {
		formatter.VerboseLog("No table in %s; skipping portability checks", path)
	}

	failed := opts.RequirePortable && !result.Portable
	if failed {
		result.Valid = false
	}

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if failed {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeGeneric, Message: result.Warnings[0]}
		}
		if err := formatter.Response(resp); err != nil {
			return err
		}
	} else {
		outputValidateText(formatter, doc.Name, result)
	}

	if failed {
		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d warning(s)", len(result.Warnings)))
	}
	return nil
}

func outputValidateText(formatter *OutputFormatter, name string, result ValidationResult) {
	w := formatter.Writer
	switch {
	case result.Valid && result.Portable:
		fmt.Fprintf(w, "%s %s is valid and portable\n", formatter.Green("✓"), name)
		return
	case result.Valid:
		fmt.Fprintf(w, "%s %s is valid but not portable\n", formatter.Yellow("⚠"), name)
	default:
		fmt.Fprintf(w, "%s %s is not portable\n", formatter.Red("✗"), name)
	}
	fmt.Fprintln(w)
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  %s\n", warning)
	}
}
