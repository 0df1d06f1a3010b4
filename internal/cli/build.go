package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/filterkit/internal/ir"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Output string // write the IR to this file instead of stdout
}

// BuildResult is the payload of a successful build.
type BuildResult struct {
	Name      string       `json:"name"`
	IRVersion string       `json:"ir_version"`
	Table     string       `json:"table,omitempty"`
	Hash      string       `json:"hash"`
	Modifiers int          `json:"modifiers"`
	Query     ir.JsonQuery `json:"query"`
	Skipped   []string     `json:"skipped,omitempty"` // steps dropped as unmatched call shapes
	Output    string       `json:"output,omitempty"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <document>",
		Short: "Build a filter document into JSON IR",
		Long: `Replay a filter document through the builder and print the resulting
JSON IR together with its content hash.

Examples:
  filterkit build active.yaml
  filterkit build active.cue -o active.ir.json
  filterkit build active.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the IR to a file")

	return cmd
}

func runBuild(opts *BuildOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(formatter.GetErrWriter(), opts.Verbose)

	doc, err := LoadDocument(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	q, skipped, err := doc.BuildSkipped()
	if err != nil {
		return outputLoadError(formatter, convertDocumentError(err, "building "+path))
	}
	skippedFields := make([]string, 0, len(skipped))
	for _, s := range skipped {
		logger.Debug("step matched no call shape", "field", s.Field, "pos", s.Pos.String())
		skippedFields = append(skippedFields, s.Field)
	}

	hash, err := ir.QueryHash(q)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	logger.Debug("document built", "document", doc.Name, "modifiers", len(q.Modifiers), "hash", hash)

	result := BuildResult{
		Name:      doc.Name,
		IRVersion: ir.IRVersion,
		Table:     doc.Table,
		Hash:      hash,
		Modifiers: len(q.Modifiers),
		Query:     q,
		Skipped:   skippedFields,
	}

	encoded, err := ir.Encode(q, "  ")
	if err != nil {
		return outputLoadError(formatter, err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, append(encoded, '\n'), 0o644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing %s: %v", opts.Output, err), nil)
			return WrapExitError(ExitCommandError, ErrCodeWriteFailed, err)
		}
		logger.Info("wrote IR", slog.String("path", opts.Output))
		result.Output = opts.Output
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	for _, field := range skippedFields {
		fmt.Fprintf(formatter.GetErrWriter(), "%s %s matched no call shape and was skipped\n", formatter.Yellow("warning:"), field)
	}

	w := formatter.Writer
	if opts.Output == "" {
		fmt.Fprintln(w, string(encoded))
	}
	fmt.Fprintf(w, "%s %s: %d modifier(s)\n", formatter.Green("✓"), doc.Name, len(q.Modifiers))
	fmt.Fprintf(w, "hash: %s\n", formatter.Cyan(hash))
	return nil
}
