package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/filterkit/internal/querysql"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Dialect string // "sqlite" | "postgres" | "mysql"
	NoColor bool

	// TraceIDs generates response trace ids. Nil means NewTraceID.
	TraceIDs TraceIDFunc
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the filterkit CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filterkit",
		Short: "filterkit - fluent filter queries as portable IR",
		Long: `Build, inspect and compile filter documents.

A filter document is an ordered list of where and join steps. filterkit
replays the steps through the filter builder, emits the resulting JSON IR,
and compiles it to parameterized SQL.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if _, err := querysql.ParseDialect(opts.Dialect); err != nil {
				return err
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Dialect, "dialect", string(querysql.DialectSQLite), "SQL dialect (sqlite|postgres|mysql)")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored text output")

	// Add subcommands
	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// dialect returns the parsed --dialect flag. PersistentPreRunE has already
// rejected unknown names; commands run standalone in tests fall back to sqlite.
func (o *RootOptions) dialect() querysql.Dialect {
	d, err := querysql.ParseDialect(o.Dialect)
	if err != nil {
		return querysql.DialectSQLite
	}
	return d
}

// newLogger returns a text logger on w at Info, or Debug when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	return slog.New(handler)
}
