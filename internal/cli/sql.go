package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/filterkit/internal/ir"
	"github.com/roach88/filterkit/internal/queryir"
	"github.com/roach88/filterkit/internal/querysql"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	Table   string   // overrides the document table; required for --ir input
	IR      bool     // input is serialized IR rather than a document
	Columns []string // select list, defaults to *
}

// SQLResult is the payload of a successful sql compilation.
type SQLResult struct {
	Dialect  string   `json:"dialect"`
	SQL      string   `json:"sql"`
	Params   []any    `json:"params"`
	Portable bool     `json:"portable"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql <document|ir.json>",
		Short: "Compile a filter document or IR to parameterized SQL",
		Long: `Compile a filter document (or, with --ir, a serialized JSON IR) into a
parameterized SELECT statement for the chosen dialect.

Examples:
  filterkit sql active.yaml
  filterkit sql active.yaml --dialect postgres
  filterkit sql query.json --ir --table customers`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Table, "table", "t", "", "table to select from (overrides the document)")
	cmd.Flags().BoolVar(&opts.IR, "ir", false, "treat the input as serialized JSON IR")
	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "comma-separated select list (default *)")

	return cmd
}

func runSQL(opts *SQLOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(formatter.GetErrWriter(), opts.Verbose)

	q, table, err := loadInput(path, opts.IR, opts.Table)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	if table == "" {
		_ = formatter.Error(ErrCodeMissingTable, "no table: set one in the document or pass --table", nil)
		return NewExitError(ExitCommandError, ErrCodeMissingTable)
	}

	sel, err := queryir.Lower(table, q)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	validation := queryir.Validate(sel)

	compiler := &querysql.Compiler{Dialect: opts.dialect(), Columns: opts.Columns}
	sql, params, err := compiler.Compile(sel)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	logger.Debug("query compiled", "dialect", compiler.Dialect, "params", len(params))

	result := SQLResult{
		Dialect:  string(compiler.Dialect),
		SQL:      sql,
		Params:   params,
		Portable: validation.IsPortable,
		Warnings: validation.Warnings,
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, sql)
	if len(params) > 0 {
		parts := make([]string, len(params))
		for i, p := range params {
			parts[i] = formatParam(p)
		}
		fmt.Fprintf(w, "params: [%s]\n", strings.Join(parts, ", "))
	}
	for _, warning := range validation.Warnings {
		fmt.Fprintf(formatter.GetErrWriter(), "%s %s\n", formatter.Yellow("warning:"), warning)
	}
	return nil
}

// loadInput returns the IR and the table it should be compiled against.
func loadInput(path string, isIR bool, table string) (ir.JsonQuery, string, error) {
	if isIR {
		q, err := LoadQuery(path)
		return q, table, err
	}
	doc, q, err := BuildDocument(path)
	if err != nil {
		return ir.JsonQuery{}, "", err
	}
	if table == "" {
		table = doc.Table
	}
	return q, table, nil
}

// formatParam renders a parameter the way it appears in the JSON IR.
func formatParam(p any) string {
	if s, ok := p.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	if p == nil {
		return "null"
	}
	return fmt.Sprintf("%v", p)
}
