package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/roach88/filterkit/internal/ir"
)

// ExplainRow is one modifier in document order. Group children follow their
// group with a dotted step number.
type ExplainRow struct {
	Step       string `json:"step"`
	Connective string `json:"connective"`
	Kind       string `json:"kind"`
	Condition  string `json:"condition"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <document>",
		Short: "Show a document's modifiers as a table",
		Long: `Build a filter document and print one row per modifier, in order,
with its connective and a readable condition. Grouped children are
listed under their group.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runExplain(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	_, q, err := BuildDocument(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	rows := ExplainQuery(q)
	if opts.Format == "json" {
		return formatter.Success(rows)
	}

	fmt.Fprint(formatter.Writer, FormatExplain(rows))
	return nil
}

// ExplainQuery flattens a query into explain rows.
func ExplainQuery(q ir.JsonQuery) []ExplainRow {
	rows := []ExplainRow{}
	for i, m := range q.Modifiers {
		rows = appendExplainRows(rows, fmt.Sprint(i+1), m)
	}
	return rows
}

func appendExplainRows(rows []ExplainRow, step string, m ir.Modifier) []ExplainRow {
	switch mod := m.(type) {
	case ir.WhereSimple:
		return append(rows, ExplainRow{
			Step:       step,
			Connective: string(mod.LogicalOperator),
			Kind:       string(ir.KindSimple),
			Condition:  fmt.Sprintf("%s %s %s", mod.Key, operatorOrDefault(mod.Operator), formatValue(mod.Value)),
		})
	case ir.WhereObject:
		keys := make([]string, 0, len(mod.Values))
		for k := range mod.Values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s = %s", k, formatValue(mod.Values[k]))
		}
		cond := strings.Join(parts, " and ")
		if cond == "" {
			cond = "(empty)"
		}
		return append(rows, ExplainRow{
			Step:       step,
			Connective: string(mod.LogicalOperator),
			Kind:       string(ir.KindObject),
			Condition:  cond,
		})
	case ir.WhereColumn:
		return append(rows, ExplainRow{
			Step:       step,
			Connective: string(mod.LogicalOperator),
			Kind:       string(ir.KindColumn),
			Condition:  fmt.Sprintf("%s %s %s", mod.Key, operatorOrDefault(mod.Operator), mod.Column),
		})
	case ir.WhereGrouped:
		rows = append(rows, ExplainRow{
			Step:       step,
			Connective: string(mod.LogicalOperator),
			Kind:       string(ir.KindGrouped),
			Condition:  fmt.Sprintf("(%d condition(s))", len(mod.Children)),
		})
		for i, child := range mod.Children {
			rows = appendExplainRows(rows, fmt.Sprintf("%s.%d", step, i+1), child)
		}
		return rows
	case ir.Join:
		return append(rows, ExplainRow{
			Step:       step,
			Connective: "",
			Kind:       string(mod.Kind) + " join",
			Condition:  formatJoin(mod),
		})
	default:
		return append(rows, ExplainRow{Step: step, Kind: fmt.Sprintf("%T", m)})
	}
}

func formatJoin(j ir.Join) string {
	if len(j.On) == 0 {
		return j.Table
	}
	var b strings.Builder
	b.WriteString(j.Table)
	b.WriteString(" on ")
	for i, on := range j.On {
		if i > 0 {
			if on.LogicalOperator == ir.Or {
				b.WriteString(" or ")
			} else {
				b.WriteString(" and ")
			}
		}
		fmt.Fprintf(&b, "%s %s %s", on.From, operatorOrDefault(on.Operator), on.To)
	}
	return b.String()
}

func operatorOrDefault(op string) string {
	if op == "" {
		return ir.DefaultOperator
	}
	return op
}

// formatValue converts a value to its JSON-like representation.
func formatValue(v ir.Value) string {
	switch val := v.(type) {
	case nil, ir.Null:
		return "null"
	case ir.String:
		return fmt.Sprintf("%q", string(val))
	case ir.List:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = formatValue(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", ir.Native(v))
	}
}

// FormatExplain renders explain rows as a markdown table.
func FormatExplain(rows []ExplainRow) string {
	if len(rows) == 0 {
		return "_No modifiers_\n"
	}

	tableString := &strings.Builder{}

	alignment := []tw.Align{tw.AlignNone, tw.AlignNone, tw.AlignNone, tw.AlignNone}
	table := tablewriter.NewTable(tableString,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)

	table.Header([]string{"Step", "Connective", "Kind", "Condition"})
	for _, r := range rows {
		table.Append([]string{r.Step, r.Connective, r.Kind, r.Condition})
	}
	table.Render()

	tableString.WriteString(fmt.Sprintf("\n_%d row(s)_\n", len(rows)))
	return tableString.String()
}
