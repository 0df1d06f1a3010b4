package document

import (
	"fmt"

	"cuelang.org/go/cue/token"

	"github.com/roach88/filterkit/internal/filter"
	"github.com/roach88/filterkit/internal/ir"
)

// StepKind names the builder call a step replays.
type StepKind string

const (
	StepWhere         StepKind = "where"
	StepOrWhere       StepKind = "orWhere"
	StepWhereNot      StepKind = "whereNot"
	StepOrWhereNot    StepKind = "orWhereNot"
	StepWhereColumn   StepKind = "whereColumn"
	StepOrWhereColumn StepKind = "orWhereColumn"
	StepJoin          StepKind = "join"
	StepLeftJoin      StepKind = "leftJoin"
	StepRightJoin     StepKind = "rightJoin"
)

// ValidStepKinds defines the allowed step keys.
var ValidStepKinds = map[StepKind]bool{
	StepWhere:         true,
	StepOrWhere:       true,
	StepWhereNot:      true,
	StepOrWhereNot:    true,
	StepWhereColumn:   true,
	StepOrWhereColumn: true,
	StepJoin:          true,
	StepLeftJoin:      true,
	StepRightJoin:     true,
}

// Document is a parsed filter document.
type Document struct {
	Name        string
	Description string
	Table       string
	Strict      bool // Replay with filter.NewStrict
	Steps       []Step
}

// Step is one builder call.
//
// Where steps set exactly one of Args, Values, or Group. Column steps set
// Key, Operator and Column. Join steps set Table and On.
type Step struct {
	Kind StepKind
	Pos  token.Pos

	Args   []any
	Values map[string]any
	Group  []Step

	Key      string
	Operator string
	Column   string

	Table string
	On    []OnStep
}

// OnStep is one join on-clause.
type OnStep struct {
	From     string
	Operator string // Empty means "="
	To       string
	Or       bool
}

// Build replays the document into a fresh builder and returns its IR.
func (d *Document) Build() (ir.JsonQuery, error) {
	q, _, err := d.BuildSkipped()
	return q, err
}

// BuildSkipped is Build that also returns the top-level steps a lenient
// builder dropped because they matched no call shape.
func (d *Document) BuildSkipped() (ir.JsonQuery, []SkippedStep, error) {
	b := filter.New()
	if d.Strict {
		b = filter.NewStrict()
	}
	skipped, err := Replay(b, d.Steps)
	if err != nil {
		return ir.JsonQuery{}, nil, err
	}
	q, err := b.ToJSON()
	return q, skipped, err
}

// SkippedStep is a top-level step that appended no modifier.
type SkippedStep struct {
	Field string // e.g. "steps[2].where"
	Pos   token.Pos
}

// Replay applies steps to b in order and returns the top-level steps that
// appended nothing. The first builder error is returned as a *CompileError
// locating the top-level step that caused it.
func Replay(b *filter.Builder, steps []Step) ([]SkippedStep, error) {
	var skipped []SkippedStep
	for i, step := range steps {
		field := fmt.Sprintf("steps[%d].%s", i, step.Kind)
		before := b.Len()
		apply(b, step)
		if err := b.Err(); err != nil {
			return nil, &CompileError{
				Field:   field,
				Message: err.Error(),
				Pos:     step.Pos,
				Err:     err,
			}
		}
		if b.Len() == before {
			skipped = append(skipped, SkippedStep{Field: field, Pos: step.Pos})
		}
	}
	return skipped, nil
}

func apply(b *filter.Builder, step Step) {
	switch step.Kind {
	case StepWhere, StepOrWhere, StepWhereNot, StepOrWhereNot:
		applyWhere(b, step)
	case StepWhereColumn:
		if step.Operator == "" {
			b.WhereColumn(step.Key, step.Column)
		} else {
			b.WhereColumnOp(step.Key, step.Operator, step.Column)
		}
	case StepOrWhereColumn:
		if step.Operator == "" {
			b.OrWhereColumn(step.Key, step.Column)
		} else {
			b.OrWhereColumnOp(step.Key, step.Operator, step.Column)
		}
	case StepJoin:
		b.Join(step.Table, onClauses(step.On))
	case StepLeftJoin:
		b.LeftJoin(step.Table, onClauses(step.On))
	case StepRightJoin:
		b.RightJoin(step.Table, onClauses(step.On))
	}
}

func applyWhere(b *filter.Builder, step Step) {
	switch {
	case step.Group != nil:
		group := step.Group
		shape := filter.Group(func(g *filter.Builder) {
			for _, child := range group {
				apply(g, child)
			}
		})
		whereShape(b, step.Kind, shape)
	case step.Values != nil:
		whereShape(b, step.Kind, filter.Match(step.Values))
	default:
		switch step.Kind {
		case StepWhere:
			b.WhereArgs(step.Args...)
		case StepOrWhere:
			b.OrWhereArgs(step.Args...)
		case StepWhereNot:
			b.WhereNotArgs(step.Args...)
		case StepOrWhereNot:
			b.OrWhereNotArgs(step.Args...)
		}
	}
}

func whereShape(b *filter.Builder, kind StepKind, s filter.Shape) {
	switch kind {
	case StepWhere:
		b.Where(s)
	case StepOrWhere:
		b.OrWhere(s)
	case StepWhereNot:
		b.WhereNot(s)
	case StepOrWhereNot:
		b.OrWhereNot(s)
	}
}

func onClauses(on []OnStep) func(*filter.JoinConditionBuilder) {
	return func(j *filter.JoinConditionBuilder) {
		for _, c := range on {
			switch {
			case c.Or && c.Operator == "":
				j.OrOn(c.From, c.To)
			case c.Or:
				j.OrOnOp(c.From, c.Operator, c.To)
			case c.Operator == "":
				j.On(c.From, c.To)
			default:
				j.OnOp(c.From, c.Operator, c.To)
			}
		}
	}
}
