package queryir

import (
	"errors"
	"fmt"

	"github.com/roach88/filterkit/internal/ir"
)

// ErrLower is the sentinel for malformed IR found while lowering.
var ErrLower = errors.New("lower")

// LowerError reports where in the modifier sequence lowering failed.
type LowerError struct {
	Path    string // e.g. "modifiers[2].children[0]"
	Message string
}

func (e *LowerError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrLower, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrLower, e.Path, e.Message)
}

// Is reports whether target is ErrLower.
func (e *LowerError) Is(target error) bool {
	return target == ErrLower
}

// Lower converts a flat modifier sequence into a Select over table.
//
// Where-modifiers become the filter tree; joins are collected in declaration
// order regardless of where they appear between where-modifiers. An empty
// query lowers to a Select with a nil Filter.
func Lower(table string, q ir.JsonQuery) (Select, error) {
	if table == "" {
		return Select{}, &LowerError{Message: "empty table name"}
	}

	sel := Select{From: table}
	var wheres []ir.WhereModifier
	var paths []string
	for i, m := range q.Modifiers {
		path := fmt.Sprintf("modifiers[%d]", i)
		switch mod := m.(type) {
		case ir.Join:
			js, err := lowerJoin(path, mod)
			if err != nil {
				return Select{}, err
			}
			sel.Joins = append(sel.Joins, js)
		case ir.WhereModifier:
			wheres = append(wheres, mod)
			paths = append(paths, path)
		case nil:
			return Select{}, &LowerError{Path: path, Message: "nil modifier"}
		default:
			return Select{}, &LowerError{Path: path, Message: fmt.Sprintf("unsupported modifier type %T", m)}
		}
	}

	if len(wheres) > 0 {
		filter, err := lowerChain(paths, wheres)
		if err != nil {
			return Select{}, err
		}
		sel.Filter = filter
	}
	return sel, nil
}

// link is one operand of a sequential chain with its connective.
type link struct {
	or   bool
	pred Predicate
}

// fold applies AND-over-OR precedence to a chain. The first link's
// connective is ignored. Single-operand runs are not wrapped.
func fold(links []link) Predicate {
	var runs [][]Predicate
	for i, l := range links {
		if i == 0 || l.or {
			runs = append(runs, []Predicate{l.pred})
			continue
		}
		last := len(runs) - 1
		runs[last] = append(runs[last], l.pred)
	}

	terms := make([]Predicate, 0, len(runs))
	for _, run := range runs {
		if len(run) == 1 {
			terms = append(terms, run[0])
		} else {
			terms = append(terms, And{Predicates: run})
		}
	}

	switch len(terms) {
	case 0:
		return And{Predicates: []Predicate{}}
	case 1:
		return terms[0]
	default:
		return Or{Predicates: terms}
	}
}

// lowerChain lowers sibling where-modifiers; paths[i] locates mods[i] for
// error reporting.
func lowerChain(paths []string, mods []ir.WhereModifier) (Predicate, error) {
	links := make([]link, 0, len(mods))
	for i, m := range mods {
		p := paths[i]
		if m == nil {
			return nil, &LowerError{Path: p, Message: "nil where modifier"}
		}
		op := m.Logical()
		if !ir.ValidLogicalOperators[op] {
			return nil, &LowerError{Path: p, Message: fmt.Sprintf("invalid logicalOperator %q", op)}
		}

		pred, err := lowerWhere(p, m)
		if err != nil {
			return nil, err
		}
		if op.Negated() {
			pred = Not{Predicate: pred}
		}
		links = append(links, link{or: op.Connective() == ir.Or, pred: pred})
	}
	return fold(links), nil
}

func lowerWhere(path string, m ir.WhereModifier) (Predicate, error) {
	switch w := m.(type) {
	case ir.WhereSimple:
		value := w.Value
		if value == nil {
			value = ir.Null{}
		}
		return Compare{Field: w.Key, Operator: NormalizeOperator(w.Operator), Value: value}, nil

	case ir.WhereObject:
		values := make(map[string]ir.Value, len(w.Values))
		for k, v := range w.Values {
			if v == nil {
				v = ir.Null{}
			}
			values[k] = v
		}
		return Match{Values: values}, nil

	case ir.WhereColumn:
		return ColumnCompare{Field: w.Key, Operator: NormalizeOperator(w.Operator), Column: w.Column}, nil

	case ir.WhereGrouped:
		if len(w.Children) == 0 {
			return And{Predicates: []Predicate{}}, nil
		}
		paths := make([]string, len(w.Children))
		for i := range w.Children {
			paths[i] = fmt.Sprintf("%s.children[%d]", path, i)
		}
		return lowerChain(paths, w.Children)

	default:
		return nil, &LowerError{Path: path, Message: fmt.Sprintf("unsupported where modifier %T", m)}
	}
}

func lowerJoin(path string, j ir.Join) (JoinSpec, error) {
	switch j.Kind {
	case ir.JoinInner, ir.JoinLeft, ir.JoinRight:
	default:
		return JoinSpec{}, &LowerError{Path: path, Message: fmt.Sprintf("unknown join kind %q", j.Kind)}
	}
	if j.Table == "" {
		return JoinSpec{}, &LowerError{Path: path, Message: "join without table"}
	}

	js := JoinSpec{Kind: j.Kind, Table: j.Table}
	if len(j.On) == 0 {
		return js, nil
	}

	links := make([]link, 0, len(j.On))
	for i, on := range j.On {
		switch on.LogicalOperator {
		case "", ir.And, ir.Or:
		default:
			return JoinSpec{}, &LowerError{
				Path:    fmt.Sprintf("%s.on[%d]", path, i),
				Message: fmt.Sprintf("invalid logicalOperator %q", on.LogicalOperator),
			}
		}
		links = append(links, link{
			or:   on.LogicalOperator == ir.Or,
			pred: ColumnCompare{Field: on.From, Operator: NormalizeOperator(on.Operator), Column: on.To},
		})
	}
	js.On = fold(links)
	return js, nil
}
