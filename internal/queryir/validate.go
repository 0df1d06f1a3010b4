package queryir

import (
	"fmt"

	"github.com/roach88/filterkit/internal/ir"
)

// ValidationResult contains portability analysis of a query.
type ValidationResult struct {
	// IsPortable indicates if the query uses only portable fragment features.
	IsPortable bool

	// Warnings lists non-portable features used in the query.
	// Empty when IsPortable is true.
	Warnings []string
}

// Validate checks if a query conforms to the portable fragment rules.
//
// Portable fragment rules:
//  1. Inner and left joins only, each with at least one on-clause
//  2. Operators from KnownOperators only
//  3. NULL only with =, !=, <>, is, is not
//  4. in / not in take a list; no other operator does
//  5. No empty groups or empty object shorthand
//
// Non-portable queries still compile. Validate is a pure function.
func Validate(query Query) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validateQuery(query)

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	if q == nil {
		v.addWarning("nil query - portable fragment requires valid query nodes")
		return
	}

	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	default:
		v.addWarning("Unknown query type: %T - portability cannot be verified", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	for _, j := range sel.Joins {
		v.validateJoin(j)
	}
	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
}

func (v *validator) validateJoin(j JoinSpec) {
	// Rule 1
	if j.Kind == ir.JoinRight {
		v.addWarning("Right join on '%s' - portable fragment requires inner or left joins", j.Table)
	}
	if j.On == nil {
		v.addWarning("Join on '%s' has no on-clause (cross join)", j.Table)
		return
	}
	v.validatePredicate(j.On)
}

func (v *validator) validatePredicate(p Predicate) {
	if p == nil {
		return
	}

	switch pred := p.(type) {
	case Compare:
		v.validateCompare(pred)
	case *Compare:
		v.validateCompare(*pred)
	case Match:
		v.validateMatch(pred)
	case *Match:
		v.validateMatch(*pred)
	case ColumnCompare:
		v.validateColumnCompare(pred)
	case *ColumnCompare:
		v.validateColumnCompare(*pred)
	case And:
		v.validateGroup("AND", pred.Predicates)
	case *And:
		v.validateGroup("AND", pred.Predicates)
	case Or:
		v.validateGroup("OR", pred.Predicates)
	case *Or:
		v.validateGroup("OR", pred.Predicates)
	case Not:
		v.validatePredicate(pred.Predicate)
	case *Not:
		v.validatePredicate(pred.Predicate)
	default:
		v.addWarning("Unknown predicate type: %T - portability cannot be verified", p)
	}
}

func (v *validator) validateCompare(c Compare) {
	op := NormalizeOperator(c.Operator)
	// Rule 2
	if !KnownOperators[op] {
		v.addWarning("Field '%s' uses unknown operator '%s'", c.Field, c.Operator)
		return
	}

	_, isNull := c.Value.(ir.Null)
	_, isList := c.Value.(ir.List)

	// Rule 3
	if isNull || c.Value == nil {
		switch op {
		case OpEq, OpNe, OpNeAlt, OpIs, OpIsNot:
		default:
			v.addWarning("Field '%s' compared to NULL with '%s' - use is / is not", c.Field, op)
		}
		return
	}

	// Rule 4
	switch op {
	case OpIn, OpNotIn:
		if !isList {
			v.addWarning("Field '%s' uses '%s' with a non-list value", c.Field, op)
		}
	case OpIs, OpIsNot:
		if _, isBool := c.Value.(ir.Bool); !isBool {
			v.addWarning("Field '%s' uses '%s' with %T - only NULL and booleans are portable", c.Field, op, c.Value)
		}
	default:
		if isList {
			v.addWarning("Field '%s' compares a list with '%s' - use in / not in", c.Field, op)
		}
	}
}

func (v *validator) validateMatch(m Match) {
	// Rule 5
	if len(m.Values) == 0 {
		v.addWarning("Empty object shorthand - condition is vacuously true")
	}
}

func (v *validator) validateColumnCompare(c ColumnCompare) {
	op := NormalizeOperator(c.Operator)
	switch op {
	case OpIn, OpNotIn, OpIs, OpIsNot:
		v.addWarning("Column comparison '%s %s %s' - operator takes a value, not a column", c.Field, op, c.Column)
	default:
		if !KnownOperators[op] {
			v.addWarning("Column comparison '%s' uses unknown operator '%s'", c.Field, c.Operator)
		}
	}
}

func (v *validator) validateGroup(name string, preds []Predicate) {
	// Rule 5
	if len(preds) == 0 {
		v.addWarning("Empty %s group - condition is vacuous", name)
		return
	}
	for _, p := range preds {
		v.validatePredicate(p)
	}
}
