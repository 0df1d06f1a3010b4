package queryir

import (
	"strings"

	"github.com/roach88/filterkit/internal/ir"
)

// Query represents a lowered query.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition in a lowered query.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - Compare: field <op> literal
//   - Match: field = literal for every entry
//   - ColumnCompare: field <op> column
//   - And, Or: n-ary connectives
//   - Not: negation
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Select is a table access with joins and filtering.
//
// Semantics:
//
//	SELECT * FROM <from> <joins...> WHERE <filter>
//
// Joins keep the order in which they were declared.
type Select struct {
	From   string     // Base table
	Joins  []JoinSpec // Declared joins, in order
	Filter Predicate  // WHERE conditions (nil = no filter)
}

func (Select) queryNode() {}

// JoinSpec is one join of a Select.
type JoinSpec struct {
	Kind  ir.JoinKind
	Table string
	On    Predicate // nil = no condition (cross join)
}

// Compare is a field compared to a literal value.
//
// Example:
//
//	Compare{Field: "age", Operator: ">", Value: ir.Int(30)}
//
// Translates to SQL:
//
//	age > ?
type Compare struct {
	Field    string
	Operator string // Normalized; never empty
	Value    ir.Value
}

func (Compare) predicateNode() {}

// Match is the object shorthand: every field equals its value.
// An empty Match is vacuously true.
type Match struct {
	Values map[string]ir.Value
}

func (Match) predicateNode() {}

// ColumnCompare compares two fields of the joined row.
type ColumnCompare struct {
	Field    string
	Operator string // Normalized; never empty
	Column   string
}

func (ColumnCompare) predicateNode() {}

// And is a conjunction. Empty Predicates is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or is a disjunction. Empty Predicates is always false.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Not negates its operand.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// Comparison operators understood by every backend.
const (
	OpEq      = "="
	OpNe      = "!="
	OpNeAlt   = "<>"
	OpLt      = "<"
	OpLe      = "<="
	OpGt      = ">"
	OpGe      = ">="
	OpLike    = "like"
	OpNotLike = "not like"
	OpILike   = "ilike"
	OpIn      = "in"
	OpNotIn   = "not in"
	OpIs      = "is"
	OpIsNot   = "is not"
)

// KnownOperators is the operator allowlist.
var KnownOperators = map[string]bool{
	OpEq:      true,
	OpNe:      true,
	OpNeAlt:   true,
	OpLt:      true,
	OpLe:      true,
	OpGt:      true,
	OpGe:      true,
	OpLike:    true,
	OpNotLike: true,
	OpILike:   true,
	OpIn:      true,
	OpNotIn:   true,
	OpIs:      true,
	OpIsNot:   true,
}

// NormalizeOperator lower-cases op, collapses inner whitespace and maps the
// empty operator to "=". Unknown operators are returned normalized but are
// not rejected here.
func NormalizeOperator(op string) string {
	op = strings.Join(strings.Fields(strings.ToLower(op)), " ")
	if op == "" {
		return ir.DefaultOperator
	}
	return op
}
