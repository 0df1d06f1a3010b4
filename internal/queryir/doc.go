// Package queryir provides the lowered predicate tree for filterkit queries.
//
// The flat ir.JsonQuery records intent in call order: every where-modifier
// carries its own connective to the previous sibling. Backends want a tree.
// Lower resolves the sequential chain into one:
//
//	[filter.Builder] → [ir.JsonQuery] → [queryir.Select] → [SQL backend]
//
// PRECEDENCE:
//
// Lowering follows SQL precedence. AND binds tighter than OR, so
//
//	a, or b, and c   →   a OR (b AND c)
//
// The first sibling's connective is ignored; its negation is kept. Groups
// lower recursively and become a single operand of their parent chain.
//
// PORTABLE FRAGMENT:
//
// The portable fragment includes:
//   - Select(from, joins, filter) with inner and left joins
//   - Predicates: Compare, Match, ColumnCompare, And, Or, Not
//   - Operators: = != <> < <= > >= like, not like, ilike, in, not in, is, is not
//
// The portable fragment EXCLUDES:
//   - Right joins (unsupported by SQLite before 3.39)
//   - Joins without on-clauses (cross joins)
//   - NULL compared with ordering or pattern operators
//   - Empty groups and empty object shorthand (vacuous conditions)
//
// Non-portable queries still lower and compile; Validate reports them as
// warnings so callers can decide.
//
// SEALED INTERFACES:
//
// Query and Predicate use the marker method pattern so backends can switch
// exhaustively over the node types:
//
//	switch p := pred.(type) {
//	case queryir.Compare:
//	case queryir.And:
//	...
//	}
package queryir
