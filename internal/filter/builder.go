package filter

import (
	"github.com/roach88/filterkit/internal/ir"
)

// Builder accumulates where and join modifiers in call order.
//
// Builders are not safe for concurrent use. A Builder passed to a Group
// callback belongs to that callback and must not be retained.
type Builder struct {
	modifiers []ir.Modifier
	strict    bool
	sealed    bool
	err       error
}

// New creates an empty builder. Unmatched call shapes are tolerated no-ops.
func New() *Builder {
	return &Builder{modifiers: []ir.Modifier{}}
}

// NewStrict creates an empty builder that records an *UnmatchedShapeError
// instead of silently dropping calls that match no shape.
func NewStrict() *Builder {
	return &Builder{modifiers: []ir.Modifier{}, strict: true}
}

// Where appends a shape combined with AND.
func (b *Builder) Where(s Shape) *Builder {
	return b.applyWhere(ir.And, s, nil)
}

// WhereNot appends a negated shape combined with AND.
func (b *Builder) WhereNot(s Shape) *Builder {
	return b.applyWhere(ir.AndNot, s, nil)
}

// OrWhere appends a shape combined with OR.
func (b *Builder) OrWhere(s Shape) *Builder {
	return b.applyWhere(ir.Or, s, nil)
}

// OrWhereNot appends a negated shape combined with OR.
func (b *Builder) OrWhereNot(s Shape) *Builder {
	return b.applyWhere(ir.OrNot, s, nil)
}

// WhereArgs is Where for loosely typed arguments; the shape comes from Resolve.
func (b *Builder) WhereArgs(args ...any) *Builder {
	return b.applyArgs(ir.And, args)
}

// WhereNotArgs is WhereNot for loosely typed arguments.
func (b *Builder) WhereNotArgs(args ...any) *Builder {
	return b.applyArgs(ir.AndNot, args)
}

// OrWhereArgs is OrWhere for loosely typed arguments.
func (b *Builder) OrWhereArgs(args ...any) *Builder {
	return b.applyArgs(ir.Or, args)
}

// OrWhereNotArgs is OrWhereNot for loosely typed arguments.
func (b *Builder) OrWhereNotArgs(args ...any) *Builder {
	return b.applyArgs(ir.OrNot, args)
}

// WhereColumn compares two fields with implicit equality, combined with AND.
func (b *Builder) WhereColumn(key, column string) *Builder {
	return b.applyColumn(ir.And, key, "", column)
}

// WhereColumnOp compares two fields with an explicit operator, combined with AND.
func (b *Builder) WhereColumnOp(key, operator, column string) *Builder {
	return b.applyColumn(ir.And, key, operator, column)
}

// OrWhereColumn compares two fields with implicit equality, combined with OR.
func (b *Builder) OrWhereColumn(key, column string) *Builder {
	return b.applyColumn(ir.Or, key, "", column)
}

// OrWhereColumnOp compares two fields with an explicit operator, combined with OR.
func (b *Builder) OrWhereColumnOp(key, operator, column string) *Builder {
	return b.applyColumn(ir.Or, key, operator, column)
}

// Join appends an inner join whose on-clauses are collected by fn.
func (b *Builder) Join(table string, fn func(*JoinConditionBuilder)) *Builder {
	return b.applyJoin(ir.JoinInner, table, fn)
}

// LeftJoin appends a left join whose on-clauses are collected by fn.
func (b *Builder) LeftJoin(table string, fn func(*JoinConditionBuilder)) *Builder {
	return b.applyJoin(ir.JoinLeft, table, fn)
}

// RightJoin appends a right join whose on-clauses are collected by fn.
func (b *Builder) RightJoin(table string, fn func(*JoinConditionBuilder)) *Builder {
	return b.applyJoin(ir.JoinRight, table, fn)
}

// ToJSON returns a snapshot of the current modifier sequence.
// The snapshot is a deep copy: mutating the builder afterwards does not
// change it. The builder's sticky error, if any, is returned alongside the
// modifiers collected before the failure.
func (b *Builder) ToJSON() (ir.JsonQuery, error) {
	return ir.JsonQuery{Modifiers: b.modifiers}.Clone(), b.err
}

// Err returns the builder's sticky error.
func (b *Builder) Err() error {
	return b.err
}

// Len returns the number of top-level modifiers collected so far.
func (b *Builder) Len() int {
	return len(b.modifiers)
}

func (b *Builder) applyArgs(op ir.LogicalOperator, args []any) *Builder {
	s, ok := Resolve(args...)
	if !ok {
		b.checkUsable()
		if b.err != nil {
			return b
		}
		return b.unmatched(op, args)
	}
	return b.applyWhere(op, s, args)
}

func (b *Builder) applyWhere(op ir.LogicalOperator, s Shape, args []any) *Builder {
	b.checkUsable()
	if b.err != nil {
		return b
	}

	switch shape := s.(type) {
	case eqShape:
		val, err := ir.ValueOf(shape.value)
		if err != nil {
			b.err = &ValueError{Key: shape.key, Err: err}
			return b
		}
		b.modifiers = append(b.modifiers, ir.WhereSimple{
			Key:             shape.key,
			Value:           val,
			LogicalOperator: op,
		})

	case cmpShape:
		val, err := ir.ValueOf(shape.value)
		if err != nil {
			b.err = &ValueError{Key: shape.key, Err: err}
			return b
		}
		b.modifiers = append(b.modifiers, ir.WhereSimple{
			Key:             shape.key,
			Operator:        shape.operator,
			Value:           val,
			LogicalOperator: op,
		})

	case matchShape:
		values := make(map[string]ir.Value, len(shape.values))
		for k, raw := range shape.values {
			val, err := ir.ValueOf(raw)
			if err != nil {
				b.err = &ValueError{Key: k, Err: err}
				return b
			}
			values[k] = val
		}
		b.modifiers = append(b.modifiers, ir.WhereObject{
			Values:          values,
			LogicalOperator: op,
		})

	case groupShape:
		if shape.fn == nil {
			return b.unmatched(op, args)
		}
		b.applyGroup(op, shape.fn)

	default:
		return b.unmatched(op, args)
	}

	return b
}

// applyGroup runs fn against a fresh builder and folds its modifiers into
// one grouped modifier. The sub-builder is sealed afterwards.
func (b *Builder) applyGroup(op ir.LogicalOperator, fn func(*Builder)) {
	sub := &Builder{modifiers: []ir.Modifier{}, strict: b.strict}
	fn(sub)
	sub.sealed = true

	if sub.err != nil {
		b.err = sub.err
		return
	}

	children := make([]ir.WhereModifier, 0, len(sub.modifiers))
	for i, m := range sub.modifiers {
		wm, ok := m.(ir.WhereModifier)
		if !ok {
			b.err = &InconsistentGroupError{Index: i, Method: m.Method()}
			return
		}
		children = append(children, wm)
	}

	b.modifiers = append(b.modifiers, ir.WhereGrouped{
		LogicalOperator: op,
		Children:        children,
	})
}

func (b *Builder) applyColumn(op ir.LogicalOperator, key, operator, column string) *Builder {
	b.checkUsable()
	if b.err != nil {
		return b
	}
	b.modifiers = append(b.modifiers, ir.WhereColumn{
		Key:             key,
		Operator:        operator,
		Column:          column,
		LogicalOperator: op,
	})
	return b
}

func (b *Builder) applyJoin(kind ir.JoinKind, table string, fn func(*JoinConditionBuilder)) *Builder {
	b.checkUsable()
	if b.err != nil {
		return b
	}

	jb := &JoinConditionBuilder{clauses: []ir.OnClause{}}
	if fn != nil {
		fn(jb)
	}

	b.modifiers = append(b.modifiers, ir.Join{
		Kind:  kind,
		Table: table,
		On:    jb.take(),
	})
	return b
}

func (b *Builder) unmatched(op ir.LogicalOperator, args []any) *Builder {
	if b.strict {
		b.err = &UnmatchedShapeError{Operator: op, Args: args}
	}
	return b
}

func (b *Builder) checkUsable() {
	if b.sealed {
		panic("filter: group builder used after its callback returned")
	}
}
