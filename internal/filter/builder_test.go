package filter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/filterkit/internal/ir"
)

func mustJSON(t *testing.T, b *Builder) ir.JsonQuery {
	t.Helper()
	q, err := b.ToJSON()
	require.NoError(t, err)
	return q
}

func TestWhereSimple(t *testing.T) {
	q := mustJSON(t, New().Where(Eq("a", 1)))

	require.Len(t, q.Modifiers, 1)
	assert.Equal(t, ir.WhereSimple{Key: "a", Value: ir.Int(1), LogicalOperator: ir.And}, q.Modifiers[0])

	data, err := ir.Encode(q, "")
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"modifiers":[{"method":"where","kind":"simple","key":"a","value":1,"logicalOperator":"and"}]}`,
		string(data))
	assert.NotContains(t, string(data), "operator\":", "no operator field implies equality")
}

func TestWhereWithOperator(t *testing.T) {
	q := mustJSON(t, New().Where(Cmp("a", ">", 1)))

	require.Len(t, q.Modifiers, 1)
	assert.Equal(t, ir.WhereSimple{Key: "a", Operator: ">", Value: ir.Int(1), LogicalOperator: ir.And}, q.Modifiers[0])
}

func TestWhereObject(t *testing.T) {
	q := mustJSON(t, New().Where(Match(map[string]any{"a": 1, "b": 2})))

	require.Len(t, q.Modifiers, 1)
	assert.Equal(t, ir.WhereObject{
		Values:          map[string]ir.Value{"a": ir.Int(1), "b": ir.Int(2)},
		LogicalOperator: ir.And,
	}, q.Modifiers[0])
}

func TestWhereGrouped(t *testing.T) {
	q := mustJSON(t, New().Where(Group(func(b *Builder) {
		b.Where(Eq("a", 1)).OrWhere(Eq("b", 2))
	})))

	require.Len(t, q.Modifiers, 1)
	assert.Equal(t, ir.WhereGrouped{
		LogicalOperator: ir.And,
		Children: []ir.WhereModifier{
			ir.WhereSimple{Key: "a", Value: ir.Int(1), LogicalOperator: ir.And},
			ir.WhereSimple{Key: "b", Value: ir.Int(2), LogicalOperator: ir.Or},
		},
	}, q.Modifiers[0])
}

func TestGroupWithJoinFails(t *testing.T) {
	b := New().Where(Group(func(b *Builder) {
		b.Join("t", func(j *JoinConditionBuilder) { j.On("x", "y") })
	}))

	_, err := b.ToJSON()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInconsistentGroup))

	var groupErr *InconsistentGroupError
	require.True(t, errors.As(err, &groupErr))
	assert.Equal(t, 0, groupErr.Index)
	assert.Equal(t, ir.MethodJoin, groupErr.Method)
	assert.Equal(t, 0, b.Len(), "failing call appends nothing")
}

func TestGroupWithJoinAfterWhereFails(t *testing.T) {
	b := New().Where(Eq("ok", true)).OrWhere(Group(func(b *Builder) {
		b.Where(Eq("a", 1)).LeftJoin("t", nil)
	}))

	var groupErr *InconsistentGroupError
	require.ErrorAs(t, b.Err(), &groupErr)
	assert.Equal(t, 1, groupErr.Index)
	assert.Equal(t, 1, b.Len())
}

func TestNestedGroupErrorPropagates(t *testing.T) {
	b := New().Where(Group(func(outer *Builder) {
		outer.Where(Eq("a", 1)).OrWhere(Group(func(inner *Builder) {
			inner.RightJoin("t", nil)
		}))
	}))

	assert.ErrorIs(t, b.Err(), ErrInconsistentGroup)
	assert.Equal(t, 0, b.Len())
}

func TestStickyErrorStopsMutation(t *testing.T) {
	b := New().
		Where(Group(func(b *Builder) { b.Join("t", nil) })).
		Where(Eq("a", 1)).
		WhereColumn("a", "b").
		Join("t", func(j *JoinConditionBuilder) { j.On("a", "b") })

	q, err := b.ToJSON()
	assert.ErrorIs(t, err, ErrInconsistentGroup)
	assert.Empty(t, q.Modifiers)
}

func TestWhereColumn(t *testing.T) {
	q := mustJSON(t, New().
		WhereColumn("a", "b").
		OrWhereColumnOp("a", "=", "b").
		WhereColumnOp("c", "<", "d").
		OrWhereColumn("e", "f"))

	assert.Equal(t, []ir.Modifier{
		ir.WhereColumn{Key: "a", Column: "b", LogicalOperator: ir.And},
		ir.WhereColumn{Key: "a", Operator: "=", Column: "b", LogicalOperator: ir.Or},
		ir.WhereColumn{Key: "c", Operator: "<", Column: "d", LogicalOperator: ir.And},
		ir.WhereColumn{Key: "e", Column: "f", LogicalOperator: ir.Or},
	}, q.Modifiers)
}

func TestJoin(t *testing.T) {
	q := mustJSON(t, New().Join("t", func(j *JoinConditionBuilder) {
		j.On("a", "b").OrOnOp("c", "!=", "d")
	}))

	require.Len(t, q.Modifiers, 1)
	assert.Equal(t, ir.Join{
		Kind:  ir.JoinInner,
		Table: "t",
		On: []ir.OnClause{
			{From: "a", Operator: "=", To: "b"},
			{From: "c", Operator: "!=", To: "d", LogicalOperator: ir.Or},
		},
	}, q.Modifiers[0])

	data, err := ir.Encode(q, "")
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"modifiers":[{"method":"join","kind":"inner","table":"t","on":[{"from":"a","operator":"=","to":"b"},{"from":"c","operator":"!=","to":"d","logicalOperator":"or"}]}]}`,
		string(data))
}

func TestJoinKinds(t *testing.T) {
	q := mustJSON(t, New().
		Join("a", nil).
		LeftJoin("b", func(j *JoinConditionBuilder) { j.OnOp("x", "<", "y") }).
		RightJoin("c", func(j *JoinConditionBuilder) { j.OrOn("p", "q") }))

	require.Len(t, q.Modifiers, 3)
	assert.Equal(t, ir.Join{Kind: ir.JoinInner, Table: "a", On: []ir.OnClause{}}, q.Modifiers[0])
	assert.Equal(t, ir.JoinLeft, q.Modifiers[1].(ir.Join).Kind)
	assert.Equal(t, ir.JoinRight, q.Modifiers[2].(ir.Join).Kind)
	assert.Equal(t, ir.OnClause{From: "p", Operator: "=", To: "q", LogicalOperator: ir.Or}, q.Modifiers[2].(ir.Join).On[0])
}

func TestJoinWithEmptyCallback(t *testing.T) {
	q := mustJSON(t, New().Join("t", func(*JoinConditionBuilder) {}))
	assert.Equal(t, ir.Join{Kind: ir.JoinInner, Table: "t", On: []ir.OnClause{}}, q.Modifiers[0])
}

func TestLogicalOperatorsPerEntryPoint(t *testing.T) {
	q := mustJSON(t, New().
		Where(Eq("a", 1)).
		WhereNot(Eq("b", 1)).
		OrWhere(Eq("c", 1)).
		OrWhereNot(Eq("d", 1)))

	ops := make([]ir.LogicalOperator, len(q.Modifiers))
	for i, m := range q.Modifiers {
		ops[i] = m.(ir.WhereModifier).Logical()
	}
	assert.Equal(t, []ir.LogicalOperator{ir.And, ir.AndNot, ir.Or, ir.OrNot}, ops)
}

func TestModifierCountMatchesProducingCalls(t *testing.T) {
	b := New()
	b.Where(Eq("a", 1))
	b.OrWhereArgs("b", 0) // falsy second argument: no modifier
	b.WhereNot(Match(map[string]any{"c": 1}))
	b.OrWhereNotArgs(42) // no shape: no modifier
	b.OrWhere(Group(func(g *Builder) { g.Where(Eq("d", 1)) }))

	q := mustJSON(t, b)
	require.Len(t, q.Modifiers, 3)
	assert.Equal(t, ir.KindSimple, q.Modifiers[0].(ir.WhereModifier).Kind())
	assert.Equal(t, ir.KindObject, q.Modifiers[1].(ir.WhereModifier).Kind())
	assert.Equal(t, ir.KindGrouped, q.Modifiers[2].(ir.WhereModifier).Kind())
}

func TestToJSONIdempotent(t *testing.T) {
	b := New().
		Where(Match(map[string]any{"a": 1})).
		Join("t", func(j *JoinConditionBuilder) { j.On("a", "b") })

	first := mustJSON(t, b)
	second := mustJSON(t, b)
	assert.Equal(t, first, second)
	assert.Equal(t, ir.MustQueryHash(first), ir.MustQueryHash(second))
}

func TestToJSONSnapshotIsIndependent(t *testing.T) {
	b := New().Where(Eq("a", 1))
	snapshot := mustJSON(t, b)

	b.Where(Eq("b", 2))
	assert.Len(t, snapshot.Modifiers, 1, "later mutation must not change an earlier snapshot")
	assert.Len(t, mustJSON(t, b).Modifiers, 2)

	snapshot.Modifiers[0] = ir.WhereSimple{Key: "z"}
	assert.Equal(t, "a", mustJSON(t, b).Modifiers[0].(ir.WhereSimple).Key)
}

func TestSubBuilderIndependence(t *testing.T) {
	parent := New().Where(Eq("p", 1))

	var seen int
	parent.Where(Group(func(sub *Builder) {
		seen = sub.Len()
		sub.Where(Eq("c", 1))
	}))
	parent.Join("t", func(j *JoinConditionBuilder) {
		j.On("a", "b")
	})

	q := mustJSON(t, parent)
	assert.Equal(t, 0, seen, "sub-builder must not inherit parent modifiers")
	require.Len(t, q.Modifiers, 3)
	group := q.Modifiers[1].(ir.WhereGrouped)
	require.Len(t, group.Children, 1)
	assert.Equal(t, "c", group.Children[0].(ir.WhereSimple).Key)
}

func TestSubBuilderUseAfterCallbackPanics(t *testing.T) {
	var leaked *Builder
	New().Where(Group(func(sub *Builder) { leaked = sub }))
	assert.Panics(t, func() { leaked.Where(Eq("a", 1)) })

	var leakedJoin *JoinConditionBuilder
	New().Join("t", func(j *JoinConditionBuilder) { leakedJoin = j })
	assert.Panics(t, func() { leakedJoin.On("a", "b") })
}

func TestDeepNesting(t *testing.T) {
	var nest func(depth int) func(*Builder)
	nest = func(depth int) func(*Builder) {
		return func(b *Builder) {
			b.Where(Eq("level", depth))
			if depth < 5 {
				b.OrWhere(Group(nest(depth + 1)))
			}
		}
	}

	q := mustJSON(t, New().Where(Group(nest(1))))
	depth := 0
	var mod ir.WhereModifier = q.Modifiers[0].(ir.WhereGrouped)
	for {
		g, ok := mod.(ir.WhereGrouped)
		if !ok {
			break
		}
		depth++
		mod = g.Children[len(g.Children)-1]
	}
	assert.Equal(t, 5, depth)
}

func TestEmptyGroup(t *testing.T) {
	q := mustJSON(t, New().Where(Group(func(*Builder) {})))
	assert.Equal(t, ir.WhereGrouped{LogicalOperator: ir.And, Children: []ir.WhereModifier{}}, q.Modifiers[0])
}

func TestInvalidValue(t *testing.T) {
	b := New().Where(Eq("a", struct{}{}))
	assert.ErrorIs(t, b.Err(), ErrInvalidValue)

	var valErr *ValueError
	require.ErrorAs(t, b.Err(), &valErr)
	assert.Equal(t, "a", valErr.Key)

	b = New().Where(Match(map[string]any{"m": map[string]any{}}))
	assert.ErrorIs(t, b.Err(), ErrInvalidValue)
}

type (
	customerStatus string
	tier           int
)

func TestNamedScalarValues(t *testing.T) {
	b := New().
		Where(Eq("status", customerStatus("active"))).
		OrWhere(Cmp("tier", ">=", tier(3))).
		WhereArgs("status", customerStatus("trial")).
		Where(Match(map[string]any{"tier": tier(1)}))

	q := mustJSON(t, b)
	require.Len(t, q.Modifiers, 4)
	assert.Equal(t, ir.WhereSimple{Key: "status", Value: ir.String("active"), LogicalOperator: ir.And}, q.Modifiers[0])
	assert.Equal(t, ir.WhereSimple{Key: "tier", Operator: ">=", Value: ir.Int(3), LogicalOperator: ir.Or}, q.Modifiers[1])
	assert.Equal(t, ir.WhereSimple{Key: "status", Value: ir.String("trial"), LogicalOperator: ir.And}, q.Modifiers[2])
	assert.Equal(t, ir.WhereObject{Values: map[string]ir.Value{"tier": ir.Int(1)}, LogicalOperator: ir.And}, q.Modifiers[3])
}

func TestNamedScalarTruthiness(t *testing.T) {
	b := New().WhereArgs("status", customerStatus("")).WhereArgs("tier", tier(0))
	assert.Equal(t, 0, b.Len())
	require.NoError(t, b.Err())
}

func TestNilShapeIsTolerated(t *testing.T) {
	b := New().Where(nil).Where(Group(nil))
	q := mustJSON(t, b)
	assert.Empty(t, q.Modifiers)
}

func TestStrictRejectsUnmatchedShapes(t *testing.T) {
	b := NewStrict().Where(Eq("a", 1)).OrWhereArgs("b")

	assert.ErrorIs(t, b.Err(), ErrUnmatchedShape)
	var shapeErr *UnmatchedShapeError
	require.ErrorAs(t, b.Err(), &shapeErr)
	assert.Equal(t, ir.Or, shapeErr.Operator)
	assert.Equal(t, []any{"b"}, shapeErr.Args)
	assert.Equal(t, 1, b.Len())
}

func TestStrictInheritedByGroups(t *testing.T) {
	b := NewStrict().Where(Group(func(g *Builder) {
		g.WhereArgs(3.5)
	}))
	assert.ErrorIs(t, b.Err(), ErrUnmatchedShape)
}

func TestNullValueComparison(t *testing.T) {
	q := mustJSON(t, New().WhereArgs("deleted_at", "is", nil))
	assert.Equal(t, ir.WhereSimple{Key: "deleted_at", Operator: "is", Value: ir.Null{}, LogicalOperator: ir.And}, q.Modifiers[0])
}
