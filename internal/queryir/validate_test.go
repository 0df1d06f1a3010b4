package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/filterkit/internal/ir"
)

func TestValidate_PortableQuery(t *testing.T) {
	query := Select{
		From: "customers",
		Joins: []JoinSpec{{
			Kind:  ir.JoinLeft,
			Table: "orders",
			On:    ColumnCompare{Field: "customers.id", Operator: "=", Column: "orders.customer_id"},
		}},
		Filter: Or{Predicates: []Predicate{
			Compare{Field: "status", Operator: "=", Value: ir.String("active")},
			Not{Predicate: Compare{Field: "deleted_at", Operator: "is", Value: ir.Null{}}},
			Compare{Field: "tier", Operator: "in", Value: ir.List{ir.String("gold"), ir.String("silver")}},
			Match{Values: map[string]ir.Value{"verified": ir.Bool(true)}},
		}},
	}

	result := Validate(query)

	assert.True(t, result.IsPortable, "warnings: %v", result.Warnings)
	assert.Empty(t, result.Warnings)
}

func TestValidate_PortableQueryWithPointer(t *testing.T) {
	query := &Select{
		From:   "customers",
		Filter: &And{Predicates: []Predicate{&Compare{Field: "a", Operator: "=", Value: ir.Int(1)}}},
	}

	result := Validate(query)

	assert.True(t, result.IsPortable)
	assert.Empty(t, result.Warnings)
}

func TestValidate_NilQuery(t *testing.T) {
	result := Validate(nil)

	assert.False(t, result.IsPortable)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "nil query")
}

func TestValidate_Warnings(t *testing.T) {
	tests := []struct {
		name    string
		query   Select
		warning string
	}{
		{
			name: "right join",
			query: Select{From: "t", Joins: []JoinSpec{{
				Kind: ir.JoinRight, Table: "x",
				On: ColumnCompare{Field: "t.id", Operator: "=", Column: "x.id"},
			}}},
			warning: "Right join on 'x'",
		},
		{
			name:    "cross join",
			query:   Select{From: "t", Joins: []JoinSpec{{Kind: ir.JoinInner, Table: "x"}}},
			warning: "no on-clause",
		},
		{
			name:    "unknown operator",
			query:   Select{From: "t", Filter: Compare{Field: "a", Operator: "between", Value: ir.Int(1)}},
			warning: "unknown operator 'between'",
		},
		{
			name:    "null with ordering operator",
			query:   Select{From: "t", Filter: Compare{Field: "a", Operator: ">", Value: ir.Null{}}},
			warning: "compared to NULL with '>'",
		},
		{
			name:    "in with scalar",
			query:   Select{From: "t", Filter: Compare{Field: "a", Operator: "in", Value: ir.Int(1)}},
			warning: "non-list value",
		},
		{
			name:    "list with equality",
			query:   Select{From: "t", Filter: Compare{Field: "a", Operator: "=", Value: ir.List{ir.Int(1)}}},
			warning: "use in / not in",
		},
		{
			name:    "is with string",
			query:   Select{From: "t", Filter: Compare{Field: "a", Operator: "is", Value: ir.String("x")}},
			warning: "only NULL and booleans",
		},
		{
			name:    "empty object",
			query:   Select{From: "t", Filter: Match{Values: map[string]ir.Value{}}},
			warning: "Empty object shorthand",
		},
		{
			name:    "empty group",
			query:   Select{From: "t", Filter: Not{Predicate: And{Predicates: []Predicate{}}}},
			warning: "Empty AND group",
		},
		{
			name:    "column compare with in",
			query:   Select{From: "t", Filter: ColumnCompare{Field: "a", Operator: "in", Column: "b"}},
			warning: "takes a value, not a column",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.query)

			assert.False(t, result.IsPortable)
			require.Len(t, result.Warnings, 1, "warnings: %v", result.Warnings)
			assert.Contains(t, result.Warnings[0], tt.warning)
		})
	}
}

func TestValidate_CollectsAllWarnings(t *testing.T) {
	query := Select{
		From:  "t",
		Joins: []JoinSpec{{Kind: ir.JoinRight, Table: "x"}},
		Filter: And{Predicates: []Predicate{
			Match{},
			Or{Predicates: []Predicate{}},
		}},
	}

	result := Validate(query)

	assert.False(t, result.IsPortable)
	assert.Len(t, result.Warnings, 4)
}

func TestValidate_IsPure(t *testing.T) {
	query := Select{From: "t", Filter: Compare{Field: "a", Operator: "like", Value: ir.Null{}}}

	first := Validate(query)
	second := Validate(query)

	assert.Equal(t, first, second)
}
