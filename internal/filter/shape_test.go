package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/filterkit/internal/ir"
)

func TestResolveDecisionTable(t *testing.T) {
	values := map[string]any{"a": 1}

	tests := []struct {
		name     string
		args     []any
		expected Shape
	}{
		// Third argument present.
		{"key operator value", []any{"a", ">", 1}, Cmp("a", ">", 1)},
		{"key operator nil", []any{"a", "is", nil}, Cmp("a", "is", nil)},
		{"key operator false", []any{"a", "=", false}, Cmp("a", "=", false)},
		{"map wins when third unusable", []any{values, "ignored", 3}, Match(values)},
		{"map with non-string second", []any{values, 2, 3}, Match(values)},

		// No third argument.
		{"key value", []any{"a", 1}, Eq("a", 1)},
		{"key string value", []any{"a", "x"}, Eq("a", "x")},
		{"key list value", []any{"a", []int{}}, Eq("a", []int{})},
		{"map alone", []any{values}, Match(values)},
		{"map with second", []any{values, "x"}, Match(values)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := Resolve(tt.args...)
			require.True(t, ok)
			assert.Equal(t, tt.expected, s)
		})
	}
}

func TestResolveGroup(t *testing.T) {
	fn := func(b *Builder) { b.Where(Eq("a", 1)) }
	s, ok := Resolve(fn)
	require.True(t, ok)
	_, isGroup := s.(groupShape)
	assert.True(t, isGroup)
}

func TestResolveNoShape(t *testing.T) {
	tests := []struct {
		name string
		args []any
	}{
		{"no args", nil},
		{"too many args", []any{"a", "=", 1, 2}},
		{"key only", []any{"a"}},
		{"key zero", []any{"a", 0}},
		{"key false", []any{"a", false}},
		{"key empty string", []any{"a", ""}},
		{"key nil", []any{"a", nil}},
		{"key null value", []any{"a", ir.Null{}}},
		{"empty operator", []any{"a", "", 1}},
		{"non-string operator", []any{"a", 1, 2}},
		{"number first", []any{42}},
		{"nil first", []any{nil}},
		{"nil func", []any{(func(*Builder))(nil)}},
		{"int-keyed map", []any{map[int]any{1: 1}}},
		{"three args non-map first", []any{1, "=", 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := Resolve(tt.args...)
			assert.False(t, ok)
			assert.Nil(t, s)
		})
	}
}

func TestResolveTypedMaps(t *testing.T) {
	s, ok := Resolve(map[string]int{"a": 1})
	require.True(t, ok)
	assert.Equal(t, Match(map[string]any{"a": 1}), s)

	s, ok = Resolve(map[string]ir.Value{"b": ir.String("x")})
	require.True(t, ok)
	assert.Equal(t, Match(map[string]any{"b": ir.String("x")}), s)
}

func TestResolveTruthyUnconvertibleValue(t *testing.T) {
	// A struct is not a comparison value; it still resolves so the builder
	// can report it instead of dropping the call.
	s, ok := Resolve("a", struct{}{})
	require.True(t, ok)

	b := New().Where(s)
	assert.ErrorIs(t, b.Err(), ErrInvalidValue)
}

func TestWhereArgsMatchesTypedShapes(t *testing.T) {
	dynamic := mustJSON(t, New().
		WhereArgs("a", 1).
		OrWhereArgs("b", "<", 2).
		WhereNotArgs(map[string]any{"c": true}).
		OrWhereNotArgs(func(g *Builder) { g.WhereArgs("d", "x") }))

	typed := mustJSON(t, New().
		Where(Eq("a", 1)).
		OrWhere(Cmp("b", "<", 2)).
		WhereNot(Match(map[string]any{"c": true})).
		OrWhereNot(Group(func(g *Builder) { g.Where(Eq("d", "x")) })))

	assert.Equal(t, typed, dynamic)
}
