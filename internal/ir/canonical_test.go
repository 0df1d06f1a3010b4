package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalEmpty(t *testing.T) {
	result, err := MarshalCanonical(JsonQuery{})
	require.NoError(t, err)
	assert.Equal(t, `{"modifiers":[]}`, string(result))
}

func TestMarshalCanonicalSortsKeysKeepsOrder(t *testing.T) {
	q := JsonQuery{Modifiers: []Modifier{
		WhereSimple{Key: "z", Value: Int(1), LogicalOperator: And},
		WhereSimple{Key: "a", Operator: ">", Value: Int(2), LogicalOperator: Or},
	}}

	result, err := MarshalCanonical(q)
	require.NoError(t, err)
	assert.Equal(t,
		`{"modifiers":[`+
			`{"key":"z","kind":"simple","logicalOperator":"and","method":"where","value":1},`+
			`{"key":"a","kind":"simple","logicalOperator":"or","method":"where","operator":">","value":2}`+
			`]}`,
		string(result))
}

func TestMarshalCanonicalJoin(t *testing.T) {
	q := JsonQuery{Modifiers: []Modifier{
		Join{Kind: JoinInner, Table: "t", On: []OnClause{
			{From: "a", Operator: "=", To: "b"},
			{From: "c", Operator: "!=", To: "d", LogicalOperator: Or},
		}},
	}}

	result, err := MarshalCanonical(q)
	require.NoError(t, err)
	assert.Equal(t,
		`{"modifiers":[{"kind":"inner","method":"join","on":[`+
			`{"from":"a","operator":"=","to":"b"},`+
			`{"from":"c","logicalOperator":"or","operator":"!=","to":"d"}`+
			`],"table":"t"}]}`,
		string(result))
}

func TestMarshalCanonicalValues(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{"null", Null{}, "null"},
		{"nil", nil, "null"},
		{"string", String("x"), `"x"`},
		{"html not escaped", String("<a&b>"), `"<a&b>"`},
		{"quote and backslash", String(`"\`), `"\"\\"`},
		{"control char", String("\x01\n"), `"\u0001\n"`},
		{"line separator literal", String("\u2028"), "\"\u2028\""},
		{"nfc normalized", String("e\u0301"), "\"\u00e9\""},
		{"int", Int(-5), "-5"},
		{"float", Float(1.5), "1.5"},
		{"integral float", Float(2), "2"},
		{"small float", Float(1e-7), "1e-7"},
		{"large float", Float(1e21), "1e+21"},
		{"bool", Bool(false), "false"},
		{"list", List{Int(1), String("a")}, `[1,"a"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := JsonQuery{Modifiers: []Modifier{WhereSimple{Key: "k", Value: tt.value, LogicalOperator: And}}}
			result, err := MarshalCanonical(q)
			require.NoError(t, err)
			assert.Equal(t,
				`{"modifiers":[{"key":"k","kind":"simple","logicalOperator":"and","method":"where","value":`+tt.expected+`}]}`,
				string(result))
		})
	}
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+E000 vs U+10000 - UTF-16 order differs from UTF-8
	q := JsonQuery{Modifiers: []Modifier{
		WhereObject{Values: map[string]Value{
			"\uE000":     Int(1),
			"\U00010000": Int(2),
		}, LogicalOperator: And},
	}}

	result, err := MarshalCanonical(q)
	require.NoError(t, err)
	assert.Contains(t, string(result), "{\"\U00010000\":2,\"\uE000\":1}")
}

func TestMarshalCanonicalRejectsNonFinite(t *testing.T) {
	q := JsonQuery{Modifiers: []Modifier{WhereSimple{Key: "k", Value: Float(posInf()), LogicalOperator: And}}}
	_, err := MarshalCanonical(q)
	assert.Error(t, err)
}

func posInf() float64 {
	var zero float64
	return 1 / zero
}

func TestCompareKeysRFC8785(t *testing.T) {
	assert.Negative(t, compareKeysRFC8785("a", "b"))
	assert.Positive(t, compareKeysRFC8785("b", "a"))
	assert.Zero(t, compareKeysRFC8785("same", "same"))
	assert.Negative(t, compareKeysRFC8785("ab", "abc"))
	assert.Negative(t, compareKeysRFC8785("\U00010000", "\uE000"))
}
