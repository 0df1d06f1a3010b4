package ir

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	status string
	level  int
	code   uint64
	ratio  float64
	flag   bool
)

func TestValueOf(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected Value
	}{
		{"nil", nil, Null{}},
		{"string", "active", String("active")},
		{"empty string", "", String("")},
		{"int", 42, Int(42)},
		{"int8", int8(-3), Int(-3)},
		{"uint32", uint32(7), Int(7)},
		{"int64", int64(math.MaxInt64), Int(math.MaxInt64)},
		{"float64", 1.5, Float(1.5)},
		{"float32", float32(0.5), Float(0.5)},
		{"bool", true, Bool(true)},
		{"json number int", json.Number("12"), Int(12)},
		{"json number float", json.Number("1.25"), Float(1.25)},
		{"already a value", String("x"), String("x")},
		{"any slice", []any{"a", 1}, List{String("a"), Int(1)}},
		{"typed slice", []string{"a", "b"}, List{String("a"), String("b")}},
		{"array", [2]int{1, 2}, List{Int(1), Int(2)}},
		{"named string", status("active"), String("active")},
		{"named int", level(3), Int(3)},
		{"named uint", code(9), Int(9)},
		{"named float", ratio(0.25), Float(0.25)},
		{"named bool", flag(true), Bool(true)},
		{"named string slice", []status{"a", "b"}, List{String("a"), String("b")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ValueOf(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestValueOfRejects(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"map", map[string]any{"a": 1}},
		{"struct", struct{ A int }{1}},
		{"bytes", []byte("abc")},
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
		{"uint64 overflow", uint64(math.MaxUint64)},
		{"nested map in list", []any{map[string]any{}}},
		{"named uint overflow", code(math.MaxUint64)},
		{"named nan", ratio(math.NaN())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValueOf(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestMustValueOfPanics(t *testing.T) {
	assert.Panics(t, func() { MustValueOf(map[string]int{}) })
	assert.Equal(t, Int(1), MustValueOf(1))
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		value    Value
		expected bool
	}{
		{nil, false},
		{Null{}, false},
		{String(""), false},
		{String("0"), true},
		{Int(0), false},
		{Int(-1), true},
		{Float(0), false},
		{Float(0.1), true},
		{Bool(false), false},
		{Bool(true), true},
		{List{}, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Truthy(tt.value), "Truthy(%#v)", tt.value)
	}
}

func TestNative(t *testing.T) {
	assert.Nil(t, Native(Null{}))
	assert.Equal(t, "a", Native(String("a")))
	assert.Equal(t, int64(3), Native(Int(3)))
	assert.Equal(t, 2.5, Native(Float(2.5)))
	assert.Equal(t, true, Native(Bool(true)))
	assert.Equal(t, []any{int64(1), "b"}, Native(List{Int(1), String("b")}))
}

func TestUnmarshalValue(t *testing.T) {
	tests := []struct {
		input    string
		expected Value
	}{
		{`"x"`, String("x")},
		{`12`, Int(12)},
		{`-7`, Int(-7)},
		{`1.5`, Float(1.5)},
		{`1e3`, Float(1000)},
		{`true`, Bool(true)},
		{`null`, Null{}},
		{`[1,"a",null]`, List{Int(1), String("a"), Null{}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := UnmarshalValue([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}

	_, err := UnmarshalValue([]byte(`{"a":1}`))
	assert.Error(t, err, "objects are not comparison values")

	_, err = UnmarshalValue([]byte(``))
	assert.Error(t, err)
}
