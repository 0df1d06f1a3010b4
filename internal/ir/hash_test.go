package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryHashDeterministic(t *testing.T) {
	q := JsonQuery{Modifiers: []Modifier{
		WhereObject{Values: map[string]Value{"a": Int(1), "b": Int(2)}, LogicalOperator: And},
	}}

	h1, err := QueryHash(q)
	require.NoError(t, err)
	h2, err := QueryHash(q.Clone())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestQueryHashOrderSensitive(t *testing.T) {
	a := WhereSimple{Key: "a", Value: Int(1), LogicalOperator: And}
	b := WhereSimple{Key: "b", Value: Int(2), LogicalOperator: And}

	h1 := MustQueryHash(JsonQuery{Modifiers: []Modifier{a, b}})
	h2 := MustQueryHash(JsonQuery{Modifiers: []Modifier{b, a}})
	assert.NotEqual(t, h1, h2, "modifier order is semantically meaningful")
}

func TestQueryHashDomainSeparated(t *testing.T) {
	q := JsonQuery{}
	canonical, err := MarshalCanonical(q)
	require.NoError(t, err)

	assert.Equal(t, hashWithDomain(DomainQuery, canonical), MustQueryHash(q))
	assert.NotEqual(t, hashWithDomain("other/v1", canonical), MustQueryHash(q))
}

func TestMustQueryHashPanics(t *testing.T) {
	q := JsonQuery{Modifiers: []Modifier{WhereSimple{Key: "k", Value: Float(posInf()), LogicalOperator: And}}}
	assert.Panics(t, func() { MustQueryHash(q) })
}
