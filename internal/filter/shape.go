package filter

import (
	"reflect"

	"github.com/roach88/filterkit/internal/ir"
)

// Shape is one of the closed set of where-call shapes.
// Construct shapes with Eq, Cmp, Match, or Group, or infer one with Resolve.
type Shape interface {
	shape() // Sealed
}

type eqShape struct {
	key   string
	value any
}

type cmpShape struct {
	key      string
	operator string
	value    any
}

type matchShape struct {
	values map[string]any
}

type groupShape struct {
	fn func(*Builder)
}

func (eqShape) shape()    {}
func (cmpShape) shape()   {}
func (matchShape) shape() {}
func (groupShape) shape() {}

// Eq compares key to value with implicit equality.
func Eq(key string, value any) Shape {
	return eqShape{key: key, value: value}
}

// Cmp compares key to value with an explicit operator.
func Cmp(key, operator string, value any) Shape {
	return cmpShape{key: key, operator: operator, value: value}
}

// Match is shorthand for one equality condition per map entry.
func Match(values map[string]any) Shape {
	return matchShape{values: values}
}

// Group builds a parenthesized sub-predicate from the callback's where calls.
func Group(fn func(*Builder)) Shape {
	return groupShape{fn: fn}
}

// Resolve infers a call shape from loosely typed arguments.
//
// The presence of a third argument is decided by argument count, so an
// explicit nil third argument is present (it compares against null).
// Returns false when the arguments match no shape. See the package
// documentation for the full decision table.
func Resolve(args ...any) (Shape, bool) {
	if len(args) == 0 || len(args) > 3 {
		return nil, false
	}

	first := args[0]

	// Third argument present: inspected first.
	if len(args) == 3 {
		key, keyOK := first.(string)
		op, opOK := args[1].(string)
		if keyOK && opOK && op != "" {
			return Cmp(key, op, args[2]), true
		}
		if values, ok := asMap(first); ok {
			return Match(values), true
		}
		return nil, false
	}

	if key, ok := first.(string); ok {
		if len(args) == 2 && truthy(args[1]) {
			return Eq(key, args[1]), true
		}
		return nil, false
	}

	if fn, ok := first.(func(*Builder)); ok && fn != nil {
		return Group(fn), true
	}

	if values, ok := asMap(first); ok {
		return Match(values), true
	}

	return nil, false
}

// truthy reports loose truthiness of a raw argument. Values that are not
// comparison values (maps, structs) count as truthy so they surface as
// ValueErrors instead of vanishing.
func truthy(v any) bool {
	val, err := ir.ValueOf(v)
	if err != nil {
		return true
	}
	return ir.Truthy(val)
}

// asMap accepts any map keyed by strings.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return m, true
	case map[string]ir.Value:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
