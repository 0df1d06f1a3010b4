package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Value is a sealed interface representing a comparison target (FilterValue).
// Only Null, String, Int, Float, Bool, and List implement this.
//
// Values are opaque to the builder: they are carried into the IR exactly as
// the caller supplied them, without coercion between kinds.
type Value interface {
	filterValue() // Sealed - only these types implement it
}

// Null represents a JSON null comparison target.
// Using an explicit type ensures all Values satisfy the sealed interface.
type Null struct{}

func (Null) filterValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String represents a string value.
type String string

func (String) filterValue() {}

// Int represents an integer value.
type Int int64

func (Int) filterValue() {}

// Float represents a floating point value.
// NaN and infinities are rejected at construction (ValueOf) and at marshal time.
type Float float64

func (Float) filterValue() {}

// MarshalJSON implements json.Marshaler for Float.
// Integral floats carry a ".0" suffix so UnmarshalValue reads them back as
// Float, not Int. Canonical form does not add the suffix.
func (f Float) MarshalJSON() ([]byte, error) {
	b, err := formatFloat(float64(f))
	if err != nil {
		return nil, err
	}
	if !bytes.ContainsAny(b, ".eE") {
		b = append(b, ".0"...)
	}
	return b, nil
}

// Bool represents a boolean value.
type Bool bool

func (Bool) filterValue() {}

// List represents an ordered list of values, used by "in"-style operators.
type List []Value

func (List) filterValue() {}

// ValueOf converts a native Go value into a Value.
//
// Supported: nil, Value, string, bool, all integer kinds, float32/float64,
// json.Number, named types of those kinds, and slices/arrays of supported
// values. Maps and structs are rejected: they are not comparison targets.
func ValueOf(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint:
		if uint64(val) > math.MaxInt64 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return Int(val), nil
	case float32:
		return floatValue(float64(val))
	case float64:
		return floatValue(val)
	case json.Number:
		return numberValue(val)
	case []any:
		list := make(List, len(val))
		for i, elem := range val {
			item, err := ValueOf(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = item
		}
		return list, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, fmt.Errorf("byte slices are not comparison values")
		}
		list := make(List, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := ValueOf(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = item
		}
		return list, nil
	}

	// Named scalar types keep their kind.
	switch rv.Kind() {
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("integer out of int64 range: %d", u)
		}
		return Int(u), nil
	case reflect.Float32, reflect.Float64:
		return floatValue(rv.Float())
	}

	return nil, fmt.Errorf("unsupported value type: %T", v)
}

// MustValueOf is like ValueOf but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustValueOf(v any) Value {
	val, err := ValueOf(v)
	if err != nil {
		panic(err)
	}
	return val
}

func floatValue(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite float is not a comparison value: %v", f)
	}
	return Float(f), nil
}

func numberValue(n json.Number) (Value, error) {
	if i, err := n.Int64(); err == nil {
		return Int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", n, err)
	}
	return floatValue(f)
}

// Truthy reports whether a value would be considered "set" by a loosely
// typed caller: null, false, zero, and the empty string are falsy. Lists are
// always truthy, including empty ones.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return false
	case String:
		return val != ""
	case Int:
		return val != 0
	case Float:
		return val != 0 && !math.IsNaN(float64(val))
	case Bool:
		return bool(val)
	case List:
		return true
	default:
		return false
	}
}

// Native converts a Value back to a plain Go value.
// Lists become []any; Null becomes nil.
func Native(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Native(elem)
		}
		return out
	default:
		return nil
	}
}

// UnmarshalJSON implements json.Unmarshaler for List.
func (l *List) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*l = make(List, len(raw))
	for i, v := range raw {
		val, err := UnmarshalValue(v)
		if err != nil {
			return fmt.Errorf("list[%d]: %w", i, err)
		}
		(*l)[i] = val
	}
	return nil
}

// UnmarshalValue decodes a JSON value into the appropriate Value type.
// Integral numbers become Int, all other numbers become Float.
// Objects are rejected.
func UnmarshalValue(data []byte) (Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return String(s), nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return Bool(b), nil

	case 'n':
		return Null{}, nil

	case '[':
		var list List
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list, nil

	case '{':
		return nil, fmt.Errorf("objects are not comparison values")

	default:
		n := json.Number(string(data))
		if strings.ContainsAny(string(n), ".eE") {
			f, err := n.Float64()
			if err != nil {
				return nil, err
			}
			return floatValue(f)
		}
		return numberValue(n)
	}
}
